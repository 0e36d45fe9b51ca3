// Package emit turns a built lalr.Collection into the source text of a
// recursive-ascent parser: one pair of Go functions per closure (a
// shift/reduce dispatcher and a goto dispatcher), calling into the small
// Runtime type defined in this file for stack bookkeeping and semantic
// callback invocation.
package emit

import (
	"github.com/dekarrin/lalrgen/grammar"
	"github.com/dekarrin/lalrgen/lalrerr"
	"github.com/dekarrin/lalrgen/observe"
)

// Token is one input symbol fed to a generated parser: a terminal id paired
// with whatever lexical value the caller's scanner attached to it.
type Token struct {
	Terminal grammar.SymbolID
	Value    any
}

// SemanticFunc is a user-supplied callback bound to one production's
// semantic id. full reports whether this invocation is a complete reduction
// (true) or an early unique-partial-match invocation (false). args holds the
// matched symbol stack entries, oldest first; the returned value is pushed
// in their place.
type SemanticFunc func(full bool, args []any) (any, error)

// acceptedDistance is the sentinel distance a generated state function
// returns after reducing the augmented start production: it propagates
// straight up through every caller without any of them attempting a goto
// dispatch, since there is no real production for the synthetic start item.
const acceptedDistance = -1

// Runtime is the shared support object every generated state/goto function
// is called with. Generated code never touches a Collection, Grammar, or
// Element directly; it only calls Runtime methods and its own generated
// peer functions.
type Runtime struct {
	tokens []Token
	pos    int

	symStack []any

	rules map[int]SemanticFunc
	trace observe.TraceSink

	accepted bool
	result   any
}

// NewRuntime returns a Runtime ready to parse tokens, invoking rules by
// semantic id as productions are reduced or partially matched.
func NewRuntime(tokens []Token, rules map[int]SemanticFunc) *Runtime {
	return &Runtime{tokens: tokens, rules: rules, trace: observe.NoOpTrace{}}
}

// SetTraceSink installs a trace sink, invoked at reduce and partial-match
// events; shifts and jumps are not traced. Passing nil restores the no-op
// default.
func (rt *Runtime) SetTraceSink(sink observe.TraceSink) {
	if sink == nil {
		sink = observe.NoOpTrace{}
	}
	rt.trace = sink
}

// Peek returns the terminal id of the current lookahead token, or
// grammar.EndOfInput once the token stream is exhausted.
func (rt *Runtime) Peek() grammar.SymbolID {
	if rt.pos >= len(rt.tokens) {
		return grammar.EndOfInput
	}
	return rt.tokens[rt.pos].Terminal
}

// Shift pushes the current lookahead's value onto the symbol stack and
// advances the input by one token.
func (rt *Runtime) Shift() {
	var v any
	if rt.pos < len(rt.tokens) {
		v = rt.tokens[rt.pos].Value
	}
	rt.symStack = append(rt.symStack, v)
	rt.pos++
}

// PartialTerminal invokes the partial-match callback bound to semanticID
// with the rhsLen topmost symbol stack entries (peeked, not popped), ahead
// of a shift transition.
func (rt *Runtime) PartialTerminal(state int, semanticID, rhsLen int) error {
	return rt.partial(state, semanticID, rhsLen)
}

// PartialNonTerminal is PartialTerminal's counterpart for a goto
// transition, invoked ahead of following the jump table on a non-terminal
// just produced by a reduce.
func (rt *Runtime) PartialNonTerminal(state int, semanticID, rhsLen int) error {
	return rt.partial(state, semanticID, rhsLen)
}

func (rt *Runtime) partial(state int, semanticID, rhsLen int) error {
	fn, ok := rt.rules[semanticID]
	if !ok {
		return lalrerr.NewMissingSemanticRule(semanticID, state)
	}
	args := rt.peekArgs(rhsLen)
	rt.trace.Trace("partial", state, "")
	_, err := fn(false, args)
	return err
}

func (rt *Runtime) peekArgs(n int) []any {
	if n == 0 {
		return nil
	}
	start := len(rt.symStack) - n
	if start < 0 {
		start = 0
	}
	return append([]any(nil), rt.symStack[start:]...)
}

// Reduce pops rhsLen entries from the symbol stack, invokes the semantic
// callback bound to semanticID with them, and pushes the result.
func (rt *Runtime) Reduce(state, semanticID, rhsLen int, lhs grammar.SymbolID) (int, grammar.SymbolID, error) {
	fn, ok := rt.rules[semanticID]
	if !ok {
		return 0, 0, lalrerr.NewMissingSemanticRule(semanticID, state)
	}

	n := rhsLen
	if n > len(rt.symStack) {
		n = len(rt.symStack)
	}
	args := append([]any(nil), rt.symStack[len(rt.symStack)-n:]...)
	rt.symStack = rt.symStack[:len(rt.symStack)-n]

	rt.trace.Trace("reduce", state, "")
	result, err := fn(true, args)
	if err != nil {
		return 0, 0, err
	}

	rt.symStack = append(rt.symStack, result)
	return rhsLen, lhs, nil
}

// Accept pops the single value produced by the grammar's start symbol and
// records it as the parse's result. The augmented start item (start' ->
// start) binds no semantic id of its own, so unlike Reduce this never
// invokes a callback; it returns acceptedDistance so every caller up the
// call chain propagates it straight through instead of attempting a goto
// dispatch.
func (rt *Runtime) Accept() (int, grammar.SymbolID, error) {
	if len(rt.symStack) == 0 {
		return 0, 0, lalrerr.NewInputUnderflow(0, rt.pos)
	}
	rt.result = rt.symStack[len(rt.symStack)-1]
	rt.symStack = rt.symStack[:len(rt.symStack)-1]
	rt.accepted = true
	return acceptedDistance, 0, nil
}

// UndefinedEntry reports that no shift or reduce action exists for the
// current lookahead in the given state.
func (rt *Runtime) UndefinedEntry(state int) error {
	stack := make([]int, len(rt.symStack))
	return lalrerr.NewUndefinedEntry(state, rt.tokenDesc(), stack)
}

func (rt *Runtime) tokenDesc() string {
	if rt.pos >= len(rt.tokens) {
		return "$"
	}
	return "<token>"
}

// Accepted reports whether the parse reached the augmented accepting
// reduction.
func (rt *Runtime) Accepted() bool { return rt.accepted }

// Result returns the value produced by the accepting reduction. Only
// meaningful once Accepted reports true.
func (rt *Runtime) Result() any { return rt.result }

// InputUnderflow reports that the parser exhausted its input without
// reaching an accept action.
func (rt *Runtime) InputUnderflow(state int) error {
	return lalrerr.NewInputUnderflow(state, rt.pos)
}
