// Package astnode provides an optional, ready-to-use abstract syntax tree
// node type for callers who don't want to define their own. Neither lalr,
// table, nor emit constructs a Node themselves: semantic callbacks receive
// and return opaque values, and this package is just one reasonable shape
// those values can take.
//
// Node is a tagged sum rather than an interface hierarchy: one struct, one
// Kind enum, and kind-specific fields left zero when unused, carrying the
// base fields common to every node (symbol id, table index, line range,
// terminal override) in a single concrete type instead of a class
// hierarchy.
package astnode

// Kind discriminates which of Node's kind-specific fields are populated.
type Kind int

const (
	KindToken Kind = iota
	KindUnary
	KindBinary
	KindList
	KindFuncCall
	KindCondition
	KindLoop
	KindFunc
	KindJump
	KindDeclare
)

func (k Kind) String() string {
	switch k {
	case KindToken:
		return "Token"
	case KindUnary:
		return "Unary"
	case KindBinary:
		return "Binary"
	case KindList:
		return "List"
	case KindFuncCall:
		return "FuncCall"
	case KindCondition:
		return "Condition"
	case KindLoop:
		return "Loop"
	case KindFunc:
		return "Func"
	case KindJump:
		return "Jump"
	case KindDeclare:
		return "Declare"
	default:
		return "Unknown"
	}
}

// LineRange is the [Start, End] source line span a Node was parsed from, if
// tracked by the caller's lexer.
type LineRange struct {
	Start int
	End   int
}

// Node is a single syntax tree node. Every node carries the base fields
// (Id, TableIndex, Lines, IsTerminal); only the fields matching Kind are
// meaningful.
type Node struct {
	Kind Kind

	// Id is the grammar symbol id this node was produced for — a terminal
	// id for a token leaf, or the non-terminal id of the production that
	// reduced to it.
	Id int

	// TableIndex is the table column/rule index this node corresponds to,
	// if the caller wants to retain it (e.g. for diagnostics referencing
	// the generated TableSet).
	TableIndex int

	Lines      *LineRange
	IsTerminal bool

	// Token fields (KindToken): a scanned literal, e.g. an identifier or
	// number, carrying its lexical value and the terminal it matched.
	TokenValue any

	// Unary fields (KindUnary): a single-operand expression such as
	// negation.
	UnaryOp      string
	UnaryOperand *Node

	// Binary fields (KindBinary): a two-operand expression such as
	// addition, carrying the operator's source terminal for error
	// reporting.
	BinaryOp    string
	BinaryLeft  *Node
	BinaryRight *Node

	// List fields (KindList): an ordered sequence of sibling nodes, such as
	// a comma-separated argument list or a statement block.
	ListItems []*Node

	// FuncCall fields (KindFuncCall): a call expression.
	FuncCallName string
	FuncCallArgs []*Node

	// Condition fields (KindCondition): an if/then/else, with Else left
	// nil for a dangling-else-free grammar or when the else branch is
	// absent.
	CondTest *Node
	CondThen *Node
	CondElse *Node

	// Loop fields (KindLoop): a pre-test loop construct.
	LoopTest *Node
	LoopBody *Node

	// Func fields (KindFunc): a function/procedure definition.
	FuncName   string
	FuncParams []string
	FuncBody   *Node

	// Jump fields (KindJump): a non-local control transfer (return, break,
	// continue), with Value left nil for a bare jump.
	JumpKind  string
	JumpValue *Node

	// Declare fields (KindDeclare): a variable/binding declaration.
	DeclareName string
	DeclareInit *Node
}

// NewToken returns a KindToken leaf node for terminal id carrying value.
func NewToken(id int, value any) *Node {
	return &Node{Kind: KindToken, Id: id, IsTerminal: true, TokenValue: value}
}

// NewBinary returns a KindBinary node combining left and right with op.
func NewBinary(id int, op string, left, right *Node) *Node {
	return &Node{Kind: KindBinary, Id: id, BinaryOp: op, BinaryLeft: left, BinaryRight: right}
}

// NewUnary returns a KindUnary node applying op to operand.
func NewUnary(id int, op string, operand *Node) *Node {
	return &Node{Kind: KindUnary, Id: id, UnaryOp: op, UnaryOperand: operand}
}

// NewList returns a KindList node wrapping items in order.
func NewList(id int, items []*Node) *Node {
	return &Node{Kind: KindList, Id: id, ListItems: items}
}
