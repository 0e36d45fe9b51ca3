package input

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectLineReader_SkipsBlankLinesByDefault(t *testing.T) {
	r := NewDirectReader(strings.NewReader("\n\nhello\n"))
	line, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "hello", line)
}

func TestDirectLineReader_AllowBlankReturnsEmptyLine(t *testing.T) {
	r := NewDirectReader(strings.NewReader("\n"))
	r.AllowBlank(true)
	line, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "", line)
}

func TestDirectLineReader_EOFAtEndOfInput(t *testing.T) {
	r := NewDirectReader(strings.NewReader(""))
	_, err := r.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDirectLineReader_Close(t *testing.T) {
	r := NewDirectReader(strings.NewReader(""))
	assert.NoError(t, r.Close())
}
