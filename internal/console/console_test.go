package console

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalChoose(t *testing.T) {
	var out strings.Builder
	term := NewTerminalWith(strings.NewReader("z\nA\n"), &out)

	got, err := term.Choose("pick", []string{"a", "n"}, "n")
	require.NoError(t, err)
	assert.Equal(t, "a", got, "input is case-insensitive, invalid entries re-prompt")
	assert.Contains(t, out.String(), `invalid option "z"`)
}

func TestTerminalChooseDefault(t *testing.T) {
	term := NewTerminalWith(strings.NewReader("\n"), &strings.Builder{})
	got, err := term.Choose("pick", []string{"a", "n"}, "n")
	require.NoError(t, err)
	assert.Equal(t, "n", got)
}

func TestTerminalAskLineTrims(t *testing.T) {
	term := NewTerminalWith(strings.NewReader("  hello  \n"), &strings.Builder{})
	got, err := term.AskLine("say")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestTerminalConfirm(t *testing.T) {
	term := NewTerminalWith(strings.NewReader("yes\n\nno\n"), &strings.Builder{})

	ok, err := term.Confirm("sure?", false)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = term.Confirm("sure?", true)
	require.NoError(t, err)
	assert.True(t, ok, "empty input takes the default")

	ok, err = term.Confirm("sure?", true)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScriptedExhaustion(t *testing.T) {
	s := NewScripted("one")

	got, err := s.AskLine("first")
	require.NoError(t, err)
	assert.Equal(t, "one", got)

	_, err = s.AskLine("second")
	assert.Error(t, err, "running past the script is an error, not a hang")
}
