package utils

import (
	"bufio"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test the answers a confirmation prompt accepts as yes
func TestConfirmPrompt_Answers(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"no\n", false},
		{"\n", false},
		{"whatever\n", false},
	}

	for _, tc := range cases {
		got, err := ConfirmPrompt("Clear run history?", bufio.NewReader(strings.NewReader(tc.input)))
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
	}
}

// Test that closed stdin counts as no instead of an error
func TestConfirmPrompt_EOF(t *testing.T) {
	got, err := ConfirmPrompt("Clear run history?", bufio.NewReader(strings.NewReader("")))
	require.NoError(t, err)
	assert.False(t, got)
}

// Test that the acknowledge prompt returns on Enter and on EOF
func TestAcknowledgePrompt(t *testing.T) {
	err := AcknowledgePrompt("Press Enter to exit...", bufio.NewReader(strings.NewReader("\n")))
	assert.NoError(t, err)

	err = AcknowledgePrompt("Press Enter to exit...", bufio.NewReader(strings.NewReader("")))
	assert.NoError(t, err)
}

// Test that the context-aware prompt returns once Enter arrives
func TestAcknowledgePromptWithContext_Enter(t *testing.T) {
	err := AcknowledgePromptWithContext(context.Background(), "Press Enter to exit...", bufio.NewReader(strings.NewReader("\n")))
	assert.NoError(t, err)
}

// Test that cancellation unblocks the prompt even with no input at all
func TestAcknowledgePromptWithContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A pipe with no writer blocks forever; only the context can unblock us
	pr, _ := io.Pipe()
	defer pr.Close()

	err := AcknowledgePromptWithContext(ctx, "Press Enter to exit...", bufio.NewReader(pr))
	assert.ErrorIs(t, err, context.Canceled)
}
