package utils

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Asterixfoods/asterix-charts/constants/lipgloss"
)

// ConfirmPrompt asks the user a yes/no question and returns true only for an
// explicit yes. EOF (piped or closed stdin) counts as no.
func ConfirmPrompt(label string, reader *bufio.Reader) (bool, error) {
	fmt.Print(lipgloss.BlueSky.Render(fmt.Sprintf("%s (y/N): ", label)))

	response, err := reader.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, fmt.Errorf("reading input: %w", err)
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// AcknowledgePrompt blocks until the user presses Enter. EOF returns
// immediately so piped runs never hang.
func AcknowledgePrompt(label string, reader *bufio.Reader) error {
	fmt.Print(lipgloss.Gray.Render(label))

	_, err := reader.ReadString('\n')
	fmt.Println()
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

// AcknowledgePromptWithContext waits for Enter with context cancellation support.
func AcknowledgePromptWithContext(ctx context.Context, label string, reader *bufio.Reader) error {
	// Create channels for input and errors
	doneChan := make(chan error, 1)

	// Start a goroutine to read input
	go func() {
		fmt.Print(lipgloss.Gray.Render(label))

		_, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			doneChan <- fmt.Errorf("reading input: %w", err)
			return
		}
		doneChan <- nil
	}()

	// Wait for either input or context cancellation
	select {
	case <-ctx.Done():
		fmt.Println() // Print newline for clean exit
		return ctx.Err()
	case err := <-doneChan:
		fmt.Println()
		return err
	}
}
