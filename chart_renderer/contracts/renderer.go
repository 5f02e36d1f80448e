package contracts

import "context"

// IChartRenderer launches the external chart generator for a project folder.
type IChartRenderer interface {
	// Command returns the configured generator command name.
	Command() string
	// Resolve locates the generator binary without running it.
	Resolve() (string, error)
	// Render runs the generator synchronously with workDir as its working
	// directory, streaming its output through to the console.
	Render(ctx context.Context, workDir string) error
}
