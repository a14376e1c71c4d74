package converter

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Runner executes an external program and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return buf.Bytes(), fmt.Errorf("%s: %w", name, ctx.Err())
		}
		return buf.Bytes(), fmt.Errorf("%s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func (f RunnerFunc) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return f(ctx, name, args...)
}
