package providers

import (
	"context"
	"fmt"
)

// Generator turns a prompt into text using the named model. Implementations
// never panic across this boundary; every failure is a *GatewayError.
type Generator interface {
	Generate(ctx context.Context, modelID, prompt string) (string, error)
}

type ErrorKind int

const (
	// KindStatus means the backend answered with a non-success HTTP status.
	KindStatus ErrorKind = iota
	// KindTransport covers timeouts, connection failures and undecodable bodies.
	KindTransport
)

type GatewayError struct {
	Kind ErrorKind
	Code int
	Err  error
}

func (e *GatewayError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("backend returned status %d", e.Code)
	}
	return fmt.Sprintf("backend transport error: %v", e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

func StatusError(code int, err error) *GatewayError {
	return &GatewayError{Kind: KindStatus, Code: code, Err: err}
}

func TransportError(err error) *GatewayError {
	return &GatewayError{Kind: KindTransport, Err: err}
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, modelID, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, modelID, prompt string) (string, error) {
	return f(ctx, modelID, prompt)
}
