// Package engine is the reasoning boundary: it decides how to respond to a
// transcript and turns refined ideas into structured plans. Everything above
// it depends only on the Engine interface, so the router and TUI can run
// against a scripted engine in tests.
package engine

import (
	"context"
	"errors"

	"kanba/internal/plan"
	"kanba/internal/session"
)

// ErrGeneration indicates the model produced output that could not be used:
// an empty response, malformed JSON, or a plan that fails validation.
var ErrGeneration = errors.New("generation failed")

// ActionRequest is one raw action the engine wants executed. It has not been
// validated yet; the action package parses it before anything runs.
type ActionRequest struct {
	Name string
	Args map[string]any
}

// Decision is the engine's response to one dispatch: a natural-language
// reply, zero or more action requests, or both.
type Decision struct {
	Reply   string
	Actions []ActionRequest
}

// DecideRequest carries everything the engine sees on one dispatch.
type DecideRequest struct {
	Turns []session.Turn

	// PlanSummary is a one-line description of the current plan, empty when
	// no plan is loaded. Surfaced in the system instruction so the model
	// knows whether mutating actions can succeed.
	PlanSummary string
}

// Engine is the reasoning backend for a chat session.
type Engine interface {
	// Decide reads the transcript and returns the next reply and/or actions.
	Decide(ctx context.Context, req DecideRequest) (Decision, error)

	// GeneratePlan turns a final, refined project idea into a fresh plan.
	GeneratePlan(ctx context.Context, idea string) (*plan.Plan, error)
}
