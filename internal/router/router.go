// Package router drives the dialogue loop: it owns the session phase
// machine, feeds the transcript to the engine, and executes whatever
// actions the engine requests. Action failures are recorded as failed
// result turns and the loop keeps going; only engine transport failures
// surface as errors to the caller.
package router

import (
	"context"
	"errors"
	"fmt"

	"kanba/internal/action"
	"kanba/internal/engine"
	"kanba/internal/session"
)

// Phase is the router's position in the dialogue loop. Transitions are
// strictly awaiting -> dispatching -> executing -> (awaiting | terminated);
// executing is skipped when the engine replies without requesting actions.
type Phase string

const (
	PhaseAwaitingInput Phase = "awaiting_user_input"
	PhaseDispatching   Phase = "dispatching"
	PhaseExecuting     Phase = "executing_action"
	PhaseTerminated    Phase = "terminated"
)

// ErrSessionOver indicates input arrived after the session terminated.
var ErrSessionOver = errors.New("session has ended")

// maxAutoContinues bounds how many times the router re-dispatches to the
// engine after executing actions, without new user input. One follow-up is
// enough for the engine to narrate results; anything more risks loops.
const maxAutoContinues = 1

// Router runs one chat session.
type Router struct {
	engine engine.Engine
	deps   action.Deps
	state  *session.State
	phase  Phase
}

// New creates a router over the given session state. The engine doubles as
// the plan generator for scope_project.
func New(eng engine.Engine, records action.Records, st *session.State) *Router {
	return &Router{
		engine: eng,
		deps:   action.Deps{Generator: eng, Records: records},
		state:  st,
		phase:  PhaseAwaitingInput,
	}
}

// Phase reports the router's current phase.
func (r *Router) Phase() Phase { return r.phase }

// State returns the session state the router mutates.
func (r *Router) State() *session.State { return r.state }

// HandleUserTurn processes one user message to completion: it records the
// message, dispatches to the engine, executes any requested actions, and
// keeps dispatching until the engine stops requesting actions or the
// auto-continue cap is reached. It returns every turn produced, including
// failed result turns.
//
// A returned error means the turn could not complete (the engine was
// unreachable, or the session is over); the transcript still contains
// whatever was recorded before the failure, and the router is back in
// PhaseAwaitingInput unless the session terminated.
func (r *Router) HandleUserTurn(ctx context.Context, input string) ([]session.Turn, error) {
	if r.phase == PhaseTerminated {
		return nil, ErrSessionOver
	}
	if r.phase != PhaseAwaitingInput {
		return nil, fmt.Errorf("cannot accept input while %s", r.phase)
	}

	start := len(r.state.Turns)
	r.state.AppendUser(input)

	for hop := 0; ; hop++ {
		r.phase = PhaseDispatching
		dec, err := r.engine.Decide(ctx, engine.DecideRequest{
			Turns:       r.state.Turns,
			PlanSummary: r.state.PlanSummary(),
		})
		if err != nil {
			r.phase = PhaseAwaitingInput
			return r.produced(start), fmt.Errorf("dispatch failed: %w", err)
		}

		if dec.Reply != "" {
			r.state.AppendAssistant(dec.Reply)
		}
		if len(dec.Actions) == 0 {
			r.phase = PhaseAwaitingInput
			return r.produced(start), nil
		}

		r.phase = PhaseExecuting
		if terminated := r.executeAll(ctx, dec.Actions); terminated {
			r.phase = PhaseTerminated
			return r.produced(start), nil
		}

		if hop >= maxAutoContinues {
			r.phase = PhaseAwaitingInput
			return r.produced(start), nil
		}
	}
}

// executeAll runs the requested actions in order. Each action parses and
// executes independently; a failure is recorded and the next action still
// runs. Returns true when a terminal action succeeded, in which case the
// remaining requests are dropped.
func (r *Router) executeAll(ctx context.Context, reqs []engine.ActionRequest) bool {
	for _, req := range reqs {
		r.state.AppendAction(req.Name, req.Args)

		inv, err := action.Parse(req.Name, req.Args)
		if err != nil {
			r.state.AppendResult(req.Name, err.Error(), true)
			continue
		}

		res := action.Execute(ctx, inv, r.state, r.deps)
		r.state.AppendResult(req.Name, res.Content, res.Err != nil)
		if res.Err == nil && res.Terminal {
			return true
		}
	}
	return false
}

func (r *Router) produced(start int) []session.Turn {
	return r.state.Turns[start:]
}
