package action

import (
	"context"
	"fmt"

	"kanba/internal/plan"
	"kanba/internal/session"
	"kanba/internal/store"
)

// PlanGenerator turns a refined idea into a structured plan. Implemented by
// the engine package; injected so action execution stays testable offline.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, idea string) (*plan.Plan, error)
}

// Records is the slice of the persistence adapter that actions need.
type Records interface {
	Put(name string, p *plan.Plan) error
	Get(name string) (*plan.Plan, error)
}

// Deps carries the external collaborators actions may touch.
type Deps struct {
	Generator PlanGenerator
	Records   Records
}

// Result is the outcome of executing a single invocation. A failed action
// sets Err and a user-facing Content message; it never panics and never
// leaves the session plan half-mutated.
type Result struct {
	Invocation Invocation
	Content    string
	Err        error

	// Terminal is set when the session should end (successful save_plan).
	Terminal bool
}

// Execute runs one validated invocation against the session state.
func Execute(ctx context.Context, inv Invocation, st *session.State, deps Deps) Result {
	switch v := inv.(type) {
	case ScopeProject:
		return executeScopeProject(ctx, v, st, deps)
	case AddTask:
		return executeAddTask(v, st)
	case ModifyTask:
		return executeModifyTask(v, st)
	case RemoveTask:
		return executeRemoveTask(v, st)
	case SavePlan:
		return executeSavePlan(v, st, deps)
	case LoadPlan:
		return executeLoadPlan(v, st, deps)
	}
	// Parse only produces the types above.
	return fail(inv, fmt.Errorf("%w: %q", ErrUnknownAction, inv.Name()))
}

func executeScopeProject(ctx context.Context, inv ScopeProject, st *session.State, deps Deps) Result {
	p, err := deps.Generator.GeneratePlan(ctx, inv.Idea)
	if err != nil {
		return fail(inv, fmt.Errorf("plan generation failed: %w", err))
	}
	st.Plan = p
	return ok(inv, fmt.Sprintf("Created plan: %s", p.Summary()))
}

func executeAddTask(inv AddTask, st *session.State) Result {
	if st.Plan == nil {
		return fail(inv, noPlanErr("add a task"))
	}
	task, err := st.Plan.AddTask(inv.Title, inv.Description)
	if err != nil {
		return fail(inv, err)
	}
	return ok(inv, fmt.Sprintf("Added task %d: %s", task.ID, task.Title))
}

func executeModifyTask(inv ModifyTask, st *session.State) Result {
	if st.Plan == nil {
		return fail(inv, noPlanErr("modify a task"))
	}
	task, err := st.Plan.UpdateTask(inv.ID, plan.TaskUpdate{
		Title:       inv.Title,
		Description: inv.Description,
	})
	if err != nil {
		return fail(inv, err)
	}
	return ok(inv, fmt.Sprintf("Updated task %d: %s", task.ID, task.Title))
}

func executeRemoveTask(inv RemoveTask, st *session.State) Result {
	if st.Plan == nil {
		return fail(inv, noPlanErr("remove a task"))
	}
	if err := st.Plan.RemoveTask(inv.ID); err != nil {
		return fail(inv, err)
	}
	return ok(inv, fmt.Sprintf("Removed task %d", inv.ID))
}

func executeSavePlan(inv SavePlan, st *session.State, deps Deps) Result {
	if st.Plan == nil {
		return fail(inv, noPlanErr("save the plan"))
	}
	normalized, err := store.NormalizeName(inv.Destination)
	if err != nil {
		return fail(inv, err)
	}
	if err := deps.Records.Put(normalized, st.Plan); err != nil {
		return fail(inv, err)
	}
	r := ok(inv, fmt.Sprintf("Saved plan %q as %s", st.Plan.ProjectTitle, normalized))
	r.Terminal = true
	return r
}

func executeLoadPlan(inv LoadPlan, st *session.State, deps Deps) Result {
	p, err := deps.Records.Get(inv.Destination)
	if err != nil {
		return fail(inv, err)
	}
	st.Plan = p
	return ok(inv, fmt.Sprintf("Loaded plan: %s", p.Summary()))
}

func noPlanErr(verb string) error {
	return fmt.Errorf("%w: scope or load a project before trying to %s", ErrNoActivePlan, verb)
}

func ok(inv Invocation, content string) Result {
	return Result{Invocation: inv, Content: content}
}

func fail(inv Invocation, err error) Result {
	return Result{Invocation: inv, Content: err.Error(), Err: err}
}
