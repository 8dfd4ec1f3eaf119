// Package action defines the closed set of operations the reasoning engine
// may request, plus their argument validation and execution. Action names
// arrive as strings from the engine; Parse maps them onto concrete
// invocation types before anything runs, so an unknown or malformed request
// can never reach execution.
package action

import (
	"errors"
	"fmt"
)

// Sentinel errors for action parsing and execution.
var (
	// ErrUnknownAction indicates the engine requested a name outside the
	// registry.
	ErrUnknownAction = errors.New("unknown action")

	// ErrBadArgs indicates the arguments did not match the action's schema.
	ErrBadArgs = errors.New("invalid action arguments")

	// ErrNoActivePlan indicates a mutating action ran with no plan loaded.
	ErrNoActivePlan = errors.New("no active plan")
)

// Action names as the engine requests them.
const (
	NameScopeProject = "scope_project"
	NameAddTask      = "add_task"
	NameModifyTask   = "modify_task"
	NameRemoveTask   = "remove_task"
	NameSavePlan     = "save_plan"
	NameLoadPlan     = "load_plan"
)

// Invocation is one validated action request. The concrete types below are
// the full set; execution dispatches over them exhaustively.
type Invocation interface {
	Name() string
}

// ScopeProject generates a fresh plan from a refined project idea,
// replacing the session's current plan.
type ScopeProject struct {
	Idea string
}

// AddTask appends a task to the current plan.
type AddTask struct {
	Title       string
	Description string
}

// ModifyTask updates fields of an existing task. Nil fields are untouched.
type ModifyTask struct {
	ID          int
	Title       *string
	Description *string
}

// RemoveTask deletes a task from the current plan.
type RemoveTask struct {
	ID int
}

// SavePlan persists the current plan under a destination name and ends the
// session.
type SavePlan struct {
	Destination string
}

// LoadPlan loads a stored plan, replacing the session's current plan.
type LoadPlan struct {
	Destination string
}

func (ScopeProject) Name() string { return NameScopeProject }
func (AddTask) Name() string      { return NameAddTask }
func (ModifyTask) Name() string   { return NameModifyTask }
func (RemoveTask) Name() string   { return NameRemoveTask }
func (SavePlan) Name() string     { return NameSavePlan }
func (LoadPlan) Name() string     { return NameLoadPlan }

// Parse validates a raw engine request against the registry. The args map
// is the decoded function-call payload; JSON numbers arrive as float64.
func Parse(name string, args map[string]any) (Invocation, error) {
	switch name {
	case NameScopeProject:
		idea, err := stringArg(args, "idea")
		if err != nil {
			return nil, err
		}
		return ScopeProject{Idea: idea}, nil

	case NameAddTask:
		title, err := stringArg(args, "title")
		if err != nil {
			return nil, err
		}
		return AddTask{Title: title, Description: optionalStringValue(args, "description")}, nil

	case NameModifyTask:
		id, err := intArg(args, "id")
		if err != nil {
			return nil, err
		}
		inv := ModifyTask{
			ID:          id,
			Title:       optionalStringArg(args, "title"),
			Description: optionalStringArg(args, "description"),
		}
		if inv.Title == nil && inv.Description == nil {
			return nil, fmt.Errorf("%w: modify_task needs a title or description", ErrBadArgs)
		}
		return inv, nil

	case NameRemoveTask:
		id, err := intArg(args, "id")
		if err != nil {
			return nil, err
		}
		return RemoveTask{ID: id}, nil

	case NameSavePlan:
		dest, err := stringArg(args, "name")
		if err != nil {
			return nil, err
		}
		return SavePlan{Destination: dest}, nil

	case NameLoadPlan:
		dest, err := stringArg(args, "name")
		if err != nil {
			return nil, err
		}
		return LoadPlan{Destination: dest}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, name)
}

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%w: missing %q", ErrBadArgs, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string", ErrBadArgs, key)
	}
	if s == "" {
		return "", fmt.Errorf("%w: %q is empty", ErrBadArgs, key)
	}
	return s, nil
}

func optionalStringArg(args map[string]any, key string) *string {
	if s, ok := args[key].(string); ok {
		return &s
	}
	return nil
}

func optionalStringValue(args map[string]any, key string) string {
	if s, ok := args[key].(string); ok {
		return s
	}
	return ""
}

func intArg(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %q", ErrBadArgs, key)
	}
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("%w: %q must be an integer", ErrBadArgs, key)
		}
		return int(n), nil
	case int:
		return n, nil
	}
	return 0, fmt.Errorf("%w: %q must be an integer", ErrBadArgs, key)
}
