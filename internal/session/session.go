// Package session holds the mutable context of one chat session: the
// append-only turn history and the single in-memory plan. Every component
// that reads or writes "the plan" goes through the State it was handed;
// there are no package-level singletons, so multiple sessions can coexist
// by constructing one State each.
package session

import (
	"time"

	"github.com/google/uuid"

	"kanba/internal/plan"
)

// TurnKind distinguishes the four things that can appear in a transcript.
type TurnKind string

const (
	TurnUser      TurnKind = "user"      // message typed by the user
	TurnAssistant TurnKind = "assistant" // natural-language reply from the engine
	TurnAction    TurnKind = "action"    // action requested by the engine
	TurnResult    TurnKind = "result"    // outcome of an executed action
)

// Turn is one entry in the session transcript.
type Turn struct {
	ID      string
	Kind    TurnKind
	Content string // user/assistant text, or a rendered result summary

	// Set on action and result turns.
	Action string
	Args   map[string]any

	// Set on failed result turns; Content still carries the user-facing text.
	Failed bool

	At time.Time
}

// State is the dialogue state for one session.
type State struct {
	ID    string
	Turns []Turn

	// Plan is the session's single source of truth for the current plan.
	// Nil until scope_project or load_plan runs.
	Plan *plan.Plan
}

// NewState creates an empty session state.
func NewState(id string) *State {
	return &State{ID: id}
}

// AppendUser records a user message turn.
func (s *State) AppendUser(content string) Turn {
	return s.append(Turn{Kind: TurnUser, Content: content})
}

// AppendAssistant records a natural-language reply turn.
func (s *State) AppendAssistant(content string) Turn {
	return s.append(Turn{Kind: TurnAssistant, Content: content})
}

// AppendAction records a requested action invocation.
func (s *State) AppendAction(name string, args map[string]any) Turn {
	return s.append(Turn{Kind: TurnAction, Action: name, Args: args})
}

// AppendResult records the outcome of an executed action.
func (s *State) AppendResult(name, content string, failed bool) Turn {
	return s.append(Turn{Kind: TurnResult, Action: name, Content: content, Failed: failed})
}

func (s *State) append(t Turn) Turn {
	t.ID = uuid.NewString()
	t.At = time.Now()
	s.Turns = append(s.Turns, t)
	return t
}

// PlanSummary returns a one-line summary of the current plan, or "" when
// no plan is loaded.
func (s *State) PlanSummary() string {
	if s.Plan == nil {
		return ""
	}
	return s.Plan.Summary()
}
