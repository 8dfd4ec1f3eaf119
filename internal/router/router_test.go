package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"kanba/internal/action"
	"kanba/internal/engine"
	"kanba/internal/plan"
	"kanba/internal/session"
)

type step struct {
	dec engine.Decision
	err error
}

// scriptedEngine replays a fixed sequence of decisions, one per dispatch.
type scriptedEngine struct {
	steps []step
	calls int

	genPlan *plan.Plan
	genErr  error
}

func (e *scriptedEngine) Decide(_ context.Context, _ engine.DecideRequest) (engine.Decision, error) {
	if e.calls >= len(e.steps) {
		e.calls++
		return engine.Decision{Reply: "Anything else?"}, nil
	}
	s := e.steps[e.calls]
	e.calls++
	return s.dec, s.err
}

func (e *scriptedEngine) GeneratePlan(_ context.Context, _ string) (*plan.Plan, error) {
	if e.genErr != nil {
		return nil, e.genErr
	}
	return e.genPlan, nil
}

type memRecords struct {
	saved map[string]*plan.Plan
}

func newMemRecords() *memRecords {
	return &memRecords{saved: make(map[string]*plan.Plan)}
}

func (m *memRecords) Put(name string, p *plan.Plan) error {
	m.saved[name] = p
	return nil
}

func (m *memRecords) Get(name string) (*plan.Plan, error) {
	p, ok := m.saved[name]
	if !ok {
		return nil, fmt.Errorf("not found: %s", name)
	}
	return p, nil
}

func seededPlan(t *testing.T, taskCount int) *plan.Plan {
	t.Helper()
	p, err := plan.New("Weather App", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < taskCount; i++ {
		p.AddTask(fmt.Sprintf("task %d", i+1), "")
	}
	return p
}

func kinds(turns []session.Turn) []session.TurnKind {
	out := make([]session.TurnKind, len(turns))
	for i, t := range turns {
		out[i] = t.Kind
	}
	return out
}

func TestHandleUserTurn_PlainReply(t *testing.T) {
	eng := &scriptedEngine{steps: []step{
		{dec: engine.Decision{Reply: "What platforms should it target?"}},
	}}
	r := New(eng, newMemRecords(), session.NewState("test"))

	turns, err := r.HandleUserTurn(context.Background(), "I want to build a weather app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []session.TurnKind{session.TurnUser, session.TurnAssistant}
	if got := kinds(turns); len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("turn kinds: got %v, want %v", got, want)
	}
	if r.Phase() != PhaseAwaitingInput {
		t.Errorf("phase: got %s, want %s", r.Phase(), PhaseAwaitingInput)
	}
	if eng.calls != 1 {
		t.Errorf("decide calls: got %d, want 1", eng.calls)
	}
}

func TestHandleUserTurn_ActionThenFollowUp(t *testing.T) {
	eng := &scriptedEngine{steps: []step{
		{dec: engine.Decision{Actions: []engine.ActionRequest{
			{Name: action.NameAddTask, Args: map[string]any{"title": "Write docs"}},
		}}},
		{dec: engine.Decision{Reply: "Added a docs task."}},
	}}
	st := session.NewState("test")
	st.Plan = seededPlan(t, 2)
	r := New(eng, newMemRecords(), st)

	turns, err := r.HandleUserTurn(context.Background(), "add a docs task")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []session.TurnKind{
		session.TurnUser, session.TurnAction, session.TurnResult, session.TurnAssistant,
	}
	got := kinds(turns)
	if len(got) != len(want) {
		t.Fatalf("turn kinds: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("turn kinds: got %v, want %v", got, want)
		}
	}

	if len(st.Plan.Tasks) != 3 {
		t.Errorf("got %d tasks, want 3", len(st.Plan.Tasks))
	}
	if eng.calls != 2 {
		t.Errorf("decide calls: got %d, want 2", eng.calls)
	}
	if r.Phase() != PhaseAwaitingInput {
		t.Errorf("phase: got %s", r.Phase())
	}
}

func TestHandleUserTurn_IndependentActionFailures(t *testing.T) {
	eng := &scriptedEngine{steps: []step{
		{dec: engine.Decision{Actions: []engine.ActionRequest{
			{Name: action.NameRemoveTask, Args: map[string]any{"id": float64(9)}},
			{Name: action.NameRemoveTask, Args: map[string]any{"id": float64(1)}},
		}}},
		{dec: engine.Decision{Reply: "Removed task 1; task 9 does not exist."}},
	}}
	st := session.NewState("test")
	st.Plan = seededPlan(t, 2)
	r := New(eng, newMemRecords(), st)

	turns, err := r.HandleUserTurn(context.Background(), "remove tasks 9 and 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var results []session.Turn
	for _, turn := range turns {
		if turn.Kind == session.TurnResult {
			results = append(results, turn)
		}
	}
	if len(results) != 2 {
		t.Fatalf("got %d result turns, want 2", len(results))
	}
	if !results[0].Failed {
		t.Error("first remove should have failed")
	}
	if results[1].Failed {
		t.Errorf("second remove should have succeeded: %s", results[1].Content)
	}

	if len(st.Plan.Tasks) != 1 || st.Plan.Tasks[0].ID != 2 {
		t.Errorf("plan tasks after removal: %+v", st.Plan.Tasks)
	}
}

func TestHandleUserTurn_UnknownActionRecovers(t *testing.T) {
	eng := &scriptedEngine{steps: []step{
		{dec: engine.Decision{Actions: []engine.ActionRequest{
			{Name: "deploy_to_production", Args: map[string]any{}},
		}}},
		{dec: engine.Decision{Reply: "I can't do that."}},
	}}
	r := New(eng, newMemRecords(), session.NewState("test"))

	turns, err := r.HandleUserTurn(context.Background(), "ship it")
	if err != nil {
		t.Fatalf("unknown action must not abort the turn: %v", err)
	}

	var failed *session.Turn
	for i := range turns {
		if turns[i].Kind == session.TurnResult && turns[i].Failed {
			failed = &turns[i]
		}
	}
	if failed == nil {
		t.Fatal("expected a failed result turn")
	}
	if !strings.Contains(failed.Content, "unknown action") {
		t.Errorf("failed result content: %q", failed.Content)
	}
	if r.Phase() != PhaseAwaitingInput {
		t.Errorf("phase: got %s, want %s", r.Phase(), PhaseAwaitingInput)
	}
}

func TestHandleUserTurn_AutoContinueCap(t *testing.T) {
	// The engine requests an action on every dispatch. The router must stop
	// re-dispatching after one automatic continuation.
	loop := step{dec: engine.Decision{Actions: []engine.ActionRequest{
		{Name: action.NameAddTask, Args: map[string]any{"title": "again"}},
	}}}
	eng := &scriptedEngine{steps: []step{loop, loop, loop, loop}}
	st := session.NewState("test")
	st.Plan = seededPlan(t, 0)
	r := New(eng, newMemRecords(), st)

	if _, err := r.HandleUserTurn(context.Background(), "go"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if eng.calls != 2 {
		t.Errorf("decide calls: got %d, want 2 (initial + one continuation)", eng.calls)
	}
	if len(st.Plan.Tasks) != 2 {
		t.Errorf("got %d tasks, want 2", len(st.Plan.Tasks))
	}
	if r.Phase() != PhaseAwaitingInput {
		t.Errorf("phase: got %s", r.Phase())
	}
}

func TestHandleUserTurn_SaveTerminatesSession(t *testing.T) {
	eng := &scriptedEngine{steps: []step{
		{dec: engine.Decision{
			Reply: "Saving your plan.",
			Actions: []engine.ActionRequest{
				{Name: action.NameSavePlan, Args: map[string]any{"name": "Weather App"}},
			},
		}},
	}}
	st := session.NewState("test")
	st.Plan = seededPlan(t, 2)
	records := newMemRecords()
	r := New(eng, records, st)

	if _, err := r.HandleUserTurn(context.Background(), "save it"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.Phase() != PhaseTerminated {
		t.Fatalf("phase: got %s, want %s", r.Phase(), PhaseTerminated)
	}
	if _, ok := records.saved["weather-app"]; !ok {
		t.Error("plan was not saved")
	}
	if eng.calls != 1 {
		t.Errorf("no dispatch should follow a terminal action, got %d calls", eng.calls)
	}

	if _, err := r.HandleUserTurn(context.Background(), "one more thing"); !errors.Is(err, ErrSessionOver) {
		t.Errorf("expected ErrSessionOver, got %v", err)
	}
}

func TestHandleUserTurn_ScopeProjectInstallsPlan(t *testing.T) {
	eng := &scriptedEngine{
		steps: []step{
			{dec: engine.Decision{Actions: []engine.ActionRequest{
				{Name: action.NameScopeProject, Args: map[string]any{"idea": "a weather app"}},
			}}},
			{dec: engine.Decision{Reply: "Here is your plan."}},
		},
		genPlan: seededPlan(t, 5),
	}
	st := session.NewState("test")
	r := New(eng, newMemRecords(), st)

	if _, err := r.HandleUserTurn(context.Background(), "that's perfect, generate the plan"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Plan == nil || len(st.Plan.Tasks) != 5 {
		t.Fatalf("plan not installed: %+v", st.Plan)
	}
}

func TestHandleUserTurn_EngineErrorPropagates(t *testing.T) {
	transport := errors.New("connection refused")
	eng := &scriptedEngine{steps: []step{{err: transport}}}
	st := session.NewState("test")
	r := New(eng, newMemRecords(), st)

	turns, err := r.HandleUserTurn(context.Background(), "hello")
	if !errors.Is(err, transport) {
		t.Fatalf("expected transport error, got %v", err)
	}

	// The user's message stays in the transcript so the retry has context.
	if len(turns) != 1 || turns[0].Kind != session.TurnUser {
		t.Errorf("turns after failure: %v", kinds(turns))
	}
	if r.Phase() != PhaseAwaitingInput {
		t.Errorf("phase: got %s, want %s", r.Phase(), PhaseAwaitingInput)
	}

	// The session recovers on the next turn.
	eng.steps = append(eng.steps, step{dec: engine.Decision{Reply: "hi"}})
	if _, err := r.HandleUserTurn(context.Background(), "hello again"); err != nil {
		t.Errorf("session should recover after a transport failure: %v", err)
	}
}
