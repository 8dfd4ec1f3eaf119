package plan

import (
	"errors"
	"fmt"
	"strings"
)

// StatusTodo is the only status a task can have. The scoping flow produces
// backlog items for a board's To-Do column; execution state lives elsewhere.
const StatusTodo = "To-Do"

// Sentinel errors for plan operations.
var (
	// ErrInvalid indicates a plan or task failed schema validation.
	ErrInvalid = errors.New("invalid plan")

	// ErrTaskNotFound indicates the referenced task id does not exist.
	ErrTaskNotFound = errors.New("task not found")
)

// Task is one unit of work inside a plan. The id is assigned once and never
// changes or gets reused, even after other tasks are removed.
type Task struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// Plan is the top-level project document: a title, a short description and
// an ordered list of tasks. Task order is meaningful and preserved.
type Plan struct {
	ProjectTitle       string `json:"project_title"`
	ProjectDescription string `json:"project_description"`
	Tasks              []Task `json:"tasks"`

	// nextID is the next task id to hand out. It only grows, so removing
	// the highest-numbered task does not free its id. Not serialized;
	// re-derived from the task list on decode.
	nextID int
}

// New creates an empty plan with a validated title.
func New(title, description string) (*Plan, error) {
	p := &Plan{
		ProjectTitle:       strings.TrimSpace(title),
		ProjectDescription: description,
		nextID:             1,
	}
	if p.ProjectTitle == "" {
		return nil, fmt.Errorf("%w: project title is empty", ErrInvalid)
	}
	return p, nil
}

// TaskUpdate describes a partial task modification. Nil fields are left
// untouched.
type TaskUpdate struct {
	Title       *string
	Description *string
}

// AddTask appends a task with the next unused id and returns it.
func (p *Plan) AddTask(title, description string) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, fmt.Errorf("%w: task title is empty", ErrInvalid)
	}

	t := Task{
		ID:          p.takeNextID(),
		Title:       title,
		Description: description,
		Status:      StatusTodo,
	}
	p.Tasks = append(p.Tasks, t)
	return t, nil
}

// UpdateTask applies a partial update to the task with the given id.
// The plan is left unchanged when the id is unknown or the update is invalid.
func (p *Plan) UpdateTask(id int, upd TaskUpdate) (Task, error) {
	i := p.indexOf(id)
	if i < 0 {
		return Task{}, fmt.Errorf("%w: id %d", ErrTaskNotFound, id)
	}

	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return Task{}, fmt.Errorf("%w: task title is empty", ErrInvalid)
	}

	if upd.Title != nil {
		p.Tasks[i].Title = strings.TrimSpace(*upd.Title)
	}
	if upd.Description != nil {
		p.Tasks[i].Description = *upd.Description
	}
	return p.Tasks[i], nil
}

// RemoveTask deletes the task with the given id, preserving the order of
// the remaining tasks. The id is never handed out again.
func (p *Plan) RemoveTask(id int) error {
	i := p.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: id %d", ErrTaskNotFound, id)
	}
	p.Tasks = append(p.Tasks[:i], p.Tasks[i+1:]...)
	return nil
}

// Task returns the task with the given id.
func (p *Plan) Task(id int) (Task, error) {
	i := p.indexOf(id)
	if i < 0 {
		return Task{}, fmt.Errorf("%w: id %d", ErrTaskNotFound, id)
	}
	return p.Tasks[i], nil
}

// Validate checks the full plan invariants: non-empty project title,
// non-empty task titles, unique ids, and the single legal status value.
func (p *Plan) Validate() error {
	if strings.TrimSpace(p.ProjectTitle) == "" {
		return fmt.Errorf("%w: project title is empty", ErrInvalid)
	}

	seen := make(map[int]bool, len(p.Tasks))
	for i, t := range p.Tasks {
		if strings.TrimSpace(t.Title) == "" {
			return fmt.Errorf("%w: task %d has an empty title", ErrInvalid, i+1)
		}
		if seen[t.ID] {
			return fmt.Errorf("%w: duplicate task id %d", ErrInvalid, t.ID)
		}
		seen[t.ID] = true
		if t.Status != StatusTodo {
			return fmt.Errorf("%w: task %d has status %q, want %q", ErrInvalid, t.ID, t.Status, StatusTodo)
		}
	}
	return nil
}

// Summary returns a one-line description used in prompts and action results.
func (p *Plan) Summary() string {
	n := len(p.Tasks)
	noun := "tasks"
	if n == 1 {
		noun = "task"
	}
	return fmt.Sprintf("%s (%d %s)", p.ProjectTitle, n, noun)
}

func (p *Plan) indexOf(id int) int {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// takeNextID returns the next unused id. Guards against a zero counter so
// plans built directly from decoded documents keep working.
func (p *Plan) takeNextID() int {
	if p.nextID <= 0 {
		p.nextID = maxID(p.Tasks) + 1
	}
	id := p.nextID
	p.nextID++
	return id
}

func maxID(tasks []Task) int {
	max := 0
	for _, t := range tasks {
		if t.ID > max {
			max = t.ID
		}
	}
	return max
}
