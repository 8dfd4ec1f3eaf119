package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"google.golang.org/genai"

	"kanba/internal/action"
	"kanba/internal/plan"
	"kanba/internal/session"
)

const dialogueSystemPrompt = `You are a helpful project assistant. Your goal is to
have a conversation with the user to refine their project idea. Ask clarifying
questions to understand the core features and goals.

Once the user is happy with the idea and asks for the plan, call scope_project
with the final, summarized idea. After a plan exists, use add_task, modify_task
and remove_task to adjust it as the user directs, and save_plan when they want
to save or finish. Refer to tasks by their numeric id.`

const planSystemPrompt = `You are an expert project manager. Take the user's idea
and create a clear, structured project plan with initial tasks that can be used
on a kanban board. Aim for 5 to 7 tasks; use more only when the idea genuinely
needs them.

For every task, the status field MUST be the exact string "To-Do".`

// Gemini is the production Engine, backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates an engine using the given API key and model name.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Decide sends the transcript and the action declarations to the model and
// extracts its reply and requested actions.
func (g *Gemini) Decide(ctx context.Context, req DecideRequest) (Decision, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(dialogueInstruction(req.PlanSummary), genai.RoleUser),
		Tools: []*genai.Tool{
			{FunctionDeclarations: declarations(action.Specs())},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, transcriptContents(req.Turns), cfg)
	if err != nil {
		return Decision{}, fmt.Errorf("gemini request: %w", err)
	}
	return decisionFrom(resp)
}

// GeneratePlan asks the model for a structured plan document and decodes it.
func (g *Gemini) GeneratePlan(ctx context.Context, idea string) (*plan.Plan, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(planSystemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    planSchema(),
	}

	contents := []*genai.Content{genai.NewContentFromText(idea, genai.RoleUser)}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}

	text := textFrom(resp)
	if text == "" {
		return nil, fmt.Errorf("%w: empty plan response", ErrGeneration)
	}
	return planFromGenerated([]byte(text))
}

func dialogueInstruction(planSummary string) string {
	if planSummary == "" {
		return dialogueSystemPrompt + "\n\nThere is no plan yet."
	}
	return dialogueSystemPrompt + "\n\nCurrent plan: " + planSummary
}

// transcriptContents maps session turns onto the model's message format.
// Action turns replay as function calls from the model, results as function
// responses from the user side.
func transcriptContents(turns []session.Turn) []*genai.Content {
	out := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		switch t.Kind {
		case session.TurnUser:
			out = append(out, genai.NewContentFromText(t.Content, genai.RoleUser))
		case session.TurnAssistant:
			out = append(out, genai.NewContentFromText(t.Content, genai.RoleModel))
		case session.TurnAction:
			out = append(out, &genai.Content{
				Role: string(genai.RoleModel),
				Parts: []*genai.Part{
					{FunctionCall: &genai.FunctionCall{Name: t.Action, Args: t.Args}},
				},
			})
		case session.TurnResult:
			key := "result"
			if t.Failed {
				key = "error"
			}
			out = append(out, &genai.Content{
				Role: string(genai.RoleUser),
				Parts: []*genai.Part{
					{FunctionResponse: &genai.FunctionResponse{
						Name:     t.Action,
						Response: map[string]any{key: t.Content},
					}},
				},
			})
		}
	}
	return out
}

// declarations converts the action registry into function declarations.
func declarations(specs []action.Spec) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(specs))
	for _, s := range specs {
		props := make(map[string]*genai.Schema, len(s.Params))
		var required []string
		for name, p := range s.Params {
			props[name] = &genai.Schema{
				Type:        schemaType(p.Type),
				Description: p.Description,
			}
			if p.Required {
				required = append(required, name)
			}
		}
		sort.Strings(required)
		out = append(out, &genai.FunctionDeclaration{
			Name:        s.Name,
			Description: s.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: props,
				Required:   required,
			},
		})
	}
	return out
}

func schemaType(t action.ParamType) genai.Type {
	if t == action.TypeInteger {
		return genai.TypeInteger
	}
	return genai.TypeString
}

func planSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"project_title":       {Type: genai.TypeString, Description: "A concise title for the project."},
			"project_description": {Type: genai.TypeString, Description: "A one-paragraph summary of the project."},
			"tasks": {
				Type:        genai.TypeArray,
				Description: "Initial tasks for the To-Do column.",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"id":          {Type: genai.TypeInteger, Description: "Sequential task id starting at 1."},
						"title":       {Type: genai.TypeString, Description: "Short, clear task title."},
						"description": {Type: genai.TypeString, Description: "What needs to be done."},
						"status":      {Type: genai.TypeString, Description: `Always the exact string "To-Do".`},
					},
					Required: []string{"id", "title", "description", "status"},
				},
			},
		},
		Required: []string{"project_title", "project_description", "tasks"},
	}
}

// decisionFrom extracts the reply text and action requests from a response.
func decisionFrom(resp *genai.GenerateContentResponse) (Decision, error) {
	var d Decision
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return d, fmt.Errorf("%w: empty response", ErrGeneration)
	}

	var reply strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.Text != "" {
			if reply.Len() > 0 {
				reply.WriteString("\n")
			}
			reply.WriteString(part.Text)
		}
		if part.FunctionCall != nil {
			d.Actions = append(d.Actions, ActionRequest{
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
		}
	}

	d.Reply = reply.String()
	if d.Reply == "" && len(d.Actions) == 0 {
		return d, fmt.Errorf("%w: response had no text or actions", ErrGeneration)
	}
	return d, nil
}

func textFrom(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

// planFromGenerated builds a plan from the model's JSON document. Task ids
// from the model are ignored; the plan assigns its own sequential ids so a
// malformed id column can never corrupt the session.
func planFromGenerated(data []byte) (*plan.Plan, error) {
	var doc struct {
		ProjectTitle       string `json:"project_title"`
		ProjectDescription string `json:"project_description"`
		Tasks              []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"tasks"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decoding plan document: %v", ErrGeneration, err)
	}

	p, err := plan.New(doc.ProjectTitle, doc.ProjectDescription)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	for _, t := range doc.Tasks {
		if _, err := p.AddTask(t.Title, t.Description); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
		}
	}
	if len(p.Tasks) == 0 {
		return nil, fmt.Errorf("%w: plan document had no tasks", ErrGeneration)
	}
	return p, nil
}
