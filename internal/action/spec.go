package action

// ParamType is the JSON schema type of one action parameter.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
)

// Param describes one parameter of an action's input schema.
type Param struct {
	Type        ParamType
	Description string
	Required    bool
}

// Spec is an engine-neutral declaration of one action: enough for the
// reasoning engine to advertise it as a callable function.
type Spec struct {
	Name        string
	Description string
	Params      map[string]Param
}

// Specs returns declarations for every registered action, in a stable order.
func Specs() []Spec {
	return []Spec{
		{
			Name: NameScopeProject,
			Description: "Generate a structured kanban plan from the user's final, refined " +
				"project idea. Replaces any current plan. Call this only once the user is " +
				"happy with the idea and asks for the plan.",
			Params: map[string]Param{
				"idea": {Type: TypeString, Description: "The final, summarized project idea.", Required: true},
			},
		},
		{
			Name:        NameAddTask,
			Description: "Add a task to the current plan.",
			Params: map[string]Param{
				"title":       {Type: TypeString, Description: "Short, clear task title.", Required: true},
				"description": {Type: TypeString, Description: "What needs to be done."},
			},
		},
		{
			Name:        NameModifyTask,
			Description: "Update the title and/or description of an existing task.",
			Params: map[string]Param{
				"id":          {Type: TypeInteger, Description: "Id of the task to update.", Required: true},
				"title":       {Type: TypeString, Description: "New task title."},
				"description": {Type: TypeString, Description: "New task description."},
			},
		},
		{
			Name:        NameRemoveTask,
			Description: "Remove a task from the current plan.",
			Params: map[string]Param{
				"id": {Type: TypeInteger, Description: "Id of the task to remove.", Required: true},
			},
		},
		{
			Name: NameSavePlan,
			Description: "Save the current plan to disk under a destination name and end " +
				"the session. Call this when the user asks to save or finish.",
			Params: map[string]Param{
				"name": {Type: TypeString, Description: "Destination name for the saved plan.", Required: true},
			},
		},
		{
			Name:        NameLoadPlan,
			Description: "Load a previously saved plan, replacing the current one.",
			Params: map[string]Param{
				"name": {Type: TypeString, Description: "Name the plan was saved under.", Required: true},
			},
		},
	}
}
