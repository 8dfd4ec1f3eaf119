package plan

import (
	"encoding/json"
	"fmt"
)

// Document serializes the plan to its JSON exchange form. Task order is
// preserved; the id counter is not part of the document.
func (p *Plan) Document() ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plan: %w", err)
	}
	return data, nil
}

// FromDocument parses and validates a plan document. The id counter is
// re-derived from the highest task id so future AddTask calls stay monotonic.
func FromDocument(data []byte) (*Plan, error) {
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.nextID = maxID(p.Tasks) + 1
	return &p, nil
}
