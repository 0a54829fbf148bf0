// internal/prompt/prompt.go
package prompt

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/tmc/langchaingo/prompts"
)

const (
	AssetEntry          = "asset_entry_prompt"
	MaintenanceSchedule = "maintenance_schedule_prompt"
	TaskPlan            = "task_plan_prompt"
	Qualification       = "qualification_prompt"
	IncidentAnalysis    = "incident_analysis_prompt"
)

// Template is a named prompt with an optional system part and a human part.
type Template struct {
	Name   string
	System *prompts.PromptTemplate
	Human  prompts.PromptTemplate
}

// Rendered holds the formatted text ready to send to a model.
type Rendered struct {
	System string
	Human  string
}

var registry = map[string]*Template{
	AssetEntry: {
		Name:  AssetEntry,
		Human: goTemplate(assetEntryTemplate, "asset_description", "target_field", "field_description", "accepted_values", "historical_values", "expected_values"),
	},
	MaintenanceSchedule: {
		Name:   MaintenanceSchedule,
		System: ptr(goTemplate(maintenanceSystemTemplate)),
		Human:  goTemplate(maintenanceHumanTemplate, "text"),
	},
	TaskPlan: {
		Name:   TaskPlan,
		System: ptr(goTemplate(taskPlanSystemTemplate)),
		Human:  goTemplate(taskPlanHumanTemplate, "text"),
	},
	Qualification: {
		Name:   Qualification,
		System: ptr(goTemplate(qualificationSystemTemplate)),
		Human:  goTemplate(qualificationHumanTemplate, "text"),
	},
	IncidentAnalysis: {
		Name: IncidentAnalysis,
		System: ptr(goTemplate(incidentSystemTemplate,
			"hazard_type_options", "precaution_timing_options", "equipment_category_options", "equipment_class_options")),
		Human: goTemplate(incidentHumanTemplate, "text"),
	},
}

// Get returns the named template.
func Get(name string) (*Template, error) {
	t, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("Prompt '%s' not found.", name)
	}
	return t, nil
}

// Names lists the registered prompt names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render formats both parts of the template. Values that are not strings are
// rendered as JSON.
func (t *Template) Render(values map[string]any) (*Rendered, error) {
	text := make(map[string]any, len(values))
	for k, v := range values {
		s, err := toText(v)
		if err != nil {
			return nil, fmt.Errorf("render %s: value %q: %w", t.Name, k, err)
		}
		text[k] = s
	}

	out := &Rendered{}
	if t.System != nil {
		if err := requireVars(t.System, text); err != nil {
			return nil, fmt.Errorf("render %s: %w", t.Name, err)
		}
		s, err := t.System.Format(text)
		if err != nil {
			return nil, fmt.Errorf("render %s system: %w", t.Name, err)
		}
		out.System = s
	}

	if err := requireVars(&t.Human, text); err != nil {
		return nil, fmt.Errorf("render %s: %w", t.Name, err)
	}
	h, err := t.Human.Format(text)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", t.Name, err)
	}
	out.Human = h
	return out, nil
}

func requireVars(p *prompts.PromptTemplate, values map[string]any) error {
	for _, name := range p.InputVariables {
		if _, ok := values[name]; !ok {
			return fmt.Errorf("missing variable %q", name)
		}
	}
	return nil
}

func toText(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "None", nil
	case string:
		return val, nil
	case fmt.Stringer:
		return val.String(), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func goTemplate(tmpl string, vars ...string) prompts.PromptTemplate {
	return prompts.PromptTemplate{
		Template:       tmpl,
		InputVariables: vars,
		TemplateFormat: prompts.TemplateFormatGoTemplate,
	}
}

func ptr(p prompts.PromptTemplate) *prompts.PromptTemplate { return &p }
