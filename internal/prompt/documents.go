// internal/prompt/documents.go
package prompt

import (
	"strconv"
	"strings"

	"eam-assistant/internal/models"
)

// DocumentValues is the variable set shared by the document extraction prompts.
func DocumentValues(text string) map[string]any {
	return map[string]any{"text": text}
}

// IncidentValues adds the option lists the incident analysis prompt constrains
// the model to.
func IncidentValues(text string, categories, classes []string) map[string]any {
	hazardTypes := make([]string, 0, len(models.HazardTypes))
	for _, t := range models.HazardTypes {
		hazardTypes = append(hazardTypes, string(t))
	}
	timings := make([]string, 0, len(models.PrecautionTimings))
	for _, t := range models.PrecautionTimings {
		timings = append(timings, string(t))
	}

	return map[string]any{
		"text":                       text,
		"hazard_type_options":        quotedList(hazardTypes),
		"precaution_timing_options":  quotedList(timings),
		"equipment_category_options": quotedList(categories),
		"equipment_class_options":    quotedList(classes),
	}
}

func quotedList(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, strconv.Quote(v))
	}
	return strings.Join(quoted, ", ")
}
