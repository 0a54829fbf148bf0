// internal/models/schemas.go
package models

import (
	"encoding/json"

	apperrors "eam-assistant/internal/common/errors"
	"eam-assistant/internal/common/validation"
)

var (
	MaintenanceScheduleSchema     = validation.MustCompile("maintenance_schedule", maintenanceScheduleSchema)
	TaskPlanListSchema            = validation.MustCompile("task_plan_list", taskPlanListSchema)
	IncidentAnalysisSchema        = validation.MustCompile("incident_analysis", incidentAnalysisSchema)
	QualificationExtractionSchema = validation.MustCompile("qualification_extraction", qualificationExtractionSchema)
)

// DecodeValidated checks raw LLM output against schema and decodes it into dest.
func DecodeValidated(raw []byte, schema *validation.Schema, dest interface{}) error {
	result, err := schema.ValidateJSON(raw)
	if err != nil {
		return apperrors.NewLLMOutputInvalidError(err.Error())
	}
	if !result.Valid {
		return apperrors.NewSchemaValidationError(schema.Name() + ": " + result.Summary())
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return apperrors.NewLLMOutputInvalidError(err.Error())
	}
	return nil
}
