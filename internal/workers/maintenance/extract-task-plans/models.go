package extracttaskplans

import (
	"eam-assistant/internal/models"
	"eam-assistant/internal/workers/maintenance"
)

type Input struct {
	DocumentCode string `json:"documentCode"`
	CreateInEAM  bool   `json:"create_in_eam"`
}

type Output struct {
	ExtractedData []models.TaskPlan            `json:"extracted_data"`
	CreatedInEAM  []maintenance.TaskPlanResult `json:"created_in_eam,omitempty"`
}
