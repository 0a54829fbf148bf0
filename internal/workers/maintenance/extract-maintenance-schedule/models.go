package extractmaintenanceschedule

import (
	"eam-assistant/internal/documents"
	"eam-assistant/internal/models"
	"eam-assistant/internal/workers/maintenance"
)

type Input struct {
	DocumentCode string `json:"documentCode"`
	CreateInEAM  bool   `json:"create_in_eam"`

	// Upload is set by the HTTP route; job variables cannot carry one.
	Upload *documents.Upload `json:"-"`
}

type Output struct {
	ExtractedData *models.MaintenanceSchedule  `json:"extracted_data"`
	Schedule      *maintenance.WriteResult     `json:"schedule,omitempty"`
	CreatedInEAM  []maintenance.TaskPlanResult `json:"created_in_eam,omitempty"`
}
