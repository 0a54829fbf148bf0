package extractqualifications

import (
	"eam-assistant/internal/documents"
	"eam-assistant/internal/models"
)

type Input struct {
	DocumentCode              string `json:"documentCode"`
	CreateQualificationsInEAM bool   `json:"create_qualifications_in_eam"`

	Upload *documents.Upload `json:"-"`
}

type Summary struct {
	TotalQualifications int `json:"total_qualifications"`
}

type QualificationResult struct {
	QualificationCode string      `json:"qualification_code"`
	Description       string      `json:"qualification_description"`
	APIResponse       interface{} `json:"api_response"`
	Error             string      `json:"error,omitempty"`
}

type Output struct {
	ExtractedData *models.QualificationExtraction `json:"extracted_data"`
	Summary       Summary                         `json:"summary"`
	CreatedInEAM  []QualificationResult           `json:"created_in_eam,omitempty"`
}
