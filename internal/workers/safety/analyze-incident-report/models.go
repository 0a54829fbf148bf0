package analyzeincidentreport

import (
	"eam-assistant/internal/documents"
	"eam-assistant/internal/eam"
	"eam-assistant/internal/models"
)

const (
	LinkAttempted = "ATTEMPTED"
	LinkSkipped   = "SKIPPED - Missing EAM hazard/precaution code or hazard type."
)

type Input struct {
	DocumentCode string `json:"documentCode"`
	CreateInEAM  bool   `json:"create_in_eam"`

	Upload *documents.Upload `json:"-"`
}

type Output struct {
	IncidentAnalysis     *models.IncidentAnalysis `json:"incident_analysis"`
	EAMProcessingSummary *ProcessingSummary       `json:"eam_processing_summary,omitempty"`
}

type ProcessingSummary struct {
	HazardPrecautionCreationLog      []HazardLogEntry `json:"hazard_precaution_creation_log"`
	EquipmentSafetyLinkProcessingLog []LinkLogEntry   `json:"equipment_safety_link_processing_log"`
	FailureEventsPublished           int              `json:"failure_events_published"`
}

// HazardLogEntry lists the create calls made while processing one hazard.
// Codes already created earlier in the same report are not sent again.
type HazardLogEntry struct {
	ProcessedHazardCodeLLM       string              `json:"processed_hazard_code_llm"`
	HazardResponses              []*eam.CreateResult `json:"eam_hazard_creation_responses"`
	PrecautionResponsesForHazard []*eam.CreateResult `json:"eam_precaution_creation_responses_for_hazard"`
}

type LinkLogEntry struct {
	EquipmentDetails        models.EquipmentDetails `json:"equipment_details_from_link"`
	LinkedPrecautionCodeLLM string                  `json:"linked_precaution_code_llm"`
	ParentHazardCodeLLM     string                  `json:"parent_hazard_code_llm"`
	EAMHazardCodeRef        *string                 `json:"eam_hazard_code_ref"`
	EAMPrecautionCodeRef    *string                 `json:"eam_precaution_code_ref"`
	Status                  string                  `json:"eam_equipment_safety_link_creation_status"`
	Response                interface{}             `json:"eam_equipment_safety_link_creation_response"`
}

// skippedResponse explains which lookups were missing for a skipped link.
type skippedResponse struct {
	Error   string         `json:"error"`
	Details skippedDetails `json:"details"`
}

type skippedDetails struct {
	HazardCodeFound     bool `json:"eam_hazard_code_found"`
	PrecautionCodeFound bool `json:"eam_precaution_code_found"`
	HazardTypeCodeFound bool `json:"hazard_eam_type_code_found"`
}
