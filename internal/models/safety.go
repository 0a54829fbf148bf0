// internal/models/safety.go
package models

type HazardType string

const (
	HazardTypeAll          HazardType = "All Hazards"
	HazardTypeBiological   HazardType = "Biological Hazards"
	HazardTypeChemical     HazardType = "Chemical Hazards"
	HazardTypePhysical     HazardType = "Physical Hazards"
	HazardTypeRadiological HazardType = "Radiological Hazards"
)

// HazardTypes lists the accepted hazard types in prompt order.
var HazardTypes = []HazardType{
	HazardTypeAll,
	HazardTypeBiological,
	HazardTypeChemical,
	HazardTypePhysical,
	HazardTypeRadiological,
}

var hazardTypeCodes = map[HazardType]string{
	HazardTypeAll:          "GEN",
	HazardTypeBiological:   "BI",
	HazardTypeChemical:     "CH",
	HazardTypePhysical:     "PH",
	HazardTypeRadiological: "RA",
}

// EAMCode returns the EAM hazard type code, PH for anything unknown.
func (t HazardType) EAMCode() string {
	if code, ok := hazardTypeCodes[t]; ok {
		return code
	}
	return "PH"
}

type PrecautionTiming string

const (
	TimingAllTime  PrecautionTiming = "All Time"
	TimingDuring   PrecautionTiming = "During"
	TimingPostWork PrecautionTiming = "Post Work"
	TimingPreWork  PrecautionTiming = "Pre Work"
)

var PrecautionTimings = []PrecautionTiming{TimingAllTime, TimingDuring, TimingPostWork, TimingPreWork}

type Precaution struct {
	PrecautionCode string            `json:"precaution_code"`
	Description    string            `json:"description"`
	Timing         *PrecautionTiming `json:"timing"`
}

type Hazard struct {
	HazardCode  string       `json:"hazard_code"`
	Description string       `json:"description"`
	HazardType  HazardType   `json:"hazard_type"`
	Precautions []Precaution `json:"precautions"`
}

type EquipmentDetails struct {
	ClassCode   *string `json:"class_code"`
	Category    *string `json:"category"`
	EquipmentID string  `json:"equipment_id"`
}

// EquipmentSafetyLink ties a piece of equipment to one precaution of a parent hazard.
type EquipmentSafetyLink struct {
	EquipmentDetails EquipmentDetails `json:"equipment_details"`
	LinkedPrecaution Precaution       `json:"linked_precaution"`
	ParentHazardCode string           `json:"parent_hazard_code"`
}

type IncidentAnalysis struct {
	IdentifiedHazards    []Hazard              `json:"identified_hazards"`
	EquipmentSafetyLinks []EquipmentSafetyLink `json:"equipment_safety_links"`
}

// Hazard returns the identified hazard with the given code.
func (a *IncidentAnalysis) Hazard(code string) (*Hazard, bool) {
	for i := range a.IdentifiedHazards {
		if a.IdentifiedHazards[i].HazardCode == code {
			return &a.IdentifiedHazards[i], true
		}
	}
	return nil, false
}

const precautionDefinition = `{
  "type": "object",
  "required": ["precaution_code", "description"],
  "properties": {
    "precaution_code": {"type": "string"},
    "description": {"type": "string"},
    "timing": {"enum": ["All Time", "During", "Post Work", "Pre Work", null]}
  }
}`

const incidentAnalysisSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "identified_hazards": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["hazard_code", "description", "hazard_type"],
        "properties": {
          "hazard_code": {"type": "string"},
          "description": {"type": "string"},
          "hazard_type": {"enum": ["All Hazards", "Biological Hazards", "Chemical Hazards", "Physical Hazards", "Radiological Hazards"]},
          "precautions": {"type": "array", "items": ` + precautionDefinition + `}
        }
      }
    },
    "equipment_safety_links": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["equipment_details", "linked_precaution", "parent_hazard_code"],
        "properties": {
          "equipment_details": {
            "type": "object",
            "required": ["equipment_id"],
            "properties": {
              "equipment_id": {"type": "string"},
              "class_code": {"type": ["string", "null"]},
              "category": {"type": ["string", "null"]}
            }
          },
          "linked_precaution": ` + precautionDefinition + `,
          "parent_hazard_code": {"type": "string"}
        }
      }
    }
  }
}`
