// internal/models/training.go
package models

type Qualification struct {
	QualificationCode        string `json:"qualification_code"`
	QualificationDescription string `json:"qualification_description"`
}

type QualificationExtraction struct {
	Qualifications []Qualification `json:"qualifications"`
}

const qualificationExtractionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "qualifications": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["qualification_code", "qualification_description"],
        "properties": {
          "qualification_code": {"type": "string", "maxLength": 20},
          "qualification_description": {"type": "string", "maxLength": 80}
        }
      }
    }
  }
}`
