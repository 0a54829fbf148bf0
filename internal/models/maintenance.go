// internal/models/maintenance.go
package models

// MaintenanceSchedule is the structure extracted from a maintenance procedure document.
type MaintenanceSchedule struct {
	Code        string     `json:"code"`
	Description string     `json:"description"`
	Duration    int        `json:"duration"`
	TaskPlans   []TaskPlan `json:"task_plans"`
}

type TaskPlan struct {
	TaskCode    string          `json:"task_code"`
	Description string          `json:"description"`
	Checklist   []ChecklistItem `json:"checklist"`
}

type ChecklistItem struct {
	ChecklistID string `json:"checklist_id"`
	Description string `json:"description"`
}

// TaskPlanList is the container returned for service manuals.
type TaskPlanList struct {
	TaskPlans []TaskPlan `json:"task_plans"`
}

const taskPlanDefinition = `{
  "type": "object",
  "required": ["task_code", "description", "checklist"],
  "properties": {
    "task_code": {"type": "string", "maxLength": 20},
    "description": {"type": "string", "maxLength": 80},
    "checklist": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["checklist_id", "description"],
        "properties": {
          "checklist_id": {"type": "string", "maxLength": 20},
          "description": {"type": "string", "maxLength": 80}
        }
      }
    }
  }
}`

const maintenanceScheduleSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["code", "description", "duration", "task_plans"],
  "properties": {
    "code": {"type": "string", "maxLength": 20},
    "description": {"type": "string", "maxLength": 80},
    "duration": {"type": "integer", "minimum": 0},
    "task_plans": {"type": "array", "items": ` + taskPlanDefinition + `}
  }
}`

const taskPlanListSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["task_plans"],
  "properties": {
    "task_plans": {"type": "array", "items": ` + taskPlanDefinition + `}
  }
}`
