// internal/workers/maintenance/writeback.go
package maintenance

import (
	"context"

	"eam-assistant/internal/common/logger"
	"eam-assistant/internal/eam"
	"eam-assistant/internal/models"
)

// TaskPlanWriter is the part of eam.Client that creates task plans.
type TaskPlanWriter interface {
	CreateTaskPlan(ctx context.Context, plan models.TaskPlan) (interface{}, error)
	CreateChecklist(ctx context.Context, taskCode string, item models.ChecklistItem, sequence int) (interface{}, error)
}

// ScheduleWriter also creates the maintenance schedule.
type ScheduleWriter interface {
	TaskPlanWriter
	CreateMaintenanceSchedule(ctx context.Context, schedule models.MaintenanceSchedule) (interface{}, error)
}

type ChecklistResult struct {
	ChecklistID string      `json:"checklist_id"`
	Description string      `json:"description"`
	APIResponse interface{} `json:"api_response"`
	Error       string      `json:"error,omitempty"`
}

type TaskPlanResult struct {
	TaskCode    string            `json:"task_code"`
	Description string            `json:"description"`
	APIResponse interface{}       `json:"api_response"`
	Checklists  []ChecklistResult `json:"checklists"`
	Error       string            `json:"error,omitempty"`
}

// WriteResult is the outcome of a single create call.
type WriteResult struct {
	APIResponse interface{} `json:"api_response"`
	Error       string      `json:"error,omitempty"`
}

// CreateTaskPlans creates each plan followed by its checklist items at
// sequence 10, 20, 30 and so on. A failed plan is reported in its entry and
// its checklist is not attempted; the remaining plans still run.
func CreateTaskPlans(ctx context.Context, w TaskPlanWriter, plans []models.TaskPlan, log logger.Logger) []TaskPlanResult {
	results := make([]TaskPlanResult, 0, len(plans))
	for _, plan := range plans {
		res := TaskPlanResult{
			TaskCode:    plan.TaskCode,
			Description: plan.Description,
			Checklists:  []ChecklistResult{},
		}

		resp, err := w.CreateTaskPlan(ctx, plan)
		if err != nil {
			res.Error = eam.Describe(err)
			log.Warn("task plan not created", map[string]interface{}{
				"taskCode": plan.TaskCode,
				"error":    res.Error,
			})
			results = append(results, res)
			continue
		}
		res.APIResponse = resp

		for i, item := range plan.Checklist {
			cl := ChecklistResult{ChecklistID: item.ChecklistID, Description: item.Description}
			cl.APIResponse, err = w.CreateChecklist(ctx, plan.TaskCode, item, (i+1)*10)
			if err != nil {
				cl.Error = eam.Describe(err)
				log.Warn("checklist item not created", map[string]interface{}{
					"taskCode":    plan.TaskCode,
					"checklistId": item.ChecklistID,
					"error":       cl.Error,
				})
			}
			res.Checklists = append(res.Checklists, cl)
		}
		results = append(results, res)
	}
	return results
}

// CreateSchedule creates the schedule record and then its task plans.
func CreateSchedule(ctx context.Context, w ScheduleWriter, schedule models.MaintenanceSchedule, log logger.Logger) (WriteResult, []TaskPlanResult) {
	var sched WriteResult
	resp, err := w.CreateMaintenanceSchedule(ctx, schedule)
	if err != nil {
		sched.Error = eam.Describe(err)
		log.Warn("maintenance schedule not created", map[string]interface{}{
			"code":  schedule.Code,
			"error": sched.Error,
		})
	} else {
		sched.APIResponse = resp
	}
	return sched, CreateTaskPlans(ctx, w, schedule.TaskPlans, log)
}
