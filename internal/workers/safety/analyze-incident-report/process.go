// internal/workers/safety/analyze-incident-report/process.go
package analyzeincidentreport

import (
	"context"
	"fmt"
	"strings"

	"eam-assistant/internal/audit"
	"eam-assistant/internal/common/observability"
	"eam-assistant/internal/eam"
	"eam-assistant/internal/models"
)

// created remembers the EAM code and revision of each LLM code written in
// this report.
type created struct {
	code     string
	revision int
}

// process writes the hazards, their precautions and then the equipment links.
func (h *Handler) process(ctx context.Context, analysis *models.IncidentAnalysis) *ProcessingSummary {
	requestID := observability.RequestID(ctx)
	hazards := map[string]created{}
	precautions := map[string]created{}
	attemptedHazards := map[string]bool{}
	attemptedPrecautions := map[string]bool{}
	var results []*eam.CreateResult

	summary := &ProcessingSummary{
		HazardPrecautionCreationLog:      make([]HazardLogEntry, 0, len(analysis.IdentifiedHazards)),
		EquipmentSafetyLinkProcessingLog: make([]LinkLogEntry, 0, len(analysis.EquipmentSafetyLinks)),
	}

	for _, hazard := range analysis.IdentifiedHazards {
		entry := HazardLogEntry{
			ProcessedHazardCodeLLM:       hazard.HazardCode,
			HazardResponses:              []*eam.CreateResult{},
			PrecautionResponsesForHazard: []*eam.CreateResult{},
		}

		if !attemptedHazards[hazard.HazardCode] {
			attemptedHazards[hazard.HazardCode] = true
			res := h.eam.CreateHazard(ctx, hazard)
			entry.HazardResponses = append(entry.HazardResponses, res)
			results = append(results, res)
			if res.OK() {
				hazards[hazard.HazardCode] = created{code: res.EAMCode, revision: res.RevisionUsed}
			}
		}

		for _, precaution := range hazard.Precautions {
			if attemptedPrecautions[precaution.PrecautionCode] {
				continue
			}
			attemptedPrecautions[precaution.PrecautionCode] = true
			res := h.eam.CreatePrecaution(ctx, precaution)
			entry.PrecautionResponsesForHazard = append(entry.PrecautionResponsesForHazard, res)
			results = append(results, res)
			if res.OK() {
				precautions[precaution.PrecautionCode] = created{code: res.EAMCode, revision: res.RevisionUsed}
			}
		}

		summary.HazardPrecautionCreationLog = append(summary.HazardPrecautionCreationLog, entry)
	}

	for _, link := range analysis.EquipmentSafetyLinks {
		summary.EquipmentSafetyLinkProcessingLog = append(summary.EquipmentSafetyLinkProcessingLog,
			h.processLink(ctx, analysis, link, hazards, precautions))
	}

	for _, res := range results {
		if err := h.audit.RecordEAMWrite(ctx, audit.FromCreateResult(requestID, res)); err != nil {
			h.logger.Warn("EAM write audit insert failed", map[string]interface{}{"error": err.Error()})
		}
	}
	summary.FailureEventsPublished = h.notifier.PublishWriteFailures(ctx, requestID, results)

	if err := h.notifier.SendSummary(ctx, "Incident report processed in EAM", summaryText(requestID, results, summary)); err != nil {
		h.logger.Warn("incident summary email failed", map[string]interface{}{"error": err.Error()})
	}
	return summary
}

func (h *Handler) processLink(ctx context.Context, analysis *models.IncidentAnalysis, link models.EquipmentSafetyLink, hazards, precautions map[string]created) LinkLogEntry {
	entry := LinkLogEntry{
		EquipmentDetails:        link.EquipmentDetails,
		LinkedPrecautionCodeLLM: link.LinkedPrecaution.PrecautionCode,
		ParentHazardCodeLLM:     link.ParentHazardCode,
	}

	hz, hazardOK := hazards[link.ParentHazardCode]
	pc, precautionOK := precautions[link.LinkedPrecaution.PrecautionCode]
	if hazardOK {
		entry.EAMHazardCodeRef = &hz.code
	}
	if precautionOK {
		entry.EAMPrecautionCodeRef = &pc.code
	}

	var typeCode, hazardDescription string
	if parent, ok := analysis.Hazard(link.ParentHazardCode); ok {
		typeCode = parent.HazardType.EAMCode()
		hazardDescription = parent.Description
	}

	if !hazardOK || !precautionOK || typeCode == "" {
		entry.Status = LinkSkipped
		entry.Response = skippedResponse{
			Error: "Missing mapped EAM codes or hazard type for this link.",
			Details: skippedDetails{
				HazardCodeFound:     hazardOK,
				PrecautionCodeFound: precautionOK,
				HazardTypeCodeFound: typeCode != "",
			},
		}
		return entry
	}

	entry.Status = LinkAttempted
	resp, err := h.eam.CreateSafetyLink(ctx, eam.SafetyLink{
		HazardCode:            hz.code,
		HazardRevision:        hz.revision,
		HazardTypeCode:        typeCode,
		HazardDescription:     hazardDescription,
		PrecautionCode:        pc.code,
		PrecautionRevision:    pc.revision,
		PrecautionDescription: link.LinkedPrecaution.Description,
		Equipment:             link.EquipmentDetails,
	})
	if err != nil {
		entry.Response = map[string]interface{}{"error": eam.Describe(err)}
		h.logger.Warn("safety link not created", map[string]interface{}{
			"hazard":     hz.code,
			"precaution": pc.code,
			"equipment":  link.EquipmentDetails.EquipmentID,
			"error":      eam.Describe(err),
		})
		return entry
	}
	entry.Response = resp
	return entry
}

func summaryText(requestID string, results []*eam.CreateResult, summary *ProcessingSummary) string {
	counts := map[eam.AttemptStatus]int{}
	for _, r := range results {
		counts[r.Status]++
	}
	attempted := 0
	for _, l := range summary.EquipmentSafetyLinkProcessingLog {
		if l.Status == LinkAttempted {
			attempted++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Request: %s\n", requestID)
	fmt.Fprintf(&b, "Hazard and precaution writes: %d created, %d conflicts, %d failed\n",
		counts[eam.StatusCreated], counts[eam.StatusConflict], counts[eam.StatusFailed])
	fmt.Fprintf(&b, "Equipment safety links: %d attempted, %d skipped\n",
		attempted, len(summary.EquipmentSafetyLinkProcessingLog)-attempted)
	for _, r := range results {
		if !r.OK() {
			fmt.Fprintf(&b, "- %s %s: %s\n", r.Entity, r.Code, r.Error)
		}
	}
	return b.String()
}
