// internal/eam/payloads.go
package eam

import (
	"fmt"
	"time"

	"eam-assistant/internal/models"
)

type payload = map[string]interface{}

var timingCodes = map[models.PrecautionTiming]string{
	models.TimingAllTime:  "ALL",
	models.TimingDuring:   "DUR",
	models.TimingPostWork: "POST",
	models.TimingPreWork:  "PRE",
}

func organization(code string) payload {
	return payload{"ORGANIZATIONCODE": code, "DESCRIPTION": nil}
}

func typeCode(code string) payload {
	return payload{"TYPECODE": code, "DESCRIPTION": nil}
}

func activeStatus() payload {
	return payload{"STATUSCODE": "A", "DESCRIPTION": nil}
}

func userDefined(code string) payload {
	return payload{"ENTITY": nil, "USERDEFINEDCODE": code, "DESCRIPTION": nil}
}

// dateRequested encodes today in the EAM date layout: YEAR carries the epoch
// milliseconds of January 1st and MONTH is zero based.
func (c *Client) dateRequested() payload {
	now := c.now()
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())

	return payload{
		"YEAR":      yearStart.UnixMilli(),
		"MONTH":     int(now.Month()) - 1,
		"DAY":       now.Day(),
		"HOUR":      0,
		"MINUTE":    0,
		"SECOND":    0,
		"SUBSECOND": 0,
		"TIMEZONE":  c.cfg.TimeZone,
		"qualifier": "OTHER",
	}
}

func (c *Client) taskPlanPayload(plan models.TaskPlan) payload {
	return payload{
		"TASKLISTID": payload{
			"TASKCODE":       plan.TaskCode,
			"TASKREVISION":   0,
			"ORGANIZATIONID": organization(c.cfg.OrganizationCode),
			"DESCRIPTION":    plan.Description,
		},
		"STATUS": activeStatus(),
		"REVISIONCONTROL": payload{
			"REVISIONCONTROLID": payload{
				"ENTITY": nil,
				"RCENTITYCODEID": payload{
					"RCENTITYCODE":   plan.TaskCode,
					"REVISION":       0,
					"ORGANIZATIONID": nil,
					"DESCRIPTION":    nil,
				},
			},
			"REQUESTBY":     payload{"USERCODE": c.cfg.Username, "DESCRIPTION": nil},
			"DATEREQUESTED": c.dateRequested(),
		},
		"OUTOFSERVICE":                 "false",
		"ACTIVECHECKLIST":              "true",
		"ISOLATIONMETHOD":              "false",
		"CHECKLISTPERFORMEDBYREQUIRED": "false",
		"CHECKLISTREVIEWEDBYREQUIRED":  "false",
		"WODESCRIPTION":                plan.Description,
		"WOTYPE":                       typeCode(c.cfg.TaskWorkOrderType),
		"MATERIALLISTID": payload{
			"MTLCODE":        c.cfg.MaterialListCode,
			"MTLREVISION":    nil,
			"ORGANIZATIONID": nil,
			"DESCRIPTION":    nil,
		},
		"MULTIPLETRADES":              "false",
		"ENABLEENHANCEDPLANNING":      "true",
		"CASEMANAGEMENTCHECKLIST":     "false",
		"DEFAULTTAG":                  "false",
		"NONCONFORMITYCHECKLIST":      "false",
		"DISCONNECTEDCHKLIST":         "false",
		"PREVENTPERFORMEDBYSIGNATURE": "false",
		"PREVENTREVIEWEDBYSIGNATURE":  "false",
	}
}

func (c *Client) checklistPayload(taskCode string, item models.ChecklistItem, sequence int) payload {
	return payload{
		"TASKLISTID": payload{
			"TASKCODE":       taskCode,
			"TASKREVISION":   0,
			"ORGANIZATIONID": organization(c.cfg.OrganizationCode),
			"DESCRIPTION":    fmt.Sprintf("Task plan for %s", taskCode),
		},
		"CHECKLISTID": payload{
			"CHECKLISTCODE": nil,
			"DESCRIPTION":   item.Description,
		},
		"SEQUENCE":           sequence,
		"TYPE":               payload{"TYPECODE": "01", "DESCRIPTION": nil, "entity": nil},
		"REQUIREDTOCLOSEDOC": userDefined("NO"),
		"EQUIPMENTLEVEL":     userDefined("HDR"),
	}
}

func (c *Client) schedulePayload(schedule models.MaintenanceSchedule) payload {
	return payload{
		"PPMID": payload{
			"PPMCODE":        schedule.Code,
			"PPMREVISION":    0,
			"ORGANIZATIONID": organization(c.cfg.OrganizationCode),
			"DESCRIPTION":    schedule.Description,
		},
		"PMSCHEDULETYPE": "F",
		"WORKORDERTYPE":  typeCode(c.cfg.PMWorkOrderType),
		"REVISIONSTATUS": activeStatus(),
		"PMDURATION":     schedule.Duration,
	}
}

func (c *Client) hazardPayload(h models.Hazard, revision int) payload {
	return payload{
		"HAZARDID": payload{
			"HAZARDCODE":     h.HazardCode,
			"HAZARDREVISION": revision,
			"ORGANIZATIONID": organization(c.cfg.SafetyOrganization),
			"DESCRIPTION":    truncate(h.Description, 80),
		},
		"HAZARDTYPE":     typeCode(h.HazardType.EAMCode()),
		"STATUS":         activeStatus(),
		"REVISIONSTATUS": activeStatus(),
		"HAZARDNOTE":     h.Description,
	}
}

func (c *Client) precautionPayload(p models.Precaution, revision int) payload {
	out := payload{
		"PRECAUTIONID": payload{
			"PRECAUTIONCODE":     p.PrecautionCode,
			"PRECAUTIONREVISION": revision,
			"ORGANIZATIONID":     organization(c.cfg.SafetyOrganization),
			"DESCRIPTION":        truncate(p.Description, 80),
		},
		"STATUS":         activeStatus(),
		"REVISIONSTATUS": activeStatus(),
		"PRECAUTIONNOTE": p.Description,
		"TIMING":         nil,
	}
	if p.Timing != nil {
		if code, ok := timingCodes[*p.Timing]; ok {
			out["TIMING"] = userDefined(code)
		}
	}
	return out
}

func (c *Client) safetyLinkPayload(link SafetyLink) payload {
	var class, category interface{}
	if link.Equipment.ClassCode != nil && *link.Equipment.ClassCode != "" {
		class = payload{"CLASSCODE": *link.Equipment.ClassCode, "ORGANIZATIONID": organization(c.cfg.SafetyOrganization)}
	}
	if link.Equipment.Category != nil && *link.Equipment.Category != "" {
		category = payload{"CATEGORYCODE": *link.Equipment.Category, "DESCRIPTION": nil}
	}

	return payload{
		"HAZARDID": payload{
			"HAZARDCODE":     link.HazardCode,
			"HAZARDREVISION": link.HazardRevision,
			"ORGANIZATIONID": organization(c.cfg.SafetyOrganization),
			"DESCRIPTION":    truncate(link.HazardDescription, 80),
		},
		"HAZARDTYPE": typeCode(link.HazardTypeCode),
		"PRECAUTIONID": payload{
			"PRECAUTIONCODE":     link.PrecautionCode,
			"PRECAUTIONREVISION": link.PrecautionRevision,
			"ORGANIZATIONID":     organization(c.cfg.SafetyOrganization),
			"DESCRIPTION":        truncate(link.PrecautionDescription, 80),
		},
		"CLASSID":       class,
		"CATEGORYID":    category,
		"EQUIPMENTDESC": link.Equipment.EquipmentID,
		"ENTITY":        "OBJ",
	}
}

func (c *Client) qualificationPayload(q models.Qualification) payload {
	return payload{
		"QUALIFICATIONID": payload{
			"QUALIFICATIONCODE": q.QualificationCode,
			"ORGANIZATIONID":    organization(c.cfg.OrganizationCode),
			"DESCRIPTION":       q.QualificationDescription,
		},
		"ACTIVE": "true",
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
