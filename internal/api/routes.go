// internal/api/routes.go
package api

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	apperrors "eam-assistant/internal/common/errors"
	"eam-assistant/internal/documents"
	predictattribute "eam-assistant/internal/workers/equipment/predict-attribute"
	predictattributesbulk "eam-assistant/internal/workers/equipment/predict-attributes-bulk"
	extractmaintenanceschedule "eam-assistant/internal/workers/maintenance/extract-maintenance-schedule"
	extracttaskplans "eam-assistant/internal/workers/maintenance/extract-task-plans"
	analyzeincidentreport "eam-assistant/internal/workers/safety/analyze-incident-report"
	extractqualifications "eam-assistant/internal/workers/training/extract-qualifications"
)

func notConfigured(c *gin.Context, what string) {
	abortWithError(c, apperrors.NewConfigurationMissingError(what+" is not configured"))
}

func (s *Server) handlePredictAttribute(c *gin.Context) {
	if s.handlers.PredictAttribute == nil {
		notConfigured(c, "attribute prediction")
		return
	}
	out, err := s.handlers.PredictAttribute.Execute(c.Request.Context(), &predictattribute.Input{
		AssetDescription: c.Param("asset_name"),
		Attribute:        c.Query("attribute"),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handlePredictAttributeJSON(c *gin.Context) {
	if s.handlers.PredictAttribute == nil {
		notConfigured(c, "attribute prediction")
		return
	}
	var input predictattribute.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid JSON body: "+err.Error())
		return
	}
	out, err := s.handlers.PredictAttribute.Execute(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handlePredictBulk(c *gin.Context) {
	if s.handlers.PredictBulk == nil {
		notConfigured(c, "attribute prediction")
		return
	}
	var input predictattributesbulk.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid JSON body: "+err.Error())
		return
	}
	out, err := s.handlers.PredictBulk.Execute(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleMaintenanceDocument(c *gin.Context) {
	if s.handlers.MaintenanceSchedule == nil {
		notConfigured(c, "maintenance assistant")
		return
	}
	upload, closeUpload, err := openUpload(c, "document")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if upload == nil {
		badRequest(c, "No document provided")
		return
	}
	defer closeUpload()
	if !documents.IsPDF(upload.Name) {
		badRequest(c, extractmaintenanceschedule.ErrOnlyPDF.Error())
		return
	}

	out, err := s.handlers.MaintenanceSchedule.Execute(c.Request.Context(), &extractmaintenanceschedule.Input{
		CreateInEAM: truthy(c.PostForm("create_in_eam")),
		Upload:      upload,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleServiceManual(c *gin.Context) {
	if s.handlers.TaskPlans == nil {
		notConfigured(c, "service manual assistant")
		return
	}
	fields, err := readFields(c, "document_code", "create_in_eam")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if fields["document_code"] == "" {
		badRequest(c, extracttaskplans.ErrMissingDocumentCode.Error())
		return
	}

	out, err := s.handlers.TaskPlans.Execute(c.Request.Context(), &extracttaskplans.Input{
		DocumentCode: fields["document_code"],
		CreateInEAM:  truthy(fields["create_in_eam"]),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleTrainingManual(c *gin.Context) {
	if s.handlers.Qualifications == nil {
		notConfigured(c, "training manual assistant")
		return
	}
	fields, err := readFields(c, "document_code", "create_qualifications_in_eam")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	upload, closeUpload, err := openUpload(c, "training_manual_file")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	defer closeUpload()
	if fields["document_code"] == "" && upload == nil {
		badRequest(c, extractqualifications.ErrNoDocument.Error())
		return
	}

	out, err := s.handlers.Qualifications.Execute(c.Request.Context(), &extractqualifications.Input{
		DocumentCode:              fields["document_code"],
		CreateQualificationsInEAM: truthy(fields["create_qualifications_in_eam"]),
		Upload:                    upload,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleIncidentReport(c *gin.Context) {
	if s.handlers.IncidentReport == nil {
		notConfigured(c, "safety procedure assistant")
		return
	}
	fields, err := readFields(c, "document_code", "create_in_eam")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	upload, closeUpload, err := openUpload(c, "incident_report_file")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	defer closeUpload()
	if fields["document_code"] == "" && upload == nil {
		badRequest(c, analyzeincidentreport.ErrNoDocument.Error())
		return
	}

	out, err := s.handlers.IncidentReport.Execute(c.Request.Context(), &analyzeincidentreport.Input{
		DocumentCode: fields["document_code"],
		CreateInEAM:  truthy(fields["create_in_eam"]),
		Upload:       upload,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// readFields returns the named fields from a JSON body or a form. Missing
// fields are empty strings.
func readFields(c *gin.Context, names ...string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	if c.ContentType() == binding.MIMEJSON {
		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			return nil, fmt.Errorf("Invalid JSON body: %w", err)
		}
		for _, name := range names {
			if v, ok := body[name]; ok && v != nil {
				out[name] = strings.TrimSpace(fmt.Sprint(v))
			}
		}
		return out, nil
	}
	for _, name := range names {
		out[name] = strings.TrimSpace(c.PostForm(name))
	}
	return out, nil
}

// openUpload returns the multipart file in field, or nil when the request
// carries none. The returned func closes the file.
func openUpload(c *gin.Context, field string) (*documents.Upload, func(), error) {
	noop := func() {}
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, fmt.Errorf("Invalid upload: %w", err)
	}
	file, err := header.Open()
	if err != nil {
		return nil, noop, fmt.Errorf("Invalid upload: %w", err)
	}
	return &documents.Upload{Name: header.Filename, Body: file}, closer(file), nil
}

func closer(f multipart.File) func() {
	return func() { _ = f.Close() }
}

func truthy(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "true")
}
