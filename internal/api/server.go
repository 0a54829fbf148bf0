// internal/api/server.go
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eam-assistant/internal/common/auth"
	"eam-assistant/internal/common/config"
	"eam-assistant/internal/common/logger"
	"eam-assistant/internal/common/observability"
	predictattribute "eam-assistant/internal/workers/equipment/predict-attribute"
	predictattributesbulk "eam-assistant/internal/workers/equipment/predict-attributes-bulk"
	extractmaintenanceschedule "eam-assistant/internal/workers/maintenance/extract-maintenance-schedule"
	extracttaskplans "eam-assistant/internal/workers/maintenance/extract-task-plans"
	analyzeincidentreport "eam-assistant/internal/workers/safety/analyze-incident-report"
	extractqualifications "eam-assistant/internal/workers/training/extract-qualifications"
)

// Handlers are the worker handlers the routes delegate to. The same handlers
// serve Zeebe jobs.
type Handlers struct {
	PredictAttribute    *predictattribute.Handler
	PredictBulk         *predictattributesbulk.Handler
	MaintenanceSchedule *extractmaintenanceschedule.Handler
	TaskPlans           *extracttaskplans.Handler
	Qualifications      *extractqualifications.Handler
	IncidentReport      *analyzeincidentreport.Handler
}

// Check is one dependency probed by /ready.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

type Options struct {
	Server config.ServerConfig
	// Auth is nil when bearer tokens are not required.
	Auth          auth.TokenValidator
	Checks        []Check
	Gatherer      prometheus.Gatherer
	Observability *observability.Observability
}

type Server struct {
	router   *gin.Engine
	http     *http.Server
	handlers Handlers
	opts     Options
	logger   logger.Logger
}

func NewServer(opts Options, handlers Handlers, log logger.Logger) *Server {
	router := gin.New()
	router.MaxMultipartMemory = opts.Server.MaxUploadMB << 20

	s := &Server{
		router:   router,
		handlers: handlers,
		opts:     opts,
		logger:   log.WithFields(map[string]interface{}{"component": "api"}),
	}

	router.Use(gin.Recovery(), requestID(), s.accessLog(), cors(opts.Server.AllowedOrigins))

	router.GET("/health", s.handleHealth)
	router.GET("/ready", s.handleReady)
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	if opts.Auth != nil {
		api.Use(requireToken(opts.Auth))
	}
	{
		api.GET("/equipment/generate/:asset_name/", s.handlePredictAttribute)
		api.OPTIONS("/equipment/generate/:asset_name/", preflight)
		api.POST("/equipment/generate/", s.handlePredictAttributeJSON)
		api.OPTIONS("/equipment/generate/", preflight)
		api.POST("/equipment/generate-bulk/", s.handlePredictBulk)
		api.OPTIONS("/equipment/generate-bulk/", preflight)

		api.POST("/maintenance/process-document/", s.handleMaintenanceDocument)
		api.POST("/service-manuals/process-document/", s.handleServiceManual)
		api.POST("/training-manuals/process-training-manual/", s.handleTrainingManual)
		api.POST("/safety/process-incident-report/", s.handleIncidentReport)
	}

	s.http = &http.Server{
		Addr:         opts.Server.Address,
		Handler:      router,
		ReadTimeout:  config.GetDuration(opts.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(opts.Server.WriteTimeout),
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("HTTP server listening", map[string]interface{}{"address": s.http.Addr})
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleReady(c *gin.Context) {
	status := http.StatusOK
	results := make(map[string]string, len(s.opts.Checks))
	for _, check := range s.opts.Checks {
		if err := check.Ping(c.Request.Context()); err != nil {
			results[check.Name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[check.Name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not ready"
	}
	c.JSON(status, gin.H{"status": state, "checks": results})
}
