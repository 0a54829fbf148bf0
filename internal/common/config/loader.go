// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envBindings are keys that must resolve from the environment even when
// no config file mentions them.
var envBindings = map[string]string{
	"llm.name":                         "LLM_NAME",
	"llm.temperature":                  "LLM_TEMPERATURE",
	"llm.max_tokens":                   "LLM_MAX_TOKENS",
	"llm.timeout":                      "LLM_TIMEOUT",
	"llm.max_retries":                  "LLM_MAX_RETRIES",
	"llm.api_key":                      "LLM_API_KEY",
	"llm.base_url":                     "LLM_BASE_URL",
	"eam.base_url":                     "EAM_BASE_URL",
	"eam.username":                     "EAM_USERNAME",
	"eam.password":                     "EAM_PASSWORD",
	"eam.tenant":                       "EAM_TENANT",
	"eam.organization":                 "EAM_ORGANIZATION",
	"database.elasticsearch.url":       "ES_URL",
	"database.redis.address":           "REDIS_ADDRESS",
	"database.postgres.host":           "DB_HOST",
	"database.postgres.user":           "DB_USER",
	"database.postgres.password":       "DB_PASSWORD",
	"database.postgres.database":       "DB_NAME",
	"camunda.broker_address":           "ZEEBE_ADDRESS",
	"auth.keycloak.client_secret":      "KEYCLOAK_CLIENT_SECRET",
	"integrations.aws.region":          "AWS_REGION",
	"observability.jaeger_endpoint":    "JAEGER_ENDPOINT",
	"integrations.aws.sns.topic_arn":   "SNS_TOPIC_ARN",
	"integrations.aws.ses.from_email":  "SES_FROM_EMAIL",
	"database.elasticsearch.index":     "ES_INDEX",
	"database.elasticsearch.username":  "ES_USERNAME",
	"database.elasticsearch.password":  "ES_PASSWORD",
	"documents.temp_dir":               "DOCUMENTS_TEMP_DIR",
	"server.address":                   "SERVER_ADDRESS",
	"logging.level":                    "LOG_LEVEL",
}

// Load reads configs/config.yaml, the environment overlay and .env.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // overlay is optional

	return build(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return build(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	return v
}

func build(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "eam-assistant"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8000"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 300000
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = 32
	}
	if cfg.Server.AllowedOrigins == "" {
		cfg.Server.AllowedOrigins = "*"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 5
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 300000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	es := &cfg.Database.Elasticsearch
	if es.URL == "" && len(es.Addresses) > 0 {
		es.URL = es.Addresses[0]
	}
	if len(es.Addresses) == 0 && es.URL != "" {
		es.Addresses = []string{es.URL}
	}
	if es.Index == "" {
		es.Index = "assets_index"
	}
	if es.DescriptionField == "" {
		es.DescriptionField = "ASSETID.DESCRIPTION"
	}
	if es.SearchSize == 0 {
		es.SearchSize = 100
	}

	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.1
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 60
	}
	if cfg.LLM.MaxRetries == 0 {
		cfg.LLM.MaxRetries = 5
	}

	eam := &cfg.EAM
	if eam.OrganizationCode == "" {
		eam.OrganizationCode = "LAMETRO"
	}
	if eam.SafetyOrganization == "" {
		eam.SafetyOrganization = "*"
	}
	if eam.MaterialListCode == "" {
		eam.MaterialListCode = "MHVAC-01"
	}
	if eam.TaskWorkOrderType == "" {
		eam.TaskWorkOrderType = "PMC"
	}
	if eam.PMWorkOrderType == "" {
		eam.PMWorkOrderType = "PM"
	}
	if eam.TimeZone == "" {
		eam.TimeZone = "-0500"
	}
	if eam.MaxRevisionRetries == 0 {
		eam.MaxRevisionRetries = 5
	}
	if len(eam.ConflictMarkers) == 0 {
		eam.ConflictMarkers = []string{"already exists", "record already exists"}
	}
	if eam.Timeout == 0 {
		eam.Timeout = 30000
	}
	if eam.LOVCacheTTL == 0 {
		eam.LOVCacheTTL = 3600
	}

	if cfg.Documents.TempDir == "" {
		cfg.Documents.TempDir = filepath.Join(os.TempDir(), "eam-assistant")
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Workers == nil {
		cfg.Workers = map[string]WorkerConfig{}
	}
	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = cfg.Camunda.MaxJobsActive
		}
		if worker.Timeout == 0 {
			worker.Timeout = cfg.Camunda.Timeout
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Database.Elasticsearch.GetURL() == "" {
		return fmt.Errorf("database.elasticsearch.addresses or url is required")
	}

	if cfg.EAM.BaseURL == "" {
		return fmt.Errorf("eam.base_url is required")
	}

	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}

	if cfg.Auth.Keycloak.Enabled && (cfg.Auth.Keycloak.URL == "" || cfg.Auth.Keycloak.Realm == "") {
		return fmt.Errorf("auth.keycloak.url and realm are required when keycloak is enabled")
	}

	if cfg.EAM.MaxRevisionRetries < 1 {
		return fmt.Errorf("eam.max_revision_retries must be at least 1")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: cfg.Camunda.MaxJobsActive,
		Timeout:       cfg.Camunda.Timeout,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
