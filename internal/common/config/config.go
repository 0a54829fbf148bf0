// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Server        ServerConfig            `mapstructure:"server"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	LLM           LLMConfig               `mapstructure:"llm"`
	EAM           EAMConfig               `mapstructure:"eam"`
	Documents     DocumentsConfig         `mapstructure:"documents"`
	Safety        SafetyConfig            `mapstructure:"safety"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Auth          AuthConfig              `mapstructure:"auth"`
	Integrations  IntegrationConfig       `mapstructure:"integrations"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
	Logging       LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address        string `mapstructure:"address"`
	ReadTimeout    int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout   int    `mapstructure:"write_timeout"` // milliseconds
	MaxUploadMB    int64  `mapstructure:"max_upload_mb"`
	AllowedOrigins string `mapstructure:"allowed_origins"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// Enabled reports whether an audit database was configured.
func (p PostgresConfig) Enabled() bool {
	return p.Host != "" && p.Database != ""
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses        []string `mapstructure:"addresses"`
	Username         string   `mapstructure:"username"`
	Password         string   `mapstructure:"password"`
	URL              string   `mapstructure:"url"` // Single URL for backwards compatibility
	Index            string   `mapstructure:"index"`
	DescriptionField string   `mapstructure:"description_field"`
	SearchSize       int      `mapstructure:"search_size"`
	HistoryCacheTTL  int      `mapstructure:"history_cache_ttl"` // seconds, 0 disables
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled reports whether a cache was configured.
func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

// LLMConfig mirrors the LLM_* environment contract.
type LLMConfig struct {
	Name        string  `mapstructure:"name"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Timeout     int     `mapstructure:"timeout"` // seconds
	MaxRetries  int     `mapstructure:"max_retries"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
}

// EAMConfig holds the EAM REST connection and payload defaults.
type EAMConfig struct {
	BaseURL            string   `mapstructure:"base_url"`
	Username           string   `mapstructure:"username"`
	Password           string   `mapstructure:"password"`
	Tenant             string   `mapstructure:"tenant"`
	Organization       string   `mapstructure:"organization"`
	OrganizationCode   string   `mapstructure:"organization_code"`
	SafetyOrganization string   `mapstructure:"safety_organization"`
	MaterialListCode   string   `mapstructure:"material_list_code"`
	TaskWorkOrderType  string   `mapstructure:"task_work_order_type"`
	PMWorkOrderType    string   `mapstructure:"pm_work_order_type"`
	TimeZone           string   `mapstructure:"time_zone"`
	MaxRevisionRetries int      `mapstructure:"max_revision_retries"`
	ConflictMarkers    []string `mapstructure:"conflict_markers"`
	Timeout            int      `mapstructure:"timeout"` // milliseconds
	LOVBaseURL         string   `mapstructure:"lov_base_url"`
	EAMID              string   `mapstructure:"eamid"`
	LOVCacheTTL        int      `mapstructure:"lov_cache_ttl"` // seconds
}

type DocumentsConfig struct {
	TempDir string `mapstructure:"temp_dir"`
}

// SafetyConfig holds static option lists for the incident analysis prompt.
type SafetyConfig struct {
	EquipmentCategories []string `mapstructure:"equipment_categories"`
	EquipmentClasses    []string `mapstructure:"equipment_classes"`
	ClassOrganization   string   `mapstructure:"class_organization"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// AuthConfig holds settings for API authentication.
type AuthConfig struct {
	Keycloak struct {
		Enabled      bool   `mapstructure:"enabled"`
		URL          string `mapstructure:"url"`
		Realm        string `mapstructure:"realm"`
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
	} `mapstructure:"keycloak"`
}

// IntegrationConfig holds settings for outbound notification services.
type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool     `mapstructure:"enabled"`
			FromEmail string   `mapstructure:"from_email"`
			ToEmails  []string `mapstructure:"to_emails"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled  bool   `mapstructure:"enabled"`
			TopicARN string `mapstructure:"topic_arn"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`
}

type ObservabilityConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// LLMTimeout returns the configured LLM timeout as a duration.
func (l LLMConfig) LLMTimeout() time.Duration {
	return time.Duration(l.Timeout) * time.Second
}
