// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Server        ServerConfig            `mapstructure:"server"`
	Figma         FigmaConfig             `mapstructure:"figma"`
	Atlassian     AtlassianConfig         `mapstructure:"atlassian"`
	LLM           LLMConfig               `mapstructure:"llm"`
	Workflow      WorkflowConfig          `mapstructure:"workflow"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
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
	Address         string `mapstructure:"address"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// --- External APIs ---

type FigmaConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	ImageFormat string  `mapstructure:"image_format"`
	ImageScale  float64 `mapstructure:"image_scale"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
}

// AtlassianConfig covers both Jira and Confluence. Credentials arrive per request.
type AtlassianConfig struct {
	ParentIssueType  string `mapstructure:"parent_issue_type"`
	SubtaskIssueType string `mapstructure:"subtask_issue_type"`
	AutoAssign       bool   `mapstructure:"auto_assign"`
	Timeout          int    `mapstructure:"timeout"` // milliseconds
}

type LLMConfig struct {
	Provider    string  `mapstructure:"provider"` // openai | anthropic
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
}

// WorkflowConfig bounds each stage of a generation run.
type WorkflowConfig struct {
	StageTimeout int `mapstructure:"stage_timeout"` // milliseconds
	AITimeout    int `mapstructure:"ai_timeout"`    // milliseconds
	EventBuffer  int `mapstructure:"event_buffer"`
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig configures the optional progress-event stream.
type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	StreamTTL int    `mapstructure:"stream_ttl"` // milliseconds
	MaxLen    int64  `mapstructure:"max_len"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
}

// NotificationConfig controls the completion notifiers.
type NotificationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
	SES struct {
		Enabled    bool     `mapstructure:"enabled"`
		FromEmail  string   `mapstructure:"from_email"`
		Recipients []string `mapstructure:"recipients"`
	} `mapstructure:"ses"`
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
