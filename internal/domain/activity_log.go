package domain

import "time"

// LogLevel is the severity of an activity log entry or message
type LogLevel string

const (
	LogLevelInfo  LogLevel = "info"
	LogLevelError LogLevel = "error"
)

// ActionAuth is the only action recorded by the credential endpoints
const ActionAuth = "auth"

// ActivityLogEntry is the audit trail of one authentication attempt
type ActivityLogEntry struct {
	ID                string               `json:"id"`
	Level             LogLevel             `json:"level"`
	Success           bool                 `json:"success"`
	Action            string               `json:"action"`
	Start             time.Time            `json:"start"`
	End               time.Time            `json:"end"`
	Timestamp         time.Time            `json:"timestamp"`
	ConnectionID      string               `json:"connection_id"`
	ProviderConfigKey string               `json:"provider_config_key"`
	Provider          string               `json:"provider,omitempty"`
	EnvironmentID     string               `json:"environment_id"`
	Messages          []ActivityLogMessage `json:"messages,omitempty"`
}

// ActivityLogMessage is a single line appended to an entry
type ActivityLogMessage struct {
	Level     LogLevel  `json:"level"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// AttemptMeta identifies the attempt an activity log is opened for
type AttemptMeta struct {
	ConnectionID      string
	ProviderConfigKey string
	EnvironmentID     string
}
