package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Processor ProcessorConfig `yaml:"processor"`
	Push      PushConfig      `yaml:"push"`
	Email     EmailConfig     `yaml:"email"`
	Log       LogConfig       `yaml:"log"`
	Payments  PaymentsConfig  `yaml:"payments"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Jobs      JobsConfig      `yaml:"jobs"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// ProcessorConfig contains payment processor API settings
type ProcessorConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// PushConfig contains Firebase Cloud Messaging settings
type PushConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	ProjectID       string `yaml:"project_id"`
}

// EmailConfig contains SendGrid settings for operator escalations
type EmailConfig struct {
	APIKey        string `yaml:"api_key"`
	FromEmail     string `yaml:"from_email"`
	FromName      string `yaml:"from_name"`
	OperatorEmail string `yaml:"operator_email"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// RefundConfig contains the time-windowed cancellation policy
type RefundConfig struct {
	FullRefundHours int     `yaml:"full_refund_hours"`
	LateWindowHours int     `yaml:"late_window_hours"`
	LateFeePercent  float64 `yaml:"late_fee_percent"`
	MinLateFeeCents int64   `yaml:"min_late_fee_cents"`
}

// PaymentsConfig contains money-movement rules. Commission rates are
// configuration, never derived.
type PaymentsConfig struct {
	Currency                string       `yaml:"currency"`
	BookingCommissionRate   float64      `yaml:"booking_commission_rate"`
	MissionCommissionRate   float64      `yaml:"mission_commission_rate"`
	TransportFeePerKmCents  int64        `yaml:"transport_fee_per_km_cents"`
	ConfirmationWindowHours int          `yaml:"confirmation_window_hours"`
	CaptureGraceHours       int          `yaml:"capture_grace_hours"`
	NoShowWithholdPercent   float64      `yaml:"no_show_withhold_percent"`
	StartTimeoutHours       int          `yaml:"start_timeout_hours"`
	EndTimeoutHours         int          `yaml:"end_timeout_hours"`
	MaxTransferRetries      int32        `yaml:"max_transfer_retries"`
	Refund                  RefundConfig `yaml:"refund"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	AutoCaptureBookings       string `yaml:"auto_capture_bookings"`
	AutoDeclineExpired        string `yaml:"auto_decline_expired"`
	TransferCompletedBookings string `yaml:"transfer_completed_bookings"`
	CaptureMissionPayments    string `yaml:"capture_mission_payments"`
	ResolveMissionTimeouts    string `yaml:"resolve_mission_timeouts"`
	RetryFailedTransfers      string `yaml:"retry_failed_transfers"`
}

// JobsConfig contains batch and lock settings for job runs
type JobsConfig struct {
	BatchLimit     int    `yaml:"batch_limit"`
	LockTTLMinutes int    `yaml:"lock_ttl_minutes"`
	InstanceID     string `yaml:"instance_id"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Processor
	if val := os.Getenv("PROCESSOR_BASE_URL"); val != "" {
		c.Processor.BaseURL = val
	}
	if val := os.Getenv("PROCESSOR_API_KEY"); val != "" {
		c.Processor.APIKey = val
	}

	// Push
	if val := os.Getenv("FCM_CREDENTIALS_FILE"); val != "" {
		c.Push.CredentialsFile = val
	}
	if val := os.Getenv("FCM_PROJECT_ID"); val != "" {
		c.Push.ProjectID = val
	}

	// Email
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.APIKey = val
	}
	if val := os.Getenv("OPERATOR_EMAIL"); val != "" {
		c.Email.OperatorEmail = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Jobs
	if val := os.Getenv("JOB_INSTANCE_ID"); val != "" {
		c.Jobs.InstanceID = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and applies defaults
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// Processor validation
	if c.Processor.BaseURL == "" {
		return fmt.Errorf("processor base URL is required")
	}
	if c.Processor.APIKey == "" {
		return fmt.Errorf("processor API key is required")
	}

	// Payments defaults
	if c.Payments.Currency == "" {
		c.Payments.Currency = "EUR"
	}
	if c.Payments.BookingCommissionRate == 0 {
		c.Payments.BookingCommissionRate = 0.10
	}
	if c.Payments.MissionCommissionRate == 0 {
		c.Payments.MissionCommissionRate = 0.07
	}
	if c.Payments.TransportFeePerKmCents == 0 {
		c.Payments.TransportFeePerKmCents = 50
	}
	if c.Payments.ConfirmationWindowHours == 0 {
		c.Payments.ConfirmationWindowHours = 24
	}
	if c.Payments.CaptureGraceHours == 0 {
		c.Payments.CaptureGraceHours = 3
	}
	if c.Payments.NoShowWithholdPercent == 0 {
		c.Payments.NoShowWithholdPercent = 0.30
	}
	if c.Payments.StartTimeoutHours == 0 {
		c.Payments.StartTimeoutHours = 48
	}
	if c.Payments.EndTimeoutHours == 0 {
		c.Payments.EndTimeoutHours = 168 // 7 days
	}
	if c.Payments.MaxTransferRetries == 0 {
		c.Payments.MaxTransferRetries = 3
	}
	if c.Payments.Refund.FullRefundHours == 0 {
		c.Payments.Refund.FullRefundHours = 48
	}
	if c.Payments.Refund.LateWindowHours == 0 {
		c.Payments.Refund.LateWindowHours = 24
	}
	if c.Payments.Refund.LateFeePercent == 0 {
		c.Payments.Refund.LateFeePercent = 0.05
	}
	if c.Payments.Refund.MinLateFeeCents == 0 {
		c.Payments.Refund.MinLateFeeCents = 1000
	}
	if c.Payments.BookingCommissionRate < 0 || c.Payments.BookingCommissionRate >= 1 {
		return fmt.Errorf("booking commission rate must be in [0, 1): %f", c.Payments.BookingCommissionRate)
	}
	if c.Payments.MissionCommissionRate < 0 || c.Payments.MissionCommissionRate >= 1 {
		return fmt.Errorf("mission commission rate must be in [0, 1): %f", c.Payments.MissionCommissionRate)
	}

	// Scheduler defaults
	if c.Scheduler.AutoCaptureBookings == "" {
		c.Scheduler.AutoCaptureBookings = "0 */30 * * * *" // every 30 minutes
	}
	if c.Scheduler.AutoDeclineExpired == "" {
		c.Scheduler.AutoDeclineExpired = "0 15 * * * *" // hourly at :15
	}
	if c.Scheduler.TransferCompletedBookings == "" {
		c.Scheduler.TransferCompletedBookings = "0 */30 * * * *"
	}
	if c.Scheduler.CaptureMissionPayments == "" {
		c.Scheduler.CaptureMissionPayments = "0 0 6 * * *" // 6 AM UTC
	}
	if c.Scheduler.ResolveMissionTimeouts == "" {
		c.Scheduler.ResolveMissionTimeouts = "0 0 7 * * *" // 7 AM UTC
	}
	if c.Scheduler.RetryFailedTransfers == "" {
		c.Scheduler.RetryFailedTransfers = "0 45 */2 * * *" // every 2 hours at :45
	}

	// Jobs defaults
	if c.Jobs.BatchLimit == 0 {
		c.Jobs.BatchLimit = 100
	}
	if c.Jobs.LockTTLMinutes == 0 {
		c.Jobs.LockTTLMinutes = 10
	}
	if c.Jobs.InstanceID == "" {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "beldetailing-worker"
		}
		c.Jobs.InstanceID = host
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
