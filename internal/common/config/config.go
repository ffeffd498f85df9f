// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Firestore     FirestoreConfig     `mapstructure:"firestore"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Payments      PaymentsConfig      `mapstructure:"payments"`
	Notifications NotificationConfig  `mapstructure:"notifications"`
	Intake        IntakeConfig        `mapstructure:"intake"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int `mapstructure:"write_timeout"` // milliseconds
}

// FirestoreConfig locates the document store.
type FirestoreConfig struct {
	ProjectID string `mapstructure:"project_id"`
}

// StorageConfig locates the blob store for traveler document uploads.
type StorageConfig struct {
	Bucket string `mapstructure:"bucket"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
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

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig holds settings for the identity provider.
type AuthConfig struct {
	ProviderURL string `mapstructure:"provider_url"`
	APIKey      string `mapstructure:"api_key"`
	Timeout     int    `mapstructure:"timeout"` // milliseconds
}

// PaymentsConfig holds settings for the payment processor.
type PaymentsConfig struct {
	StripeSecretKey string `mapstructure:"stripe_secret_key"`
	WebhookSecret   string `mapstructure:"webhook_secret"`
	Currency        string `mapstructure:"currency"`
	SetupFeeCents   int64  `mapstructure:"setup_fee_cents"`
}

// NotificationConfig holds settings for submission confirmations.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// IntakeConfig holds settings for the application workflow.
type IntakeConfig struct {
	Collection      string `mapstructure:"collection"`
	AuditEnabled    bool   `mapstructure:"audit_enabled"`
	DurationOptions []int  `mapstructure:"duration_options"` // weeks
	SubmitTimeout   int    `mapstructure:"submit_timeout"`   // milliseconds
	IdempotencyTTL  int    `mapstructure:"idempotency_ttl"`  // seconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
