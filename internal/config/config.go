package config

import (
	"strings"
	"time"
	_ "time/tzdata" // zone database for minimal container images

	"github.com/spf13/viper"

	"laborstatus.service/internal/core"
	"laborstatus.service/internal/core/model"
)

// The services run as containers with everything passed in as environment
// variables. Only the Connecteam API key has no usable default.

type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	IsLocalDev bool   `mapstructure:"IS_LOCAL_DEV"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`

	AWSRegion        string `mapstructure:"AWS_REGION"`
	AWSEndpoint      string `mapstructure:"AWS_ENDPOINT"`
	AlertSQSQueueURL string `mapstructure:"ALERT_SQS_QUEUE_URL"`
	AlertSender      string `mapstructure:"ALERT_SENDER"`

	ConnecteamAPIKey  string        `mapstructure:"CONNECTEAM_API_KEY"`
	ConnecteamBaseURL string        `mapstructure:"CONNECTEAM_BASE_URL"`
	ConnecteamTimeout time.Duration `mapstructure:"CONNECTEAM_TIMEOUT"`
	FetchConcurrency  int           `mapstructure:"FETCH_CONCURRENCY"`

	Timezone            string        `mapstructure:"TIMEZONE"`
	LunchPolicy         string        `mapstructure:"LUNCH_POLICY"`
	BusinessHoursGating bool          `mapstructure:"BUSINESS_HOURS_GATING"`
	BusinessHoursSpec   string        `mapstructure:"BUSINESS_HOURS"`
	UserRefreshInterval time.Duration `mapstructure:"USER_REFRESH_INTERVAL"`
	ScanInterval        time.Duration `mapstructure:"SCAN_INTERVAL"`

	OTelExporter string `mapstructure:"OTEL_EXPORTER"`
	OTelEndpoint string `mapstructure:"OTEL_ENDPOINT"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (config Config, err error) {
	v := viper.New()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("IS_LOCAL_DEV", false)
	v.SetDefault("DB_HOST", "db")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "user")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "laborstatus_db")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("AWS_ENDPOINT", "http://localstack:4566")
	v.SetDefault("ALERT_SQS_QUEUE_URL", "http://localstack:4566/000000000000/lunch-alert-queue")
	v.SetDefault("ALERT_SENDER", "alerts@laborstatus.local")
	v.SetDefault("CONNECTEAM_API_KEY", "")
	v.SetDefault("CONNECTEAM_BASE_URL", "https://api.connecteam.com")
	v.SetDefault("CONNECTEAM_TIMEOUT", 10*time.Second)
	v.SetDefault("FETCH_CONCURRENCY", 7)
	v.SetDefault("TIMEZONE", "America/Los_Angeles")
	v.SetDefault("LUNCH_POLICY", core.PolicyGraduated)
	v.SetDefault("BUSINESS_HOURS_GATING", true)
	v.SetDefault("BUSINESS_HOURS", core.DefaultBusinessHours)
	v.SetDefault("USER_REFRESH_INTERVAL", time.Hour)
	v.SetDefault("SCAN_INTERVAL", 5*time.Minute)
	v.SetDefault("OTEL_EXPORTER", "otlp")
	v.SetDefault("OTEL_ENDPOINT", "jaeger:4317")

	// Read in environment variables that match the keys.
	v.AutomaticEnv()

	err = v.Unmarshal(&config)
	return
}

// Validate reports the first setting that would stop the service from
// working. The returned error matches model.ErrConfiguration.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ConnecteamAPIKey) == "" {
		return &model.ConfigurationError{Field: "CONNECTEAM_API_KEY", Reason: "is required"}
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := core.NewLunchPolicy(c.LunchPolicy); err != nil {
		return err
	}
	if _, err := c.BusinessHours(); err != nil {
		return err
	}
	if c.ConnecteamTimeout <= 0 {
		return &model.ConfigurationError{Field: "CONNECTEAM_TIMEOUT", Reason: "must be positive"}
	}
	return nil
}

// Location loads the configured time zone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, &model.ConfigurationError{Field: "TIMEZONE", Reason: err.Error()}
	}
	return loc, nil
}

// BusinessHours parses the gating windows. It returns nil when gating is off.
func (c Config) BusinessHours() (*core.BusinessHours, error) {
	if !c.BusinessHoursGating {
		return nil, nil
	}
	return core.ParseBusinessHours(c.BusinessHoursSpec)
}

// CoreOptions translates the configuration into engine options.
func (c Config) CoreOptions() ([]core.Option, error) {
	policy, err := core.NewLunchPolicy(c.LunchPolicy)
	if err != nil {
		return nil, err
	}
	hours, err := c.BusinessHours()
	if err != nil {
		return nil, err
	}
	return []core.Option{
		core.WithLunchPolicy(policy),
		core.WithBusinessHours(hours),
		core.WithFetchConcurrency(c.FetchConcurrency),
	}, nil
}
