package config

import (
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DBHost     string `mapstructure:"db_host" validate:"required"`
	DBPort     string `mapstructure:"db_port" validate:"required,numeric"`
	DBUser     string `mapstructure:"db_user" validate:"required"`
	DBPassword string `mapstructure:"db_password"`
	DBName     string `mapstructure:"db_name" validate:"required"`
	DBSSLMode  string `mapstructure:"db_sslmode" validate:"oneof=disable allow prefer require verify-ca verify-full"`

	ServerPort string `mapstructure:"server_port" validate:"required,numeric"`
	LogLevel   string `mapstructure:"log_level" validate:"oneof=debug info warn error"`

	JWTSecret      string `mapstructure:"jwt_secret" validate:"required"`
	JWTExpiryHours int    `mapstructure:"jwt_expiry_hours" validate:"gt=0"`

	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     string `mapstructure:"smtp_port" validate:"omitempty,numeric"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	MailFrom     string `mapstructure:"mail_from" validate:"omitempty,email"`

	TwilioAccountSID string `mapstructure:"twilio_account_sid"`
	TwilioAuthToken  string `mapstructure:"twilio_auth_token"`
	TwilioFromNumber string `mapstructure:"twilio_from_number"`
	SMSCountryCode   string `mapstructure:"sms_country_code" validate:"omitempty,startswith=+"`

	ReminderWorkers   int `mapstructure:"reminder_workers" validate:"gt=0"`
	ReminderQueueSize int `mapstructure:"reminder_queue_size" validate:"gt=0"`
}

var defaults = map[string]any{
	"db_host":     "localhost",
	"db_port":     "5432",
	"db_user":     "taskflow_user",
	"db_password": "taskflow_pass",
	"db_name":     "taskflow_db",
	"db_sslmode":  "disable",

	"server_port": "8080",
	"log_level":   "info",

	"jwt_secret":       "supersecretkey",
	"jwt_expiry_hours": 72,

	"smtp_host":     "",
	"smtp_port":     "587",
	"smtp_user":     "",
	"smtp_password": "",
	"mail_from":     "",

	"twilio_account_sid": "",
	"twilio_auth_token":  "",
	"twilio_from_number": "",
	"sms_country_code":   "+91",

	"reminder_workers":    2,
	"reminder_queue_size": 100,
}

// Load reads .env (if present) and the process environment. Environment
// variables use the upper-case key names, e.g. DB_HOST or JWT_SECRET.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// DSN is the gorm/postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// MigrateURL is the pgx5:// URL understood by golang-migrate.
func (c *Config) MigrateURL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

func (c *Config) JWTExpiry() time.Duration {
	return time.Duration(c.JWTExpiryHours) * time.Hour
}

func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != "" && c.MailFrom != ""
}

func (c *Config) SMSEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFromNumber != ""
}
