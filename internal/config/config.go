package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"FieldMonitorAPI/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Twilio   TwilioConfig
	SendGrid SendGridConfig
	Alerting AlertingConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	Environment     string
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxHeaderBytes  int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

type SendGridConfig struct {
	APIKey     string
	FromEmail  string
	TemplateID string
}

// AlertingConfig drives the threshold checker and its schedule.
type AlertingConfig struct {
	PublicBaseURL        string
	CheckIntervalMinutes int
	CycleTimeout         time.Duration
	DefaultAlertInterval time.Duration
	DebounceWindow       time.Duration
	StoppageAfter        time.Duration
	AlertSensorStoppage  bool
	WeatherStationID     int
	Timezone             string
	RecapSchedule        string
	EnableScheduler      bool
}

type SecurityConfig struct {
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	RateLimitPerMinute int
	EnableRateLimit    bool
}

type LoggingConfig struct {
	Level      logger.Level
	FilePath   string
	UseColors  bool
	ShowCaller bool
}

var requiredEnvVars = []string{
	"DB_HOST",
	"DB_PORT",
	"DB_USER",
	"DB_PASSWORD",
	"DB_NAME",
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	if err := validateRequired(); err != nil {
		return nil, err
	}

	cfg := &Config{
		Server:   loadServerConfig(),
		Database: loadDatabaseConfig(),
		Twilio:   loadTwilioConfig(),
		SendGrid: loadSendGridConfig(),
		Alerting: loadAlertingConfig(),
		Security: loadSecurityConfig(),
		Logging:  loadLoggingConfig(),
	}

	return cfg, nil
}

func validateRequired() error {
	var missing []string

	for _, key := range requiredEnvVars {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("SERVER_HOST", "0.0.0.0"),
		Port:            getEnvAsInt("SERVER_PORT", 8080),
		Environment:     getEnv("ENVIRONMENT", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", "15s"),
		ReadTimeout:     getEnvAsDuration("READ_TIMEOUT", "10s"),
		WriteTimeout:    getEnvAsDuration("WRITE_TIMEOUT", "10s"),
		MaxHeaderBytes:  getEnvAsInt("MAX_HEADER_BYTES", 1048576),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvAsInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "field_admin"),
		Password:        getEnv("DB_PASSWORD", ""),
		Database:        getEnv("DB_NAME", "field_monitor"),
		SSLMode:         getEnv("DB_SSL_MODE", "disable"),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", "5m"),
		ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", "5m"),
	}
}

func loadTwilioConfig() TwilioConfig {
	return TwilioConfig{
		AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		FromNumber: getEnv("TWILIO_PHONE_NUMBER", ""),
	}
}

func loadSendGridConfig() SendGridConfig {
	return SendGridConfig{
		APIKey:     getEnv("SENDGRID_API_KEY", ""),
		FromEmail:  getEnv("SENDGRID_FROM_EMAIL", "alerts@fieldmonitor.io"),
		TemplateID: getEnv("SENDGRID_ALERT_TEMPLATE_ID", ""),
	}
}

func loadAlertingConfig() AlertingConfig {
	return AlertingConfig{
		PublicBaseURL:        getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		CheckIntervalMinutes: getEnvAsInt("CHECK_INTERVAL_MINUTES", 10),
		CycleTimeout:         getEnvAsDuration("CYCLE_TIMEOUT", "4m"),
		DefaultAlertInterval: getEnvAsDuration("DEFAULT_ALERT_INTERVAL", "10m"),
		DebounceWindow:       getEnvAsDuration("DEBOUNCE_WINDOW", "5m"),
		StoppageAfter:        getEnvAsDuration("SENSOR_STOPPAGE_AFTER", "30m"),
		AlertSensorStoppage:  getEnvAsBool("ALERT_SENSOR_STOPPAGE", false),
		WeatherStationID:     getEnvAsInt("WEATHER_STATION_ID", 181795),
		Timezone:             getEnv("ALERT_TIMEZONE", "America/Chicago"),
		RecapSchedule:        getEnv("RECAP_SCHEDULE", "0 8 * * 1"),
		EnableScheduler:      getEnvAsBool("ENABLE_SCHEDULER", true),
	}
}

func loadSecurityConfig() SecurityConfig {
	origins := getEnv("CORS_ALLOWED_ORIGINS", "*")
	methods := getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS")

	return SecurityConfig{
		CORSAllowedOrigins: strings.Split(origins, ","),
		CORSAllowedMethods: strings.Split(methods, ","),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100),
		EnableRateLimit:    getEnvAsBool("ENABLE_RATE_LIMIT", true),
	}
}

func loadLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:      logger.ParseLevel(getEnv("LOG_LEVEL", "info")),
		FilePath:   getEnv("LOG_FILE_PATH", ""),
		UseColors:  getEnvAsBool("LOG_USE_COLORS", true),
		ShowCaller: getEnvAsBool("LOG_SHOW_CALLER", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// SMSEnabled reports whether outbound SMS is configured.
func (c *Config) SMSEnabled() bool {
	return c.Twilio.AccountSID != "" && c.Twilio.AuthToken != "" && c.Twilio.FromNumber != ""
}

// EmailEnabled reports whether outbound email is configured.
func (c *Config) EmailEnabled() bool {
	return c.SendGrid.APIKey != ""
}

func (c *Config) Validate() error {
	var errors []string

	if c.Database.Password == "" {
		errors = append(errors, "DB_PASSWORD cannot be empty")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, "SERVER_PORT must be between 1 and 65535")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		errors = append(errors, "DB_PORT must be between 1 and 65535")
	}

	if c.Alerting.CheckIntervalMinutes < 1 {
		errors = append(errors, "CHECK_INTERVAL_MINUTES must be at least 1")
	}

	if _, err := time.LoadLocation(c.Alerting.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("ALERT_TIMEZONE %q is not a valid tz name", c.Alerting.Timezone))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func (c *Config) Print() {
	fmt.Println("╔══════════════════════════════════════════════════════════╗")
	fmt.Println("║           Field Monitor - Configuration                 ║")
	fmt.Println("╚══════════════════════════════════════════════════════════╝")
	fmt.Printf("Environment:     %s\n", c.Server.Environment)
	fmt.Printf("Server:          %s:%d\n", c.Server.Host, c.Server.Port)
	fmt.Printf("Database:        %s:%d/%s\n", c.Database.Host, c.Database.Port, c.Database.Database)
	fmt.Printf("Check interval:  %dm\n", c.Alerting.CheckIntervalMinutes)
	fmt.Printf("SMS enabled:     %t\n", c.SMSEnabled())
	fmt.Printf("Email enabled:   %t\n", c.EmailEnabled())
	fmt.Println("──────────────────────────────────────────────────────────")
}
