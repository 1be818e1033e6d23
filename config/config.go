package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// MobileMoneyProvider holds credentials for a single mobile-money provider
type MobileMoneyProvider struct {
	APIKey        string
	APISecret     string
	WebhookSecret string
	PayURL        string
}

// Config holds all configuration for the application
type Config struct {
	Environment   string
	Port          string
	DatabaseURL   string
	JWTSecret     string
	JWTExpiration int
	BaseURL       string

	// Mobile Money Providers (Moov, Orange, MTN, Wave)
	Providers map[string]MobileMoneyProvider

	// Email Configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	// SMS Gateway Configuration
	SMSGatewayURL string
	SMSAPIKey     string
	SMSSender     string

	// Checkout Configuration
	TaxRate            string
	FallbackDeliveryFee string
	Currency           string

	// Rate Limiting Configuration
	RateLimitRequests int
	RateLimitWindow   int

	// File Upload Configuration
	MaxFileSize int64
	UploadPath  string

	// CORS Configuration
	AllowedOrigins  []string
	AllowAllOrigins bool
}

// ProviderNames lists the supported mobile-money providers
var ProviderNames = []string{"moov", "orange", "mtn", "wave"}

// Load loads configuration from environment variables
func Load() *Config {
	providers := make(map[string]MobileMoneyProvider, len(ProviderNames))
	for _, name := range ProviderNames {
		prefix := strings.ToUpper(name)
		providers[name] = MobileMoneyProvider{
			APIKey:        getEnv(prefix+"_API_KEY", ""),
			APISecret:     getEnv(prefix+"_API_SECRET", ""),
			WebhookSecret: getEnv(prefix+"_WEBHOOK_SECRET", ""),
			PayURL:        getEnv(prefix+"_PAY_URL", "https://pay."+name+".example/checkout"),
		}
	}

	return &Config{
		Environment:   getEnv("ENVIRONMENT", "development"),
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   getEnv("DATABASE_URL", "kefystore.db"),
		JWTSecret:     getEnv("JWT_SECRET", "change-this-jwt-secret-before-production"),
		JWTExpiration: getEnvAsInt("JWT_EXPIRATION", 24*60*60), // 24 hours in seconds
		BaseURL:       getEnv("BASE_URL", "http://localhost:8080"),

		Providers: providers,

		// Email Configuration
		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		// SMS Configuration
		SMSGatewayURL: getEnv("SMS_GATEWAY_URL", ""),
		SMSAPIKey:     getEnv("SMS_API_KEY", ""),
		SMSSender:     getEnv("SMS_SENDER", "KefyStore"),

		// Checkout Configuration
		TaxRate:             getEnv("TAX_RATE", "0"),
		FallbackDeliveryFee: getEnv("FALLBACK_DELIVERY_FEE", "1500"),
		Currency:            getEnv("CURRENCY", "XOF"),

		// Rate Limiting Configuration
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvAsInt("RATE_LIMIT_WINDOW", 60),

		// File Upload Configuration
		MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 5*1024*1024), // 5MB
		UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),

		// CORS Configuration
		AllowedOrigins:  getEnvAsStringSlice("ALLOWED_ORIGINS", []string{}),
		AllowAllOrigins: getEnvAsBool("ALLOW_ALL_ORIGINS", true), // Default to true for development
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// ServerPort returns the server port
func (c *Config) ServerPort() string {
	return c.Port
}

// Provider returns the configuration for a mobile-money provider
func (c *Config) Provider(name string) (MobileMoneyProvider, bool) {
	p, ok := c.Providers[strings.ToLower(name)]
	return p, ok
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("database URL is required")
	}
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"production":  true,
		"test":        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	if _, err := strconv.ParseFloat(c.TaxRate, 64); err != nil {
		return fmt.Errorf("invalid tax rate: %s", c.TaxRate)
	}
	if _, err := strconv.ParseFloat(c.FallbackDeliveryFee, 64); err != nil {
		return fmt.Errorf("invalid fallback delivery fee: %s", c.FallbackDeliveryFee)
	}

	return nil
}

// SetDefaults sets default values for configuration
func (c *Config) SetDefaults() {
	if c.JWTSecret == "" {
		c.JWTSecret = "change-this-jwt-secret-before-production"
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = "kefystore.db"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.Currency == "" {
		c.Currency = "XOF"
	}
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Environment: %s, Port: %s, DatabaseURL: %s}", c.Environment, c.Port, c.DatabaseURL)
}
