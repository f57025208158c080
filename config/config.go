package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort string `mapstructure:"PORT"`
	Env     string `mapstructure:"APP_ENV"`

	// Storage.
	DatabaseDriver string `mapstructure:"DATABASE_DRIVER"`
	DatabaseURL    string `mapstructure:"MONGO_URI"`
	DatabaseName   string `mapstructure:"MONGO_DATABASE"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// queue | inline | disabled
	NotificationMode string `mapstructure:"NOTIFICATION_MODE"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTTTL    time.Duration `mapstructure:"JWT_TTL"`

	FirebaseCredentials string `mapstructure:"FIREBASE_CREDENTIALS"`

	StripeKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	PayPalClient  string `mapstructure:"PAYPAL_CLIENT_ID"`
	PayPalSecret  string `mapstructure:"PAYPAL_SECRET"`
	PayPalBaseURL string `mapstructure:"PAYPAL_BASE_URL"`

	// Google Maps API Key.
	GoogleAPIKey string `mapstructure:"GOOGLE_MAPS_API_KEY"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	MailFrom     string `mapstructure:"MAIL_FROM"`

	CloudinaryURL string `mapstructure:"CLOUDINARY_URL"`

	// Outbound calls to payment, maps, push and mail gateways.
	GatewayTimeout time.Duration `mapstructure:"GATEWAY_TIMEOUT"`
	GatewayRetries int           `mapstructure:"GATEWAY_RETRIES"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`
	CORSOrigins    string  `mapstructure:"CORS_ORIGINS"`

	AnalyticsCacheTTL time.Duration `mapstructure:"ANALYTICS_CACHE_TTL"`
}

var AppConfig Config

func LoadConfig() {
	// A local .env is optional; real deployments pass plain environment variables.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables only")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	for key, value := range Defaults() {
		viper.SetDefault(key, value)
	}

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// Defaults lists every key the service understands with its fallback value.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"PORT":                 "8080",
		"APP_ENV":              "development",
		"DATABASE_DRIVER":      "mongo",
		"MONGO_URI":            "mongodb://localhost:27017",
		"MONGO_DATABASE":       "easybook",
		"REDIS_ADDR":           "localhost:6379",
		"REDIS_PASSWORD":       "",
		"REDIS_CACHE_DB":       0,
		"REDIS_QUEUE_DB":       1,
		"NOTIFICATION_MODE":    "queue",
		"JWT_SECRET":           "",
		"JWT_TTL":              "168h",
		"FIREBASE_CREDENTIALS": "",
		"STRIPE_SECRET_KEY":    "",
		"PAYPAL_CLIENT_ID":     "",
		"PAYPAL_SECRET":        "",
		"PAYPAL_BASE_URL":      "https://api-m.sandbox.paypal.com",
		"GOOGLE_MAPS_API_KEY":  "",
		"SMTP_HOST":            "",
		"SMTP_PORT":            587,
		"SMTP_USER":            "",
		"SMTP_PASSWORD":        "",
		"MAIL_FROM":            "EasyBook <no-reply@easybook.app>",
		"CLOUDINARY_URL":       "",
		"GATEWAY_TIMEOUT":      "10s",
		"GATEWAY_RETRIES":      2,
		"RATE_LIMIT_RPS":       5.0,
		"RATE_LIMIT_BURST":     30,
		"CORS_ORIGINS":         "*",
		"ANALYTICS_CACHE_TTL":  "60s",
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(AppConfig.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
