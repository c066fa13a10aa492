package config

import "os"

// Config holds environment-driven configuration.
type Config struct {
	Addr        string
	DatabaseURL string
	JWTSecret   string

	// Payment gateway settings. GatewayURL is the base URL of the
	// provider's API, WebhookSecret signs inbound event payloads.
	GatewayURL    string
	GatewayAPIKey string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	Currency      string

	// SMTP settings for order-confirmation mail.
	SMTPHost  string
	SMTPPort  string
	EmailFrom string
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		Addr:          getEnv("STOREFRONT_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		GatewayURL:    os.Getenv("PAYMENT_GATEWAY_URL"),
		GatewayAPIKey: os.Getenv("PAYMENT_GATEWAY_API_KEY"),
		WebhookSecret: os.Getenv("PAYMENT_WEBHOOK_SECRET"),
		SuccessURL:    getEnv("PAYMENT_SUCCESS_URL", "http://localhost:8080/payment/completed"),
		CancelURL:     getEnv("PAYMENT_CANCEL_URL", "http://localhost:8080/payment/canceled"),
		Currency:      getEnv("STOREFRONT_CURRENCY", "USD"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		EmailFrom:     getEnv("EMAIL_FROM", "orders@example.com"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
