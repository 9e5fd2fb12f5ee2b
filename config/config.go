package config

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv     string
	Port       string
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string
	JWTSecret  string
	JWTTTL     time.Duration

	PaystackSecretKey string
	PaystackPublicKey string
	PaystackBaseURL   string

	// Empty KafkaBrokers disables the Kafka event sink.
	KafkaBrokers []string
	KafkaTopic   string

	StockSweepInterval time.Duration
	CORSOrigins        []string
}

var (
	cfg  *Config
	once sync.Once
)

// LoadConfig reads .env when present, then the environment. The result is cached.
func LoadConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: .env file not found. Relying on environment variables.")
		}
		cfg = fromViper(newViper())
	})
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_NAME", "hospital")
	v.SetDefault("JWT_TTL_HOURS", 24)
	v.SetDefault("PAYSTACK_BASE_URL", "https://api.paystack.co")
	v.SetDefault("KAFKA_TOPIC", "hospital.workflow")
	v.SetDefault("STOCK_SWEEP_INTERVAL", "1h")
	v.SetDefault("CORS_ORIGINS", "*")
	return v
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		AppEnv:             v.GetString("APP_ENV"),
		Port:               v.GetString("PORT"),
		DBUser:             v.GetString("DB_USER"),
		DBPassword:         v.GetString("DB_PASSWORD"),
		DBHost:             v.GetString("DB_HOST"),
		DBPort:             v.GetString("DB_PORT"),
		DBName:             v.GetString("DB_NAME"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		JWTTTL:             time.Duration(v.GetInt("JWT_TTL_HOURS")) * time.Hour,
		PaystackSecretKey:  v.GetString("PAYSTACK_SECRET_KEY"),
		PaystackPublicKey:  v.GetString("PAYSTACK_PUBLIC_KEY"),
		PaystackBaseURL:    v.GetString("PAYSTACK_BASE_URL"),
		KafkaBrokers:       splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:         v.GetString("KAFKA_TOPIC"),
		StockSweepInterval: v.GetDuration("STOCK_SWEEP_INTERVAL"),
		CORSOrigins:        splitList(v.GetString("CORS_ORIGINS")),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.AppEnv == "development"
}
