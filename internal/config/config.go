package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Store    StoreConfig
	Advisor  AdvisorConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  int // in minutes
	RefreshExpiry int // in days
}

// StoreConfig holds storefront policy knobs.
type StoreConfig struct {
	AdminEmail     string // email granted admin capability regardless of stored role
	SignupBonus    int    // points granted at sign-up
	CartAddPoints  int    // points per cart-add
	DailyClaimBase int    // points per daily claim
}

// AdvisorConfig points at the generative-text backend used for shopping advice.
type AdvisorConfig struct {
	BaseURL   string
	APIKey    string
	TimeoutMS int
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_ACCESS_EXPIRY", 15)
	viper.SetDefault("JWT_REFRESH_EXPIRY", 7)
	viper.SetDefault("STORE_SIGNUP_BONUS", 100)
	viper.SetDefault("STORE_CART_ADD_POINTS", 10)
	viper.SetDefault("STORE_DAILY_CLAIM_BASE", 100)
	viper.SetDefault("ADVISOR_TIMEOUT_MS", 4000)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  viper.GetInt("JWT_ACCESS_EXPIRY"),
			RefreshExpiry: viper.GetInt("JWT_REFRESH_EXPIRY"),
		},
		Store: StoreConfig{
			AdminEmail:     viper.GetString("STORE_ADMIN_EMAIL"),
			SignupBonus:    viper.GetInt("STORE_SIGNUP_BONUS"),
			CartAddPoints:  viper.GetInt("STORE_CART_ADD_POINTS"),
			DailyClaimBase: viper.GetInt("STORE_DAILY_CLAIM_BASE"),
		},
		Advisor: AdvisorConfig{
			BaseURL:   viper.GetString("ADVISOR_BASE_URL"),
			APIKey:    viper.GetString("ADVISOR_API_KEY"),
			TimeoutMS: viper.GetInt("ADVISOR_TIMEOUT_MS"),
		},
	}
}
