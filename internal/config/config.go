package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	AppPort string
	AppEnv  string
	AppURL  string
	AppName string

	JWTSecret string
	AdminKey  string

	XenditSecretKey     string
	XenditCallbackToken string
	FonnteToken         string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),

		AppPort: os.Getenv("APP_PORT"),
		AppEnv:  os.Getenv("APP_ENV"),
		AppURL:  os.Getenv("APP_URL"),
		AppName: os.Getenv("APP_NAME"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		AdminKey:  os.Getenv("ADMIN_KEY"),

		XenditSecretKey:     os.Getenv("XENDIT_SECRET_KEY"),
		XenditCallbackToken: os.Getenv("XENDIT_CALLBACK_TOKEN"),
		FonnteToken:         os.Getenv("FONNTE_TOKEN"),
	}

	if cfg.AppName == "" {
		cfg.AppName = "TokoPay"
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}
