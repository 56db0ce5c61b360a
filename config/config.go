package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server ServerConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	CORS   CORSConfig
	Models ModelsConfig
	Mirror MirrorConfig
}

type ServerConfig struct {
	Port int
}

type MongoConfig struct {
	URI            string
	Database       string
	RetryAttempts  int
	BackoffBase    time.Duration
	ConnectTimeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins string
}

type ModelsConfig struct {
	Dir          string
	TrainTimeout time.Duration
}

type MirrorConfig struct {
	Dir string
}

func LoadConfig() (*Config, error) {
	serverPort, err := getIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	redisPort, err := getIntEnv("REDIS_PORT", 6379)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}

	redisDB, err := getIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	retries, err := getIntEnv("MONGO_RETRY_ATTEMPTS", 3)
	if err != nil {
		return nil, fmt.Errorf("invalid MONGO_RETRY_ATTEMPTS: %w", err)
	}

	trainTimeout, err := getIntEnv("TRAIN_TIMEOUT_SEC", 30)
	if err != nil {
		return nil, fmt.Errorf("invalid TRAIN_TIMEOUT_SEC: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: serverPort,
		},
		Mongo: MongoConfig{
			URI:            getEnv("MONGO_URL", "mongodb://localhost:27017"),
			Database:       getEnv("MONGO_DATABASE", "ecopulse"),
			RetryAttempts:  retries,
			BackoffBase:    500 * time.Millisecond,
			ConnectTimeout: 5 * time.Second,
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     redisPort,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Models: ModelsConfig{
			Dir:          getEnv("MODEL_DIR", "models_store"),
			TrainTimeout: time.Duration(trainTimeout) * time.Second,
		},
		Mirror: MirrorConfig{
			Dir: getEnv("MIRROR_DIR", "."),
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}
