package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	EventSubjectBase    string
	JWTSecret           string
	JWTRefreshSecret    string
	LeaderboardCacheTTL time.Duration
	SandboxBackend      string
	SandboxRoot         string
	DockerHost          string
	ExecutionTimeout    time.Duration
	SandboxMemoryMB     int
	SandboxCPUShares    int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ARENA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Arena API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("events.subject_base", "arena")
	v.SetDefault("leaderboard.cache_ttl", "30s")
	v.SetDefault("sandbox.backend", "docker")
	v.SetDefault("execution_timeout_ms", 5000)
	v.SetDefault("sandbox_memory_mb", 256)
	v.SetDefault("sandbox_cpu_shares", 512)

	ttlString := v.GetString("leaderboard.cache_ttl")
	if ttlString == "" {
		ttlString = "30s"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid leaderboard cache ttl: %w", err)
	}

	timeoutMs := v.GetInt("execution_timeout_ms")
	if timeoutMs <= 0 {
		timeoutMs = 5000
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		EventSubjectBase:    v.GetString("events.subject_base"),
		JWTSecret:           v.GetString("jwt.secret"),
		JWTRefreshSecret:    v.GetString("jwt.refresh_secret"),
		LeaderboardCacheTTL: ttl,
		SandboxBackend:      strings.ToLower(v.GetString("sandbox.backend")),
		SandboxRoot:         v.GetString("sandbox.root"),
		DockerHost:          v.GetString("docker_host"),
		ExecutionTimeout:    time.Duration(timeoutMs) * time.Millisecond,
		SandboxMemoryMB:     v.GetInt("sandbox_memory_mb"),
		SandboxCPUShares:    v.GetInt("sandbox_cpu_shares"),
	}

	if cfg.JWTSecret == "" || cfg.JWTRefreshSecret == "" {
		return Config{}, fmt.Errorf("jwt secrets must be provided")
	}

	if cfg.SandboxBackend != "docker" && cfg.SandboxBackend != "process" {
		return Config{}, fmt.Errorf("unknown sandbox backend %q", cfg.SandboxBackend)
	}

	if cfg.SandboxMemoryMB <= 0 {
		cfg.SandboxMemoryMB = 256
	}

	if cfg.SandboxCPUShares <= 0 {
		cfg.SandboxCPUShares = 512
	}

	return cfg, nil
}
