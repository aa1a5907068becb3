package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file named by CREDENCE_ENV (default ".env"). A missing
// file is fine; everything is plain env vars read on demand after this.
func Load() error {
	envFile := os.Getenv("CREDENCE_ENV")
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)
	return nil
}

func envInt(name string, def int) int {
	n, err := strconv.Atoi(os.Getenv(name))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envFloat(name string, def float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(name), 64)
	if err != nil || f <= 0 {
		return def
	}
	return f
}

func ServerPort() int {
	return envInt("SERVER_PORT", 8080)
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// LogLevel is one of debug, info, warn, error. Defaults to info.
func LogLevel() string {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		return level
	}
	return "info"
}

// APIKey returns the static API key. Empty disables authentication.
func APIKey() string {
	return os.Getenv("CREDENCE_API_KEY")
}

// ScenarioTrace reports whether scenario runs echo their trajectory to
// stdout. Off by default; useful when running the server as a local demo.
func ScenarioTrace() bool {
	v := os.Getenv("SCENARIO_TRACE")
	return v == "1" || v == "true"
}

func RateLimitRPS() float64 {
	return envFloat("RATE_LIMIT_RPS", 100)
}

func RateLimitBurst() int {
	return envInt("RATE_LIMIT_BURST", 20)
}

// AgentTTL is how long an idle agent survives before the expirer evicts it.
func AgentTTL() time.Duration {
	return time.Duration(envInt("AGENT_TTL_MINUTES", 60)) * time.Minute
}

// MaxStepsPerRequest caps the integration steps of a single update call.
func MaxStepsPerRequest() int {
	return envInt("MAX_STEPS_PER_REQUEST", 100000)
}
