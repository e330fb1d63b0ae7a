// Package config loads and validates lfubench settings.
//
// Values come from LFU_* environment variables, optionally seeded from a
// .env file. Variables already present in the environment win over the
// file, and command-line flags win over both.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Bench struct {
	Capacity    int           `validate:"gte=0"`
	Keys        int           `validate:"gt=0"`
	Workers     int           `validate:"gt=0,lte=1024"`
	Ops         int           `validate:"gtefield=Workers"`
	Skew        float64       `validate:"gt=1"`
	MetricsAddr string        `validate:"omitempty,hostname_port"`
	Linger      time.Duration `validate:"gte=0"`
	LogLevel    string        `validate:"oneof=debug info warn error"`
	Seed        int64
}

func Default() Bench {
	return Bench{
		Capacity: 1_000,
		Keys:     10_000,
		Workers:  8,
		Ops:      1_000_000,
		Skew:     1.1,
		Seed:     1,
		LogLevel: "info",
	}
}

// Load reads envFile if it exists, then overlays LFU_* variables onto
// Default. An empty envFile skips the file.
func Load(envFile string) (Bench, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Bench{}, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}

	b := Default()
	b.Capacity = getEnvInt("LFU_CAPACITY", b.Capacity)
	b.Keys = getEnvInt("LFU_KEYS", b.Keys)
	b.Workers = getEnvInt("LFU_WORKERS", b.Workers)
	b.Ops = getEnvInt("LFU_OPS", b.Ops)
	b.Skew = getEnvFloat("LFU_SKEW", b.Skew)
	b.Seed = int64(getEnvInt("LFU_SEED", int(b.Seed)))
	b.MetricsAddr = getEnv("LFU_METRICS_ADDR", b.MetricsAddr)
	b.Linger = getEnvDuration("LFU_LINGER", b.Linger)
	b.LogLevel = strings.ToLower(getEnv("LFU_LOG_LEVEL", b.LogLevel))
	return b, nil
}

var (
	validatorInstance *validator.Validate
	validatorOnce     sync.Once
)

func getValidator() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInstance = validator.New()
	})
	return validatorInstance
}

// Validate reports every invalid field at once.
func (b Bench) Validate() error {
	err := getValidator().Struct(b)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: must satisfy %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: must satisfy %s (got %v)", fe.Field(), fe.Tag(), fe.Value()))
		}
	}
	return fmt.Errorf("config: invalid settings: %s", strings.Join(msgs, "; "))
}

func (b Bench) Level() slog.Level {
	switch b.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}
