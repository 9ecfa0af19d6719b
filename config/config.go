// Package config loads server settings from the environment.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"snake-landing/constants"
	"snake-landing/models"
)

const (
	envPort       = "PORT"
	envGridSize   = "SNAKE_GRID_SIZE"
	envTickMillis = "SNAKE_TICK_MS"
	envFoodReward = "SNAKE_FOOD_REWARD"
	envSeed       = "SNAKE_SEED"
	envJWTSecret  = "SNAKE_JWT_SECRET"
	envTokenTTL   = "SNAKE_TOKEN_TTL"
	envLogLevel   = "LOG_LEVEL"
	envLogPretty  = "LOG_PRETTY"
	envICEServers = "SNAKE_ICE_SERVERS"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Port       string
	GridSize   int
	TickRate   time.Duration
	FoodReward int
	Seed       uint64 // 0 seeds each game from the clock

	JWTSecret       string
	GeneratedSecret bool // JWTSecret was not configured and is process-local
	TokenTTL        time.Duration

	ICEServers []string // STUN/TURN URLs offered to WebRTC peers

	LogLevel  zerolog.Level
	LogPretty bool
}

func Default() Config {
	return Config{
		Port:       "8080",
		GridSize:   constants.GRID_SIZE,
		TickRate:   constants.TICK_RATE,
		FoodReward: constants.FOOD_REWARD,
		TokenTTL:   24 * time.Hour,
		ICEServers: []string{"stun:stun.l.google.com:19302"},
		LogLevel:   zerolog.InfoLevel,
	}
}

// Load reads the process environment.
func Load() (Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom builds a Config from lookup, starting from Default.
func LoadFrom(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	var err error

	if v, ok := lookup(envPort); ok && v != "" {
		cfg.Port = v
	}
	if cfg.GridSize, err = intVar(lookup, envGridSize, cfg.GridSize); err != nil {
		return cfg, err
	}
	if cfg.FoodReward, err = intVar(lookup, envFoodReward, cfg.FoodReward); err != nil {
		return cfg, err
	}
	ms, err := intVar(lookup, envTickMillis, int(cfg.TickRate/time.Millisecond))
	if err != nil {
		return cfg, err
	}
	cfg.TickRate = time.Duration(ms) * time.Millisecond

	if v, ok := lookup(envSeed); ok && v != "" {
		if cfg.Seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			return cfg, fmt.Errorf("%s: %w", envSeed, err)
		}
	}

	if v, ok := lookup(envTokenTTL); ok && v != "" {
		if cfg.TokenTTL, err = time.ParseDuration(v); err != nil {
			return cfg, fmt.Errorf("%s: %w", envTokenTTL, err)
		}
	}
	if v, ok := lookup(envJWTSecret); ok && v != "" {
		cfg.JWTSecret = v
	} else {
		secret, err := randomSecret()
		if err != nil {
			return cfg, fmt.Errorf("generate jwt secret: %w", err)
		}
		cfg.JWTSecret = secret
		cfg.GeneratedSecret = true
	}

	if v, ok := lookup(envICEServers); ok {
		cfg.ICEServers = splitList(v)
	}

	if v, ok := lookup(envLogLevel); ok && v != "" {
		if cfg.LogLevel, err = zerolog.ParseLevel(strings.ToLower(v)); err != nil {
			return cfg, fmt.Errorf("%s: %w", envLogLevel, err)
		}
	}
	if v, ok := lookup(envLogPretty); ok && v != "" {
		if cfg.LogPretty, err = strconv.ParseBool(v); err != nil {
			return cfg, fmt.Errorf("%s: %w", envLogPretty, err)
		}
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.GridSize < 2:
		return fmt.Errorf("%w: grid size %d is below 2", ErrInvalid, c.GridSize)
	case c.TickRate <= 0:
		return fmt.Errorf("%w: tick rate must be positive", ErrInvalid)
	case c.FoodReward <= 0:
		return fmt.Errorf("%w: food reward must be positive", ErrInvalid)
	case c.TokenTTL <= 0:
		return fmt.Errorf("%w: token ttl must be positive", ErrInvalid)
	case c.JWTSecret == "":
		return fmt.Errorf("%w: jwt secret is empty", ErrInvalid)
	}
	return nil
}

// Settings returns the game constants clients need to lay out the board.
func (c Config) Settings() models.GameSettings {
	return models.GameSettings{
		GridSize:   c.GridSize,
		TickMillis: int(c.TickRate / time.Millisecond),
		FoodReward: c.FoodReward,
	}
}

func intVar(lookup func(string) (string, bool), key string, def int) (int, error) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
