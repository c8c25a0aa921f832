/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"loopwise-go/internal/models"
)

func Load() (*models.Config, error) {
	pollingInterval, err := getEnvDuration("LISTENER_POLLING_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}

	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	redisDialTimeout, err := getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	primeLookback, err := getEnvDuration("PRIME_LOOKBACK_WINDOW", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	readTimeout, err := getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	// Chat completions can take a while with large token budgets.
	writeTimeout, err := getEnvDuration("SERVER_WRITE_TIMEOUT", 2*time.Minute)
	if err != nil {
		return nil, err
	}

	rail := strings.ToLower(getEnvString("TRANSFER_RAIL", "circle"))
	if rail != "circle" && rail != "prime" {
		return nil, fmt.Errorf("invalid TRANSFER_RAIL %q: expected circle or prime", rail)
	}

	backend := strings.ToLower(getEnvString("PREFERENCES_BACKEND", "sqlite"))
	switch backend {
	case "sqlite", "redis", "memory":
	default:
		return nil, fmt.Errorf("invalid PREFERENCES_BACKEND %q: expected sqlite, redis or memory", backend)
	}

	return &models.Config{
		Database: models.DatabaseConfig{
			Path:            getEnvString("DATABASE_PATH", "loopwise.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
		},
		Preferences: models.PreferencesConfig{
			Backend:   backend,
			Namespace: getEnvString("PREFERENCES_NAMESPACE", "loopwise"),
		},
		Redis: models.RedisConfig{
			Addr:        getEnvString("REDIS_ADDR", "localhost:6379"),
			Password:    getEnvString("REDIS_PASSWORD", ""),
			DB:          getEnvInt("REDIS_DB", 0),
			DialTimeout: redisDialTimeout,
		},
		Rail: rail,
		Circle: models.CircleConfig{
			BaseURL: getEnvString("CIRCLE_BASE_URL", "https://api-sandbox.circle.com"),
			APIKey:  getEnvString("CIRCLE_API_KEY", ""),
		},
		Prime: models.PrimeConfig{
			AccessKey:      getEnvString("PRIME_ACCESS_KEY", ""),
			Passphrase:     getEnvString("PRIME_PASSPHRASE", ""),
			SigningKey:     getEnvString("PRIME_SIGNING_KEY", ""),
			PortfolioId:    getEnvString("PRIME_PORTFOLIO_ID", ""),
			LookbackWindow: primeLookback,
		},
		Formance: models.FormanceConfig{
			Enabled:      getEnvBool("FORMANCE_ENABLED", false),
			StackURL:     getEnvString("FORMANCE_STACK_URL", ""),
			ClientID:     getEnvString("FORMANCE_CLIENT_ID", ""),
			ClientSecret: getEnvString("FORMANCE_CLIENT_SECRET", ""),
			LedgerName:   getEnvString("FORMANCE_LEDGER", "loopwise"),
		},
		Assistant: models.AssistantConfig{
			APIKey:      getEnvString("GROQ_API_KEY", ""),
			BaseURL:     getEnvString("ASSISTANT_BASE_URL", "https://api.groq.com/openai/v1"),
			Model:       getEnvString("ASSISTANT_MODEL", "openai/gpt-oss-120b"),
			Temperature: getEnvFloat("ASSISTANT_TEMPERATURE", 1),
			TopP:        getEnvFloat("ASSISTANT_TOP_P", 1),
			MaxTokens:   getEnvInt("ASSISTANT_MAX_TOKENS", 8192),
		},
		Mock: models.MockConfig{
			LatencyScale: getEnvFloat("MOCK_LATENCY_SCALE", 1),
		},
		Server: models.ServerConfig{
			Addr:           getEnvString("SERVER_ADDR", ":8080"),
			AllowedOrigins: getEnvList("SERVER_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
			ReadTimeout:    readTimeout,
			WriteTimeout:   writeTimeout,
			MaxBodyBytes:   int64(getEnvInt("SERVER_MAX_BODY_BYTES", 5<<20)),
		},
		Listener: models.ListenerConfig{
			PollingInterval: pollingInterval,
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
