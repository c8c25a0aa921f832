package models

import "time"

// Config represents the application configuration
type Config struct {
	Database    DatabaseConfig
	Preferences PreferencesConfig
	Redis       RedisConfig
	Rail        string // "circle" or "prime"
	Circle      CircleConfig
	Prime       PrimeConfig
	Formance    FormanceConfig
	Assistant   AssistantConfig
	Mock        MockConfig
	Server      ServerConfig
	Listener    ListenerConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// PreferencesConfig selects where preferences and the import hash live
type PreferencesConfig struct {
	Backend   string // "sqlite", "redis" or "memory"
	Namespace string
}

// RedisConfig holds redis connection settings
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

// CircleConfig holds Circle transfer API settings
type CircleConfig struct {
	BaseURL string
	APIKey  string
}

// PrimeConfig holds Coinbase Prime settings for the withdrawal rail
type PrimeConfig struct {
	AccessKey      string
	Passphrase     string
	SigningKey     string
	PortfolioId    string
	LookbackWindow time.Duration
}

// FormanceConfig holds settings for the optional ledger mirror
type FormanceConfig struct {
	Enabled      bool
	StackURL     string
	ClientID     string
	ClientSecret string
	LedgerName   string
}

// AssistantConfig holds the chat-completion endpoint settings
type AssistantConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// MockConfig tunes the fixture backend
type MockConfig struct {
	// LatencyScale multiplies the simulated network delays; 0 disables them.
	LatencyScale float64
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxBodyBytes   int64
}

// ListenerConfig holds settlement poller settings
type ListenerConfig struct {
	PollingInterval time.Duration
}
