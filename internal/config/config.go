package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port        int               `json:"port"`
	JWTSecret   string            `json:"jwt_secret"`
	CORSOrigins []string          `json:"cors_origins"`
	LogConfig   logger.LogConfig  `json:"log_config"`
	Database    DatabaseConfig    `json:"database"`
	AI          AIConfig          `json:"ai"`
	VectorStore VectorStoreConfig `json:"vector_store"`
	Chat        ChatConfig        `json:"chat"`
	Jobs        JobsConfig        `json:"jobs"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

// AIConfig selects the completion and embedding providers. Data carries the
// provider-specific credentials (api_key, base_url) and is decoded by the
// provider factory itself.
type AIConfig struct {
	Provider      string                 `json:"provider"`
	Model         string                 `json:"model"`
	EmbedProvider string                 `json:"embed_provider"`
	EmbedModel    string                 `json:"embed_model"`
	Dimension     int                    `json:"dimension"`
	Timeout       int                    `json:"timeout"`
	MaxInputChars int                    `json:"max_input_chars"`
	Data          map[string]interface{} `json:"data"`
}

type VectorStoreConfig struct {
	Type string `json:"type"`
}

type ChatConfig struct {
	MemorySize int `json:"memory_size"`
	// SettleDelaySeconds nil means the default; an explicit 0 disables the
	// post-registration wait.
	SettleDelaySeconds *int `json:"settle_delay_seconds"`
	TopK               int  `json:"top_k"`
	RateLimitMS        int  `json:"rate_limit_ms"`
}

type JobsConfig struct {
	ReaperSpec           string `json:"reaper_spec"`
	CacheCleanupSpec     string `json:"cache_cleanup_spec"`
	CacheMaxAgeDays      int    `json:"cache_max_age_days"`
	EmbedCacheLRUSize    int    `json:"embed_cache_lru_size"`
	EmbedCacheTTLMinutes int    `json:"embed_cache_ttl_minutes"`
	// RunTimeoutMinutes bounds a single run of any maintenance job.
	RunTimeoutMinutes int `json:"run_timeout_minutes"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.Database.DSN == "" && (cfg.Database.Host == "" || cfg.Database.DBName == "") {
		return nil, fmt.Errorf("database.dsn or database.host/db_name is required")
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.AI.Model == "" {
		return nil, fmt.Errorf("ai.model is required")
	}
	if cfg.AI.EmbedModel == "" {
		return nil, fmt.Errorf("ai.embed_model is required")
	}
	if cfg.AI.EmbedProvider == "" {
		cfg.AI.EmbedProvider = cfg.AI.Provider
	}
	if cfg.AI.Dimension == 0 {
		cfg.AI.Dimension = 1536
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "pgvector"
	}
	if cfg.Chat.MemorySize == 0 {
		cfg.Chat.MemorySize = 3
	}
	if cfg.Chat.SettleDelaySeconds == nil {
		defaultSettle := 5
		cfg.Chat.SettleDelaySeconds = &defaultSettle
	}
	if *cfg.Chat.SettleDelaySeconds < 0 {
		return nil, fmt.Errorf("chat.settle_delay_seconds must not be negative")
	}
	if cfg.Chat.TopK == 0 {
		cfg.Chat.TopK = 100
	}
	if cfg.Jobs.ReaperSpec == "" {
		cfg.Jobs.ReaperSpec = "*/10 * * * *"
	}
	if cfg.Jobs.CacheCleanupSpec == "" {
		cfg.Jobs.CacheCleanupSpec = "0 4 * * *"
	}
	if cfg.Jobs.RunTimeoutMinutes == 0 {
		cfg.Jobs.RunTimeoutMinutes = 10
	}
	return &cfg, nil
}
