package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/chatbot-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`

	// Database configuration. DATABASE_URL is optional: without it the
	// process falls back to an in-memory vector index and keeps no
	// persistent conversation log.
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// External service configurations
	EmbeddingCfg EmbeddingConnectorConfig `envPrefix:"EMBEDDING_"`
	GeneratorCfg GeneratorConnectorConfig `envPrefix:"GENERATOR_"`

	// Pipeline tuning
	SpellCfg  SpellConfig  `envPrefix:"SPELL_"`
	RerankCfg RerankConfig `envPrefix:"RERANK_"`
	ChatCfg   ChatConfig   `envPrefix:"CHAT_"`

	// Session configuration
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"1h"`

	// Indexer configuration
	DataDir string `env:"DATA_DIR" envDefault:"data"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Canned Q->A table and protected terms (loaded from JSON files)
	PredefinedAnswers map[string]string
	WhitelistTerms    []string

	// Environment (set from flag, not from env var)
	Environment string
}

type EmbeddingConnectorConfig struct {
	HTTPClientConfig
	// Model served by an OpenAI-compatible embeddings endpoint. The
	// default matches the 768-dimension column in the chunks migration.
	Model    string               `env:"MODEL" envDefault:"sentence-transformers/all-mpnet-base-v2"`
	CacheTTL time.Duration        `env:"CACHE_TTL" envDefault:"15m"`
	Retry    pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type GeneratorConnectorConfig struct {
	HTTPClientConfig
	Model  string               `env:"MODEL" envDefault:"gemini-2.5-flash-lite"`
	APIKey string               `env:"API_KEY"`
	Retry  pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type SpellConfig struct {
	DictionaryPath  string `env:"DICTIONARY_PATH,notEmpty"`
	MaxEditDistance int    `env:"MAX_EDIT_DISTANCE" envDefault:"2"`
	PrefixLength    int    `env:"PREFIX_LENGTH" envDefault:"7"`
	WhitelistPath   string `env:"WHITELIST_PATH" envDefault:"internal/config/whitelist.json"`
}

type RerankConfig struct {
	SemanticWeight float64 `env:"SEMANTIC_WEIGHT" envDefault:"0.7"`
	LexicalWeight  float64 `env:"LEXICAL_WEIGHT" envDefault:"0.3"`
	// MinScore rejects candidates whose combined score falls below it
	// before prompt assembly. 0 disables the gate.
	MinScore float64 `env:"MIN_SCORE" envDefault:"0"`
}

type ChatConfig struct {
	SearchK        int    `env:"SEARCH_K" envDefault:"5"`
	TopN           int    `env:"TOP_N" envDefault:"3"`
	HistoryLimit   int    `env:"HISTORY_LIMIT" envDefault:"10"`
	MaxQueryLength int    `env:"MAX_QUERY_LENGTH" envDefault:"2000"`
	PredefinedPath string `env:"PREDEFINED_PATH" envDefault:"internal/config/predefined_answers.json"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"20s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

// predefinedAnswers represents the structure of predefined_answers.json
type predefinedAnswers struct {
	Answers map[string]string `json:"answers"`
}

// whitelistTerms represents the structure of whitelist.json
type whitelistTerms struct {
	Terms []string `json:"terms"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Load canned answers and protected terms from JSON files
	if err := loadPredefinedAnswers(cfg); err != nil {
		return nil, fmt.Errorf("load predefined answers: %w", err)
	}
	if err := loadWhitelist(cfg); err != nil {
		return nil, fmt.Errorf("load whitelist: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errs []string

	if cfg.RerankCfg.SemanticWeight < 0 || cfg.RerankCfg.SemanticWeight > 1 {
		errs = append(errs, fmt.Sprintf("RERANK_SEMANTIC_WEIGHT must be between 0 and 1, got %v", cfg.RerankCfg.SemanticWeight))
	}
	if cfg.RerankCfg.LexicalWeight < 0 || cfg.RerankCfg.LexicalWeight > 1 {
		errs = append(errs, fmt.Sprintf("RERANK_LEXICAL_WEIGHT must be between 0 and 1, got %v", cfg.RerankCfg.LexicalWeight))
	}
	if cfg.RerankCfg.MinScore < 0 || cfg.RerankCfg.MinScore > 1 {
		errs = append(errs, fmt.Sprintf("RERANK_MIN_SCORE must be between 0 and 1, got %v", cfg.RerankCfg.MinScore))
	}

	if cfg.ChatCfg.SearchK < 1 || cfg.ChatCfg.SearchK > 100 {
		errs = append(errs, fmt.Sprintf("CHAT_SEARCH_K must be between 1 and 100, got %d", cfg.ChatCfg.SearchK))
	}
	if cfg.ChatCfg.TopN < 1 || cfg.ChatCfg.TopN > cfg.ChatCfg.SearchK {
		errs = append(errs, fmt.Sprintf("CHAT_TOP_N must be between 1 and CHAT_SEARCH_K(%d), got %d", cfg.ChatCfg.SearchK, cfg.ChatCfg.TopN))
	}
	if cfg.ChatCfg.HistoryLimit < 1 || cfg.ChatCfg.HistoryLimit > 100 {
		errs = append(errs, fmt.Sprintf("CHAT_HISTORY_LIMIT must be between 1 and 100, got %d", cfg.ChatCfg.HistoryLimit))
	}

	if cfg.SpellCfg.MaxEditDistance < 1 || cfg.SpellCfg.MaxEditDistance > 4 {
		errs = append(errs, fmt.Sprintf("SPELL_MAX_EDIT_DISTANCE must be between 1 and 4, got %d", cfg.SpellCfg.MaxEditDistance))
	}

	if cfg.DatabaseURL != "" {
		if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
		}
		if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
			errs = append(errs, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
		}
	}

	if !cfg.EnableMocks && cfg.GeneratorCfg.APIKey == "" {
		errs = append(errs, "GENERATOR_API_KEY is required unless ENABLE_MOCKS is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// defaultPredefinedAnswers mirrors the shipped predefined_answers.json so
// the chatbot still answers its standard questions without the file.
var defaultPredefinedAnswers = map[string]string{
	"who are you":                "IDC Technologies is a global leader in IT staffing and workforce solutions, delivering talent across multiple industries.",
	"what do you do":             "IDC Technologies provides staffing, consulting, and project-based solutions tailored for the IT and engineering sectors.",
	"what are your accomplishments": "IDC Technologies' accomplishments include winning several prestigious awards such as 'Best Staffing Partner 2023'. To know more please check our 'Awards' section.",
	"how can i contact idc?":     "For inquiries regarding IDC, kindly refer to our dedicated contact page or direct your correspondence to himanshu@idctechnologies.com.",
}

var defaultWhitelistTerms = []string{
	"etihad", "rta", "audi", "idc", "idc's", "j.p. morgan", "pepsico",
	"hamriyah free zone authority", "fujairah government authority",
	"abu dhabi fund for development", "al mazroui medical center",
	"cyber", "cybersecurity", "galaxkey", "sahatna",
}

func loadPredefinedAnswers(cfg *Config) error {
	path := cfg.ChatCfg.PredefinedPath

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("Warning: predefined answers file not found at %s, using default answers\n", path)
		cfg.PredefinedAnswers = defaultPredefinedAnswers
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read predefined answers file: %w", err)
	}

	var parsed predefinedAnswers
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parse predefined answers JSON: %w", err)
	}

	if len(parsed.Answers) == 0 {
		return fmt.Errorf("predefined answers file contains no entries: %s", path)
	}

	cfg.PredefinedAnswers = parsed.Answers

	fmt.Printf("Loaded %d predefined answers from %s\n", len(cfg.PredefinedAnswers), path)
	return nil
}

func loadWhitelist(cfg *Config) error {
	path := cfg.SpellCfg.WhitelistPath

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("Warning: whitelist file not found at %s, using default terms\n", path)
		cfg.WhitelistTerms = defaultWhitelistTerms
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read whitelist file: %w", err)
	}

	var parsed whitelistTerms
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parse whitelist JSON: %w", err)
	}

	if len(parsed.Terms) == 0 {
		return fmt.Errorf("whitelist file contains no terms: %s", path)
	}

	cfg.WhitelistTerms = parsed.Terms

	fmt.Printf("Loaded %d whitelist terms from %s\n", len(cfg.WhitelistTerms), path)
	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
