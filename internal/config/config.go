package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete engine configuration. The heuristic
// constants (keyword hints, missing-value vocabulary, category thresholds)
// live here as explicit data so tests can substitute their own tables.
type Config struct {
	Parser    ParserConfig    `yaml:"parser" envconfig:"PARSER"`
	Inference InferenceConfig `yaml:"inference" envconfig:"INFERENCE"`
	Quality   QualityConfig   `yaml:"quality" envconfig:"QUALITY"`
	Roles     RolesConfig     `yaml:"roles" envconfig:"ROLES"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
}

// ParserConfig bounds what the tabular parser accepts.
type ParserConfig struct {
	MaxFileSize int64 `yaml:"max_file_size" envconfig:"MAX_FILE_SIZE" default:"10485760"`
}

// InferenceConfig tunes column-type classification.
type InferenceConfig struct {
	// SampleSize is how many non-empty values the classifier examines.
	SampleSize int `yaml:"sample_size" envconfig:"SAMPLE_SIZE" default:"100"`
	// CategoryMaxUnique is the distinct-count ceiling for the non-name-like
	// category rule.
	CategoryMaxUnique int `yaml:"category_max_unique" envconfig:"CATEGORY_MAX_UNIQUE" default:"30"`
	// NameKeywords marks identity-like columns that classify as category
	// regardless of cardinality.
	NameKeywords []string `yaml:"name_keywords" envconfig:"NAME_KEYWORDS" default:"customer,client,name,user,buyer,seller,vendor,supplier,person,employee,staff,agent"`
}

// QualityConfig tunes the data-quality analyzer and cleaner.
type QualityConfig struct {
	// MissingVocabulary lists string forms (trimmed, lowercased) treated as
	// missing values alongside empty cells.
	MissingVocabulary []string `yaml:"missing_vocabulary" envconfig:"MISSING_VOCABULARY" default:"null,n/a,na,nan,none,-,.,undefined,missing,#n/a,#na,(blank),blank,(empty),empty"`
	// HighMissingRatio is the missing-cell ratio above which a column's
	// missing-value issue escalates from medium to high severity.
	HighMissingRatio float64 `yaml:"high_missing_ratio" envconfig:"HIGH_MISSING_RATIO" default:"0.1"`
}

// RolesConfig holds the keyword-hint tables for KPI column-role detection,
// matched case-insensitively as substrings in hint-list order.
type RolesConfig struct {
	SalesHints    []string `yaml:"sales_hints" envconfig:"SALES_HINTS" default:"total,amount,revenue,sales,price,value,income"`
	QuantityHints []string `yaml:"quantity_hints" envconfig:"QUANTITY_HINTS" default:"quantity,qty,count,units,items"`
	CustomerHints []string `yaml:"customer_hints" envconfig:"CUSTOMER_HINTS" default:"customer,client,buyer,name,user"`
	DateHints     []string `yaml:"date_hints" envconfig:"DATE_HINTS" default:"date,time,day,created,ordered"`
	CostHints     []string `yaml:"cost_hints" envconfig:"COST_HINTS" default:"cost,expense,cogs,spend"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"json"`
}

// Load loads configuration from environment variables with defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("TABLEDASH", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile loads configuration from a YAML file, with environment
// variables applied first so the file acts as an overlay.
func LoadFromFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration without consulting the
// environment. Engines fall back to it when handed a zero config.
func Default() *Config {
	return &Config{
		Parser: ParserConfig{MaxFileSize: 10 << 20},
		Inference: InferenceConfig{
			SampleSize:        100,
			CategoryMaxUnique: 30,
			NameKeywords: []string{
				"customer", "client", "name", "user", "buyer", "seller",
				"vendor", "supplier", "person", "employee", "staff", "agent",
			},
		},
		Quality: QualityConfig{
			MissingVocabulary: []string{
				"null", "n/a", "na", "nan", "none", "-", ".", "undefined",
				"missing", "#n/a", "#na", "(blank)", "blank", "(empty)", "empty",
			},
			HighMissingRatio: 0.1,
		},
		Roles: RolesConfig{
			SalesHints:    []string{"total", "amount", "revenue", "sales", "price", "value", "income"},
			QuantityHints: []string{"quantity", "qty", "count", "units", "items"},
			CustomerHints: []string{"customer", "client", "buyer", "name", "user"},
			DateHints:     []string{"date", "time", "day", "created", "ordered"},
			CostHints:     []string{"cost", "expense", "cogs", "spend"},
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Parser.MaxFileSize <= 0 {
		return fmt.Errorf("parser.max_file_size must be positive, got %d", c.Parser.MaxFileSize)
	}
	if c.Inference.SampleSize <= 0 {
		return fmt.Errorf("inference.sample_size must be positive, got %d", c.Inference.SampleSize)
	}
	if c.Inference.CategoryMaxUnique <= 0 {
		return fmt.Errorf("inference.category_max_unique must be positive, got %d", c.Inference.CategoryMaxUnique)
	}
	if c.Quality.HighMissingRatio < 0 || c.Quality.HighMissingRatio > 1 {
		return fmt.Errorf("quality.high_missing_ratio must be in [0,1], got %f", c.Quality.HighMissingRatio)
	}
	return nil
}
