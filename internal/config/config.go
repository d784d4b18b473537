package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Scorer     ScorerConfig     `yaml:"scorer" mapstructure:"scorer"`
	Benchmark  BenchmarkConfig  `yaml:"benchmark" mapstructure:"benchmark"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Retry      RetryConfig      `yaml:"retry" mapstructure:"retry"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// CategoryWeights is the contribution of each category to the overall score.
type CategoryWeights struct {
	Financial   float64 `yaml:"financial" mapstructure:"financial" json:"financial"`
	Operational float64 `yaml:"operational" mapstructure:"operational" json:"operational"`
	Strategic   float64 `yaml:"strategic" mapstructure:"strategic" json:"strategic"`
	Risk        float64 `yaml:"risk" mapstructure:"risk" json:"risk"`
}

// RiskMultipliers scale the overall score per risk rating.
type RiskMultipliers struct {
	Low      float64 `yaml:"low" mapstructure:"low" json:"low"`
	Medium   float64 `yaml:"medium" mapstructure:"medium" json:"medium"`
	High     float64 `yaml:"high" mapstructure:"high" json:"high"`
	Critical float64 `yaml:"critical" mapstructure:"critical" json:"critical"`
}

// ScorerConfig configures deal scoring. Defaults live in scorer.DefaultScorerConfig.
type ScorerConfig struct {
	Weights         CategoryWeights `yaml:"weights" mapstructure:"weights" json:"weights"`
	RiskMultipliers RiskMultipliers `yaml:"risk_multipliers" mapstructure:"risk_multipliers" json:"risk_multipliers"`

	// Deal size sweet spot, in currency units.
	MinDealSize float64 `yaml:"min_deal_size" mapstructure:"min_deal_size" json:"min_deal_size"`
	MaxDealSize float64 `yaml:"max_deal_size" mapstructure:"max_deal_size" json:"max_deal_size"`

	// Verdict thresholds applied to the risk-adjusted score.
	StrongBuyThreshold float64 `yaml:"strong_buy_threshold" mapstructure:"strong_buy_threshold" json:"strong_buy_threshold"`
	BuyThreshold       float64 `yaml:"buy_threshold" mapstructure:"buy_threshold" json:"buy_threshold"`
	HoldThreshold      float64 `yaml:"hold_threshold" mapstructure:"hold_threshold" json:"hold_threshold"`
	AdvisoryThreshold  float64 `yaml:"advisory_threshold" mapstructure:"advisory_threshold" json:"advisory_threshold"`
	StrategicHighWater float64 `yaml:"strategic_high_water" mapstructure:"strategic_high_water" json:"strategic_high_water"`

	MinConfidence float64 `yaml:"min_confidence" mapstructure:"min_confidence" json:"min_confidence"`
	MaxConfidence float64 `yaml:"max_confidence" mapstructure:"max_confidence" json:"max_confidence"`

	// TablesFile optionally points at a YAML overlay for the sector/stage/geography tables.
	TablesFile string `yaml:"tables_file" mapstructure:"tables_file" json:"tables_file,omitempty"`
}

// BenchmarkConfig configures industry benchmarking.
type BenchmarkConfig struct {
	PeerPopulation    int     `yaml:"peer_population" mapstructure:"peer_population"`
	RankMultiplier    float64 `yaml:"rank_multiplier" mapstructure:"rank_multiplier"`
	StrengthThreshold float64 `yaml:"strength_threshold" mapstructure:"strength_threshold"`
	GapThreshold      float64 `yaml:"gap_threshold" mapstructure:"gap_threshold"`
	LowerFloor        float64 `yaml:"lower_floor" mapstructure:"lower_floor"`
	UpperCeiling      float64 `yaml:"upper_ceiling" mapstructure:"upper_ceiling"`
	ReferenceFile     string  `yaml:"reference_file" mapstructure:"reference_file"`
}

// BatchConfig configures concurrent portfolio scoring.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// RetryConfig configures retries of idempotent Salesforce and Notion calls.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// SalesforceConfig holds Salesforce JWT auth settings and the Opportunity field mapping.
type SalesforceConfig struct {
	ClientID    string            `yaml:"client_id" mapstructure:"client_id"`
	Username    string            `yaml:"username" mapstructure:"username"`
	KeyPath     string            `yaml:"key_path" mapstructure:"key_path"`
	LoginURL    string            `yaml:"login_url" mapstructure:"login_url"`
	RateLimit   float64           `yaml:"rate_limit" mapstructure:"rate_limit"`
	ScoreFields map[string]string `yaml:"score_fields" mapstructure:"score_fields"`
}

// NotionConfig holds Notion API credentials for benchmark publishing.
type NotionConfig struct {
	Token       string `yaml:"token" mapstructure:"token"`
	BenchmarkDB string `yaml:"benchmark_db" mapstructure:"benchmark_db"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DEALSCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "dealscore.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit_rps", 20)
	v.SetDefault("server.rate_limit_burst", 40)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("batch.max_concurrent", 8)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 500)
	v.SetDefault("retry.max_backoff_ms", 30000)

	v.SetDefault("scorer.weights.financial", 0.35)
	v.SetDefault("scorer.weights.operational", 0.25)
	v.SetDefault("scorer.weights.strategic", 0.20)
	v.SetDefault("scorer.weights.risk", 0.20)
	v.SetDefault("scorer.risk_multipliers.low", 1.05)
	v.SetDefault("scorer.risk_multipliers.medium", 1.00)
	v.SetDefault("scorer.risk_multipliers.high", 0.90)
	v.SetDefault("scorer.risk_multipliers.critical", 0.75)
	v.SetDefault("scorer.min_deal_size", 20_000_000)
	v.SetDefault("scorer.max_deal_size", 100_000_000)
	v.SetDefault("scorer.strong_buy_threshold", 80)
	v.SetDefault("scorer.buy_threshold", 65)
	v.SetDefault("scorer.hold_threshold", 45)
	v.SetDefault("scorer.advisory_threshold", 60)
	v.SetDefault("scorer.strategic_high_water", 80)
	v.SetDefault("scorer.min_confidence", 0.50)
	v.SetDefault("scorer.max_confidence", 0.99)

	v.SetDefault("benchmark.peer_population", 487)
	v.SetDefault("benchmark.rank_multiplier", 5)
	v.SetDefault("benchmark.strength_threshold", 75)
	v.SetDefault("benchmark.gap_threshold", 50)
	v.SetDefault("benchmark.lower_floor", 0.7)
	v.SetDefault("benchmark.upper_ceiling", 1.5)

	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("salesforce.rate_limit", 5)
}

// Validate checks that the configuration needed by the named subsystem is present.
func (c *Config) Validate(subsystem string) error {
	var missing []string
	switch subsystem {
	case "store":
		if c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
			return eris.Errorf("config: store.driver must be sqlite or postgres (got %q)", c.Store.Driver)
		}
		if c.Store.DatabaseURL == "" {
			missing = append(missing, "store.database_url")
		}
	case "salesforce":
		if c.Salesforce.ClientID == "" {
			missing = append(missing, "salesforce.client_id")
		}
		if c.Salesforce.Username == "" {
			missing = append(missing, "salesforce.username")
		}
		if c.Salesforce.KeyPath == "" {
			missing = append(missing, "salesforce.key_path")
		}
	case "notion":
		if c.Notion.Token == "" {
			missing = append(missing, "notion.token")
		}
		if c.Notion.BenchmarkDB == "" {
			missing = append(missing, "notion.benchmark_db")
		}
	default:
		return eris.Errorf("config: unknown subsystem %q", subsystem)
	}
	if len(missing) > 0 {
		return eris.Errorf("config: %s requires %s", subsystem, strings.Join(missing, ", "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
