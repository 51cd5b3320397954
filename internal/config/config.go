// Package config loads application configuration from file and environment
// and owns global logger initialization.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Ranking RankingConfig `yaml:"ranking" mapstructure:"ranking"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the ranking API server.
type ServerConfig struct {
	Port      int     `yaml:"port" mapstructure:"port"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// RankingConfig holds the fixed constants of the composite ranking engine.
type RankingConfig struct {
	LookbackDays    int  `yaml:"lookback_days" mapstructure:"lookback_days"`
	CacheTTLMinutes int  `yaml:"cache_ttl_minutes" mapstructure:"cache_ttl_minutes"`
	CohortByLevel   bool `yaml:"cohort_by_level" mapstructure:"cohort_by_level"`
	MinEventSamples int  `yaml:"min_event_samples" mapstructure:"min_event_samples"`

	// Performance modifier: composite percentile mapped linearly onto
	// [-PerfMaxMagnitude, +PerfMaxMagnitude], 50th percentile = 0.
	PerfMaxMagnitude float64 `yaml:"perf_max_magnitude" mapstructure:"perf_max_magnitude"`

	// Trend adjustment: relative change between two equal windows, saturating
	// at TrendSaturationPct percent change.
	TrendMaxMagnitude  float64 `yaml:"trend_max_magnitude" mapstructure:"trend_max_magnitude"`
	TrendSaturationPct float64 `yaml:"trend_saturation_pct" mapstructure:"trend_saturation_pct"`
	TrendWindowDays    int     `yaml:"trend_window_days" mapstructure:"trend_window_days"`
	MinTrendSamples    int     `yaml:"min_trend_samples" mapstructure:"min_trend_samples"`

	// Age adjustment: asymmetric by design. Being young for a level is
	// rewarded more generously than being old is penalized.
	YoungSlope float64 `yaml:"young_slope" mapstructure:"young_slope"`
	YoungCap   float64 `yaml:"young_cap" mapstructure:"young_cap"`
	OldSlope   float64 `yaml:"old_slope" mapstructure:"old_slope"`
	OldCap     float64 `yaml:"old_cap" mapstructure:"old_cap"`

	// Aggregation.
	PerfWeight         float64 `yaml:"perf_weight" mapstructure:"perf_weight"`
	TrendWeight        float64 `yaml:"trend_weight" mapstructure:"trend_weight"`
	AgeWeight          float64 `yaml:"age_weight" mapstructure:"age_weight"`
	TotalAdjustmentCap float64 `yaml:"total_adjustment_cap" mapstructure:"total_adjustment_cap"`

	// TierBoundaries are inclusive rank cutoffs: rank <= boundary[i] puts a
	// prospect in tier i+1; beyond the last boundary is the final tier.
	TierBoundaries []int `yaml:"tier_boundaries" mapstructure:"tier_boundaries"`

	// AgeBenchmarks map level names to the expected age at that level.
	AgeBenchmarks map[string]float64 `yaml:"age_benchmarks" mapstructure:"age_benchmarks"`

	// WeightsFile optionally overrides the per-position metric weight tables.
	WeightsFile string `yaml:"weights_file" mapstructure:"weights_file"`
}

// Lookback returns the observation lookback window as a duration.
func (c RankingConfig) Lookback() time.Duration {
	return time.Duration(c.LookbackDays) * 24 * time.Hour
}

// CacheTTL returns the snapshot validity window.
func (c RankingConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// TrendWindow returns the length of one trend sub-window.
func (c RankingConfig) TrendWindow() time.Duration {
	return time.Duration(c.TrendWindowDays) * 24 * time.Hour
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROSPECTRANK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "prospect-rank.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 25.0)
	v.SetDefault("server.rate_burst", 50)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("ranking.lookback_days", 365)
	v.SetDefault("ranking.cache_ttl_minutes", 15)
	v.SetDefault("ranking.cohort_by_level", true)
	v.SetDefault("ranking.min_event_samples", 5)
	v.SetDefault("ranking.perf_max_magnitude", 10.0)
	v.SetDefault("ranking.trend_max_magnitude", 5.0)
	v.SetDefault("ranking.trend_saturation_pct", 25.0)
	v.SetDefault("ranking.trend_window_days", 30)
	v.SetDefault("ranking.min_trend_samples", 3)
	v.SetDefault("ranking.young_slope", 1.5)
	v.SetDefault("ranking.young_cap", 5.0)
	v.SetDefault("ranking.old_slope", 1.0)
	v.SetDefault("ranking.old_cap", 3.0)
	v.SetDefault("ranking.perf_weight", 1.0)
	v.SetDefault("ranking.trend_weight", 1.0)
	v.SetDefault("ranking.age_weight", 1.0)
	v.SetDefault("ranking.total_adjustment_cap", 10.0)
	v.SetDefault("ranking.tier_boundaries", []int{10, 35, 75})
	v.SetDefault("ranking.age_benchmarks", map[string]float64{
		"junior_b":  17.0,
		"junior_a":  18.0,
		"ncaa":      21.0,
		"pro_minor": 24.0,
	})

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

// Validate checks that the ranking constants are internally consistent.
func (c RankingConfig) Validate() error {
	var errs []string
	if c.LookbackDays <= 0 {
		errs = append(errs, "lookback_days must be > 0")
	}
	if c.CacheTTLMinutes <= 0 {
		errs = append(errs, "cache_ttl_minutes must be > 0")
	}
	if c.MinEventSamples < 1 {
		errs = append(errs, "min_event_samples must be >= 1")
	}
	if c.PerfMaxMagnitude <= 0 {
		errs = append(errs, "perf_max_magnitude must be > 0")
	}
	if c.TrendMaxMagnitude < 0 {
		errs = append(errs, "trend_max_magnitude must be >= 0")
	}
	if c.TrendSaturationPct <= 0 {
		errs = append(errs, "trend_saturation_pct must be > 0")
	}
	if c.TrendWindowDays <= 0 {
		errs = append(errs, "trend_window_days must be > 0")
	}
	if c.YoungSlope < 0 || c.OldSlope < 0 || c.YoungCap < 0 || c.OldCap < 0 {
		errs = append(errs, "age slopes and caps must be >= 0")
	}
	if c.TotalAdjustmentCap <= 0 {
		errs = append(errs, "total_adjustment_cap must be > 0")
	}
	for i := 1; i < len(c.TierBoundaries); i++ {
		if c.TierBoundaries[i] <= c.TierBoundaries[i-1] {
			errs = append(errs, "tier_boundaries must be strictly increasing")
			break
		}
	}
	if len(errs) > 0 {
		return eris.Errorf("config: ranking validation failed: %s", strings.Join(errs, "; "))
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
