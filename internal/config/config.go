package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"github.com/arbor-research/arbor/internal/llm"
	"github.com/arbor-research/arbor/internal/research"
	"github.com/arbor-research/arbor/internal/search"
	"github.com/arbor-research/arbor/internal/tracing"
)

// Config is the full worker configuration: the research knobs plus the
// service endpoints and observability settings around them. Secrets (API
// keys) come from the environment only, never the file.
type Config struct {
	Research ResearchConfig `mapstructure:"research"`
	Search   search.Config  `mapstructure:"search"`
	LLM      llm.Config     `mapstructure:"llm"`
	Temporal TemporalConfig `mapstructure:"temporal"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Tracing  tracing.Config `mapstructure:"tracing"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type ResearchConfig struct {
	MaxDepth                 int `mapstructure:"max_depth"`
	ResultsPerQuery          int `mapstructure:"results_per_query"`
	FollowUpQuestionsPerNode int `mapstructure:"follow_up_questions_per_node"`
	ConcurrencyLimit         int `mapstructure:"concurrency_limit"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type MetricsConfig struct {
	Port int `mapstructure:"port"`
}

// Load reads the config file from CONFIG_PATH (default ./config/research.yaml
// when present), applies environment overrides, and validates the research
// settings. A missing file is not an error; env and defaults carry the load.
// Defaults fill only keys the file and env leave unset, so an explicit zero
// (e.g. follow_up_questions_per_node: 0) survives loading.
func Load() (*Config, error) {
	var cfg Config

	v := viper.New()
	setDefaults(v)

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "./config/research.yaml"
	}
	v.SetConfigFile(cfgPath)
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(cfgPath); statErr == nil {
			return nil, fmt.Errorf("read config %s: %w", cfgPath, err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := cfg.ResearchSettings().Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("research.max_depth", 2)
	v.SetDefault("research.results_per_query", 5)
	v.SetDefault("research.follow_up_questions_per_node", 2)
	v.SetDefault("research.concurrency_limit", 4)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "arbor-research")
	v.SetDefault("metrics.port", 9095)
	v.SetDefault("search.timeout", 30*time.Second)
	v.SetDefault("llm.timeout", 120*time.Second)
}

// ResearchSettings converts the loaded knobs into the engine's config record.
func (c *Config) ResearchSettings() research.Config {
	return research.Config{
		MaxDepth:                 c.Research.MaxDepth,
		ResultsPerQuery:          c.Research.ResultsPerQuery,
		FollowUpQuestionsPerNode: c.Research.FollowUpQuestionsPerNode,
		ConcurrencyLimit:         c.Research.ConcurrencyLimit,
	}
}

func applyEnvOverrides(cfg *Config) {
	setInt := func(dst *int, key string) {
		if s := os.Getenv(key); s != "" {
			if n, err := strconv.Atoi(s); err == nil {
				*dst = n
			}
		}
	}
	setStr := func(dst *string, key string) {
		if s := os.Getenv(key); s != "" {
			*dst = s
		}
	}

	setInt(&cfg.Research.MaxDepth, "RESEARCH_MAX_DEPTH")
	setInt(&cfg.Research.ResultsPerQuery, "RESEARCH_RESULTS_PER_QUERY")
	setInt(&cfg.Research.FollowUpQuestionsPerNode, "RESEARCH_FOLLOWUP_QUESTIONS")
	setInt(&cfg.Research.ConcurrencyLimit, "RESEARCH_CONCURRENCY_LIMIT")

	setStr(&cfg.Search.BaseURL, "SEARCH_BASE_URL")
	setStr(&cfg.Search.APIKey, "SEARCH_API_KEY")
	setStr(&cfg.Search.Provider, "SEARCH_PROVIDER")
	setStr(&cfg.LLM.BaseURL, "LLM_SERVICE_URL")
	setStr(&cfg.LLM.Model, "LLM_MODEL")

	setStr(&cfg.Temporal.HostPort, "TEMPORAL_HOST_PORT")
	setStr(&cfg.Temporal.Namespace, "TEMPORAL_NAMESPACE")
	setStr(&cfg.Temporal.TaskQueue, "TEMPORAL_TASK_QUEUE")
	setStr(&cfg.Redis.URL, "REDIS_URL")
	setInt(&cfg.Metrics.Port, "METRICS_PORT")
	setStr(&cfg.Tracing.OTLPEndpoint, "OTLP_ENDPOINT")
	if s := os.Getenv("TRACING_ENABLED"); s != "" {
		cfg.Tracing.Enabled = s == "1" || s == "true"
	}
}
