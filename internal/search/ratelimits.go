package search

import (
	"os"
	"strings"
	"sync"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

// Per-provider requests-per-minute limits. Overridable via a yaml file
// pointed at by SEARCH_LIMITS_PATH:
//
//	rate_limits:
//	  default_rpm: 30
//	  provider_overrides:
//	    exa: 25
type limitsConfig struct {
	RateLimits struct {
		DefaultRPM        int            `yaml:"default_rpm"`
		ProviderOverrides map[string]int `yaml:"provider_overrides"`
	} `yaml:"rate_limits"`
}

var builtInProviderRPM = map[string]int{
	"exa":    25,
	"tavily": 60,
	"brave":  50,
	"serper": 50,
}

const defaultRPM = 30

var (
	limitsMu     sync.Mutex
	limitsLoaded *limitsConfig
)

func loadLimits() *limitsConfig {
	limitsMu.Lock()
	defer limitsMu.Unlock()
	if limitsLoaded != nil {
		return limitsLoaded
	}
	cfg := &limitsConfig{}
	if path := os.Getenv("SEARCH_LIMITS_PATH"); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			var tmp limitsConfig
			if yaml.Unmarshal(data, &tmp) == nil {
				cfg = &tmp
			}
		}
	}
	limitsLoaded = cfg
	return cfg
}

// RPMForProvider returns the requests-per-minute budget for a provider,
// preferring file overrides, then built-in provider limits, then the default.
func RPMForProvider(provider string) int {
	provider = strings.ToLower(strings.TrimSpace(provider))
	cfg := loadLimits()
	if rpm, ok := cfg.RateLimits.ProviderOverrides[provider]; ok && rpm > 0 {
		return rpm
	}
	if rpm, ok := builtInProviderRPM[provider]; ok {
		return rpm
	}
	if cfg.RateLimits.DefaultRPM > 0 {
		return cfg.RateLimits.DefaultRPM
	}
	return defaultRPM
}

// LimiterForProvider builds a token-bucket limiter from the provider's RPM
// budget, with a small burst to absorb fan-out spikes.
func LimiterForProvider(provider string) *rate.Limiter {
	rpm := RPMForProvider(provider)
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), max(rpm/10, 1))
}

// resetLimitsForTest clears the cached limits file. Test use only.
func resetLimitsForTest() {
	limitsMu.Lock()
	defer limitsMu.Unlock()
	limitsLoaded = nil
}
