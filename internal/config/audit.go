package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/propworks/rentaudit/internal/canonical"
	"github.com/propworks/rentaudit/internal/rules"
	"github.com/spf13/viper"
)

// AuditConfig bundles every audit tunable: detection thresholds, the fee
// template, and the category mapping table.
type AuditConfig struct {
	Rules    rules.Config               `mapstructure:"rules"`
	Mappings canonical.CategoryMappings `mapstructure:"mappings"`
}

// DefaultAuditConfig returns the built-in tunables used when no audit.yml is
// present, keeping the system functional without external config.
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		Rules:    rules.DefaultConfig(),
		Mappings: canonical.DefaultCategoryMappings(),
	}
}

// AuditConfigHolder exposes the current AuditConfig behind an atomic so hot
// reloads never race readers mid-pass.
type AuditConfigHolder struct {
	current atomic.Value // holds AuditConfig
}

// NewAuditConfigHolder reads audit.yml from the configured search paths,
// falling back to defaults when absent, and watches the file for changes.
func NewAuditConfigHolder(cfg Config) (*AuditConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("audit")
	v.SetConfigType("yml")
	for _, path := range cfg.AuditConfigPaths {
		v.AddConfigPath(path)
	}

	v.SetEnvPrefix("RENTAUDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultAuditConfig()
	// Only scalar defaults go through viper; the fee template and mapping
	// tables are filled in Go after unmarshal so their key casing survives.
	v.SetDefault("audit.rules.lease_cliff_threshold", defaults.Rules.LeaseCliffThreshold)
	v.SetDefault("audit.rules.excessive_concession_threshold", defaults.Rules.ExcessiveConcessionThreshold)
	v.SetDefault("audit.rules.fee_tolerance", defaults.Rules.FeeTolerance)

	watch := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// No config file: run on defaults, nothing to watch.
		watch = false
	}

	loaded, err := unmarshalAuditConfig(v)
	if err != nil {
		return nil, err
	}

	holder := &AuditConfigHolder{}
	holder.current.Store(loaded)

	if watch {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			updated, err := unmarshalAuditConfig(v)
			if err != nil {
				log.Printf("[audit-config] reload ignored: %v", err)
				return
			}
			holder.current.Store(updated)
			log.Printf("[audit-config] reloaded from %s", e.Name)
		})
	}

	return holder, nil
}

// Get returns the current audit configuration.
func (h *AuditConfigHolder) Get() AuditConfig {
	return h.current.Load().(AuditConfig)
}

func unmarshalAuditConfig(v *viper.Viper) (AuditConfig, error) {
	var file struct {
		Audit AuditConfig `mapstructure:"audit"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return AuditConfig{}, err
	}
	cfg := file.Audit
	if cfg.Mappings.IsZero() {
		cfg.Mappings = canonical.DefaultCategoryMappings()
	}
	if len(cfg.Rules.FeeTemplate) == 0 {
		cfg.Rules.FeeTemplate = rules.DefaultFeeTemplate()
	} else {
		cfg.Rules.FeeTemplate = rules.NormalizeFeeTemplate(cfg.Rules.FeeTemplate)
	}
	if err := validateAuditConfig(cfg); err != nil {
		return AuditConfig{}, err
	}
	return cfg, nil
}

func validateAuditConfig(cfg AuditConfig) error {
	if cfg.Rules.LeaseCliffThreshold <= 0 || cfg.Rules.LeaseCliffThreshold >= 1 {
		return errors.New("audit.rules.lease_cliff_threshold must be in (0, 1)")
	}
	if cfg.Rules.ExcessiveConcessionThreshold <= 0 {
		return errors.New("audit.rules.excessive_concession_threshold must be positive")
	}
	if cfg.Rules.FeeTolerance < 0 {
		return errors.New("audit.rules.fee_tolerance cannot be negative")
	}
	return nil
}
