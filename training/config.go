package training

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FitConfig holds the settings of a full fit run. Zero values are filled
// with the defaults from DefaultFitConfig before use.
type FitConfig struct {
	Epochs    int  `yaml:"epochs"`
	BatchSize int  `yaml:"batch_size"`
	Shuffle   bool `yaml:"shuffle"`
	Verbose   bool `yaml:"verbose"`

	ESMetric   MetricName `yaml:"es_metric"`
	ESPatience int        `yaml:"es_patience"`

	LRDecayRate float64    `yaml:"lr_decay"`
	LRPatience  int        `yaml:"lr_patience"`
	LRMetric    MetricName `yaml:"lr_metric"`
}

// DefaultFitConfig returns the canonical fit settings.
func DefaultFitConfig() FitConfig {
	return FitConfig{
		Epochs:      100,
		BatchSize:   128,
		Shuffle:     true,
		Verbose:     true,
		ESMetric:    AUROC,
		ESPatience:  10,
		LRDecayRate: 0.3,
		LRPatience:  3,
		LRMetric:    AUROC,
	}
}

// LoadFitConfig reads a YAML fit configuration. Absent keys keep their
// defaults; the result is validated before being returned.
func LoadFitConfig(path string) (FitConfig, error) {
	cfg := DefaultFitConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read fit config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse fit config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// withDefaults fills zero-valued fields from DefaultFitConfig. Shuffle and
// Verbose are left as given: false is a meaningful setting for both.
func (c FitConfig) withDefaults() FitConfig {
	defaults := DefaultFitConfig()
	if c.Epochs == 0 {
		c.Epochs = defaults.Epochs
	}
	if c.BatchSize == 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.ESMetric == "" {
		c.ESMetric = defaults.ESMetric
	}
	if c.ESPatience == 0 {
		c.ESPatience = defaults.ESPatience
	}
	if c.LRDecayRate == 0 {
		c.LRDecayRate = defaults.LRDecayRate
	}
	if c.LRPatience == 0 {
		c.LRPatience = defaults.LRPatience
	}
	if c.LRMetric == "" {
		c.LRMetric = defaults.LRMetric
	}
	return c
}

// Validate checks that every setting is usable.
func (c FitConfig) Validate() error {
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be positive, got %d", c.Epochs)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if !c.ESMetric.Valid() {
		return fmt.Errorf("unrecognized es_metric %q", c.ESMetric)
	}
	if c.ESPatience <= 0 {
		return fmt.Errorf("es_patience must be positive, got %d", c.ESPatience)
	}
	if c.LRDecayRate <= 0 || c.LRDecayRate >= 1 {
		return fmt.Errorf("lr_decay must be in (0, 1), got %f", c.LRDecayRate)
	}
	if c.LRPatience <= 0 {
		return fmt.Errorf("lr_patience must be positive, got %d", c.LRPatience)
	}
	if !c.LRMetric.Valid() {
		return fmt.Errorf("unrecognized lr_metric %q", c.LRMetric)
	}
	return nil
}
