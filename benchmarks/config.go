package benchmarks

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zeu5/tabular-rl/grid"
	"github.com/zeu5/tabular-rl/policies"
	"github.com/zeu5/tabular-rl/sinks"
	"github.com/zeu5/tabular-rl/types"
	"gopkg.in/yaml.v3"
)

// FileConfig is the layout of the --config file
type FileConfig struct {
	Agent       policies.Config         `yaml:"agent"`
	Convergence types.ConvergenceConfig `yaml:"convergence"`
	Lake        grid.Config             `yaml:"lake"`
	Redis       sinks.RedisConfig       `yaml:"redis"`

	Seed   uint64 `yaml:"seed"`
	Runs   int    `yaml:"runs"`
	Traces int    `yaml:"traces"`
	Save   string `yaml:"save"`
	Serve  string `yaml:"serve"`
}

// DefaultFileConfig mirrors the flag defaults
func DefaultFileConfig() *FileConfig {
	return &FileConfig{
		Agent:       *policies.DefaultConfig(),
		Convergence: *types.DefaultConvergenceConfig(),
		Lake:        *grid.DefaultConfig(),
		Redis:       sinks.RedisConfig{Prefix: "tabular-rl"},
		Seed:        0,
		Runs:        1,
		Traces:      10,
		Save:        "results",
	}
}

func (c *FileConfig) Validate() error {
	if err := c.Agent.Validate(); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := c.Convergence.Validate(); err != nil {
		return fmt.Errorf("convergence: %w", err)
	}
	if err := c.Lake.Validate(); err != nil {
		return fmt.Errorf("lake: %w", err)
	}
	if c.Runs <= 0 {
		return fmt.Errorf("runs must be positive, got %d", c.Runs)
	}
	if c.Traces < 0 {
		return fmt.Errorf("traces cannot be negative, got %d", c.Traces)
	}
	return nil
}

// ParseFileConfig decodes YAML on top of the defaults
func ParseFileConfig(bs []byte) (*FileConfig, error) {
	config := DefaultFileConfig()
	if err := yaml.Unmarshal(bs, config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return config, nil
}

// loadConfig reads the --config file if any and applies the flags set on the command line
func loadConfig(cmd *cobra.Command) (*FileConfig, error) {
	config := DefaultFileConfig()
	if configPath != "" {
		bs, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if config, err = ParseFileConfig(bs); err != nil {
			return nil, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("gamma") || configPath == "" {
		config.Agent.Discount = gamma
	}
	if changed("alpha") || configPath == "" {
		config.Agent.LearningRate = alpha
	}
	if changed("random-steps") || configPath == "" {
		config.Agent.RandomSteps = randomSteps
	}
	if changed("test-episodes") || configPath == "" {
		config.Convergence.TestEpisodes = testEpisodes
	}
	if changed("threshold") || configPath == "" {
		config.Convergence.Threshold = threshold
	}
	if changed("max-iterations") || configPath == "" {
		config.Convergence.MaxIterations = maxIterations
	}
	if changed("map") || configPath == "" {
		config.Lake.Map = lakeMap
		if changed("map") {
			config.Lake.Rows = nil
		}
	}
	if changed("slippery") || configPath == "" {
		config.Lake.Slippery = slippery
	}
	if changed("max-steps") || configPath == "" {
		config.Lake.MaxSteps = maxSteps
	}
	if changed("redis") || configPath == "" {
		config.Redis.Addr = redisAddr
	}
	if changed("seed") || configPath == "" {
		config.Seed = seed
	}
	if changed("runs") || configPath == "" {
		config.Runs = runs
	}
	if changed("traces") || configPath == "" {
		config.Traces = traces
	}
	if changed("save") || configPath == "" {
		config.Save = saveFile
	}
	if changed("serve") || configPath == "" {
		config.Serve = serveAddr
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
