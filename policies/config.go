package policies

import "fmt"

// Config contains the hyper parameters of both solvers
type Config struct {
	Discount     float64 `yaml:"gamma"`
	LearningRate float64 `yaml:"alpha"`
	// random steps played before each value iteration sweep
	RandomSteps int `yaml:"random_steps"`
}

// DefaultConfig returns the reference tuning
func DefaultConfig() *Config {
	return &Config{
		Discount:     0.9,
		LearningRate: 0.1,
		RandomSteps:  100,
	}
}

// Validate ensures that the Config is valid
func (c *Config) Validate() error {
	if c.Discount < 0 || c.Discount > 1 {
		return fmt.Errorf("discount must be in [0, 1], got %v", c.Discount)
	}
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return fmt.Errorf("learning rate must be in (0, 1], got %v", c.LearningRate)
	}
	if c.RandomSteps <= 0 {
		return fmt.Errorf("random steps must be positive, got %d", c.RandomSteps)
	}
	return nil
}
