package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/snnyvrz/locallibrary/internal/circulation"
)

// Policy returns the circulation rules. Values in the policy file override
// the defaults; keys it leaves out keep them.
func (c *Config) Policy() (circulation.Policy, error) {
	policy := circulation.DefaultPolicy()
	if c.PolicyFile == "" {
		return policy, nil
	}

	var file struct {
		Circulation circulation.Policy `toml:"circulation"`
	}
	file.Circulation = policy
	if err := loadToml(c.PolicyFile, &file); err != nil {
		return circulation.Policy{}, err
	}

	if err := file.Circulation.Validate(); err != nil {
		return circulation.Policy{}, fmt.Errorf("policy %s: %w", c.PolicyFile, err)
	}
	return file.Circulation, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}
