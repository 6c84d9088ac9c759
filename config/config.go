// Package config loads declarative pool-set definitions for the manager.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/coachpo/repool/errs"
)

// Pool declares one named pool and its pre-built capacity.
type Pool struct {
	Name     string `yaml:"name" json:"name"`
	Capacity int    `yaml:"capacity" json:"capacity"`
}

// Config is the root of a pool-set definition document.
type Config struct {
	Pools []Pool `yaml:"pools" json:"pools"`
}

// Load reads a pool-set definition from path, choosing the decoder by file
// extension: .yaml, .yml, or .json.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read pool config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(raw)
	case ".json":
		return ParseJSON(raw)
	default:
		return Config{}, errs.New("config", errs.CodeInvalid,
			errs.WithMessage(fmt.Sprintf("unsupported config extension %q", filepath.Ext(path))))
	}
}

// ParseYAML decodes and validates a YAML pool-set definition.
func ParseYAML(raw []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, errs.New("config", errs.CodeInvalid,
			errs.WithMessage("malformed yaml document"), errs.WithCause(err))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseJSON decodes and validates a JSON pool-set definition.
func ParseJSON(raw []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, errs.New("config", errs.CodeInvalid,
			errs.WithMessage("malformed json document"), errs.WithCause(err))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks pool names and capacities, rejecting duplicates.
func (c Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Pools))
	for _, p := range c.Pools {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return errs.New("config", errs.CodeInvalid, errs.WithMessage("pool name must be non-empty"))
		}
		if p.Capacity <= 0 {
			return errs.New("config", errs.CodeInvalid, errs.WithPool(name),
				errs.WithMessage("capacity must be positive"))
		}
		if _, dup := seen[name]; dup {
			return errs.New("config", errs.CodeConflict, errs.WithPool(name),
				errs.WithMessage("duplicate pool name"))
		}
		seen[name] = struct{}{}
	}
	return nil
}
