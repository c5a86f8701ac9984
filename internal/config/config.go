package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/san-kum/fdgsim/internal/dynamo"
	"github.com/san-kum/fdgsim/internal/force"
	"github.com/san-kum/fdgsim/internal/sim"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Dimensions       int         `yaml:"dimensions" toml:"dimensions"`
	Dt               float64     `yaml:"dt" toml:"dt"`
	Damping          float64     `yaml:"damping" toml:"damping"`
	Repulsion        float64     `yaml:"repulsion" toml:"repulsion"`
	Attraction       float64     `yaml:"attraction" toml:"attraction"`
	IdealLength      float64     `yaml:"ideal_length" toml:"ideal_length"`
	Centering        float64     `yaml:"centering" toml:"centering"`
	CenterOnCentroid bool        `yaml:"center_on_centroid" toml:"center_on_centroid"`
	Drag             float64     `yaml:"drag" toml:"drag"`
	MinDistance      float64     `yaml:"min_distance" toml:"min_distance"`
	NodeStartSize    float64     `yaml:"node_start_size" toml:"node_start_size"`
	Seed             int64       `yaml:"seed" toml:"seed"`
	Run              RunSettings `yaml:"run" toml:"run"`
}

type RunSettings struct {
	MaxSteps    int     `yaml:"max_steps" toml:"max_steps"`
	Epsilon     float64 `yaml:"epsilon" toml:"epsilon"`
	SettleSteps int     `yaml:"settle_steps" toml:"settle_steps"`
}

func DefaultConfig() *Config {
	p := sim.DefaultParameters()
	rc := sim.DefaultRunConfig()
	return &Config{
		Dimensions:    int(p.Dimensions),
		Dt:            p.Dt,
		Damping:       p.Damping,
		Repulsion:     p.Force.Repulsion,
		Attraction:    p.Force.Attraction,
		IdealLength:   p.Force.IdealLength,
		Centering:     p.Force.Centering,
		MinDistance:   p.Force.MinDistance,
		NodeStartSize: p.NodeStartSize,
		Seed:          p.Seed,
		Run: RunSettings{
			MaxSteps:    rc.MaxSteps,
			Epsilon:     rc.Epsilon,
			SettleSteps: rc.SettleSteps,
		},
	}
}

type format int

const (
	formatYAML format = iota
	formatTOML
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".toml":
		return formatTOML, nil
	default:
		return 0, fmt.Errorf("config %s: unsupported extension %q", path, filepath.Ext(path))
	}
}

// Load reads a YAML or TOML file on top of DefaultConfig and validates the
// result.
func Load(path string) (*Config, error) {
	f, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	switch f {
	case formatTOML:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	f, err := formatOf(path)
	if err != nil {
		return err
	}

	var data []byte
	switch f {
	case formatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
		data = buf.Bytes()
	default:
		data, err = yaml.Marshal(cfg)
		if err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.Parameters().Validate(); err != nil {
		return err
	}
	if c.Run.MaxSteps <= 0 {
		return &dynamo.ConfigError{Field: "max_steps", Value: float64(c.Run.MaxSteps), Reason: "must be positive"}
	}
	if c.Run.Epsilon < 0 || c.Run.SettleSteps < 0 {
		return &dynamo.ConfigError{Field: "epsilon", Value: c.Run.Epsilon, Reason: "settle settings must be non-negative"}
	}
	return nil
}

func (c *Config) Parameters() sim.Parameters {
	return sim.Parameters{
		Dimensions: dynamo.Dimensions(c.Dimensions),
		Dt:         c.Dt,
		Damping:    c.Damping,
		Force: force.Params{
			Repulsion:        c.Repulsion,
			Attraction:       c.Attraction,
			IdealLength:      c.IdealLength,
			Centering:        c.Centering,
			CenterOnCentroid: c.CenterOnCentroid,
			Damping:          c.Drag,
			MinDistance:      c.MinDistance,
			Dimensions:       dynamo.Dimensions(c.Dimensions),
		},
		NodeStartSize: c.NodeStartSize,
		Seed:          c.Seed,
	}
}

func (c *Config) RunConfig() sim.RunConfig {
	return sim.RunConfig{
		MaxSteps:    c.Run.MaxSteps,
		Epsilon:     c.Run.Epsilon,
		SettleSteps: c.Run.SettleSteps,
		KeepHistory: true,
	}
}
