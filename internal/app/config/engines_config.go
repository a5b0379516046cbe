package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	apperrors "whisper-bridge/internal/app/errors"
)

// EnginesConfig is the optional YAML file that configures engines.
//
//	default_engine: whisper_cpp
//	engines:
//	  whisper_cpp:
//	    type: whisper_cpp
//	    enabled: true
//	    settings:
//	      binary_path: /usr/local/bin/whisper-cli
//	  openai:
//	    type: openai
//	    enabled: true
//	    auth:
//	      api_key: ${OPENAI_API_KEY}
type EnginesConfig struct {
	DefaultEngine string                  `yaml:"default_engine"`
	Engines       map[string]EngineConfig `yaml:"engines" validate:"dive"`
}

// EngineConfig represents configuration for a single engine
type EngineConfig struct {
	Type     string                 `yaml:"type" validate:"required"`
	Enabled  bool                   `yaml:"enabled"`
	Auth     map[string]interface{} `yaml:"auth,omitempty"`
	Settings map[string]interface{} `yaml:"settings,omitempty"`
}

var validate = validator.New()

// LoadEnginesConfig loads engine configuration from a YAML file
func LoadEnginesConfig(configPath string) (*EnginesConfig, error) {
	configPath = os.ExpandEnv(configPath)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidConfig, "config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseEnginesConfig(data)
}

// ParseEnginesConfig parses, expands and validates a YAML document.
func ParseEnginesConfig(data []byte) (*EnginesConfig, error) {
	var config EnginesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	config.expandEnvironmentVariables()
	config.setDefaults()

	if err := config.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidConfig, err.Error())
	}
	return &config, nil
}

// expandEnvironmentVariables replaces ${VAR} references in auth and settings
func (c *EnginesConfig) expandEnvironmentVariables() {
	for _, engine := range c.Engines {
		expandMap(engine.Auth)
		expandMap(engine.Settings)
	}
}

func expandMap(m map[string]interface{}) {
	for key, value := range m {
		switch v := value.(type) {
		case string:
			if strings.Contains(v, "${") {
				m[key] = os.ExpandEnv(v)
			}
		case map[string]interface{}:
			expandMap(v)
		}
	}
}

func (c *EnginesConfig) setDefaults() {
	for name, engine := range c.Engines {
		if engine.Type == "" {
			engine.Type = name
		}
		c.Engines[name] = engine
	}
	if c.DefaultEngine == "" {
		if e, ok := c.Engines["whisper_cpp"]; ok && e.Enabled {
			c.DefaultEngine = "whisper_cpp"
		}
	}
}

// Validate checks struct tags and that the default engine is usable
func (c *EnginesConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.DefaultEngine != "" {
		engine, ok := c.Engines[c.DefaultEngine]
		if !ok {
			return fmt.Errorf("default engine '%s' does not exist", c.DefaultEngine)
		}
		if !engine.Enabled {
			return fmt.Errorf("default engine '%s' is not enabled", c.DefaultEngine)
		}
	}
	return nil
}

// Resolve returns the engine type and config map for name. Engines absent from
// the file resolve to their own type with empty settings so the binary works
// without any config file.
func (c *EnginesConfig) Resolve(name string) (string, map[string]interface{}, error) {
	if c == nil || c.Engines == nil {
		return name, map[string]interface{}{}, nil
	}

	engine, ok := c.Engines[name]
	if !ok {
		return name, map[string]interface{}{}, nil
	}
	if !engine.Enabled {
		return "", nil, apperrors.Wrapf(apperrors.ErrEngineDisabled, "engine %s", name)
	}

	settings := make(map[string]interface{}, len(engine.Settings))
	for k, v := range engine.Settings {
		settings[k] = v
	}
	return engine.Type, map[string]interface{}{
		"auth":     engine.Auth,
		"settings": settings,
	}, nil
}
