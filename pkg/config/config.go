package config

import (
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"

	"github.com/beardenhq/bearden/pkg/errors"
)

const (
	// BaseConfigName is the required base configuration document.
	BaseConfigName = "config.yaml"

	// LocalConfigName is the optional override document; values in it
	// win over the base on conflicts.
	LocalConfigName = "config.local.yaml"

	// DefaultPort is used when server.port is absent from both documents.
	DefaultPort = 5000

	// DefaultLogLevel is used when logging.level is absent.
	DefaultLogLevel = "info"
)

// ServerConfig holds the listener settings for the dashboard process.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds the log backend settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ServiceConfig describes one monitored service. URL may be empty, in
// which case probes report the service as down. Display carries every
// other key of the service entry untouched, for rendering only.
type ServiceConfig struct {
	URL     string
	Display map[string]interface{}
}

// AppConfig is the merged configuration of the whole application.
type AppConfig struct {
	Server   ServerConfig
	Logging  LoggingConfig
	Services map[string]ServiceConfig
}

// rawConfig is the yaml-facing shape before service entries are split
// into url + display fields.
type rawConfig struct {
	Server   ServerConfig                      `yaml:"server"`
	Logging  LoggingConfig                     `yaml:"logging"`
	Services map[string]map[string]interface{} `yaml:"services"`
}

// Load reads the base configuration document from dir, merges the local
// override on top of it if one exists, and returns the decoded result.
// It re-reads the files on every call; callers must not cache the
// returned value across requests.
func Load(dir string) (*AppConfig, error) {
	basePath := filepath.Join(dir, BaseConfigName)
	merged, err := readDocument(basePath)
	if err != nil {
		return nil, err
	}

	localPath := filepath.Join(dir, LocalConfigName)
	if _, err := os.Stat(localPath); err == nil {
		local, err := readDocument(localPath)
		if err != nil {
			return nil, err
		}
		merged = DeepMerge(merged, local)
	}

	config, err := decode(merged)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, errors.NewValidationError("invalid configuration", err).WithContext("config_dir", dir)
	}

	return config, nil
}

// readDocument reads and parses one YAML document into a raw mapping.
func readDocument(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError("failed to read configuration file", err).WithContext("path", path)
	}

	document := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, errors.NewValidationError("failed to parse YAML configuration", err).WithContext("path", path)
	}

	return document, nil
}

// decode converts a merged raw mapping into the typed configuration,
// applying defaults and splitting service entries into url + display.
func decode(merged map[string]interface{}) (*AppConfig, error) {
	data, err := yaml.Marshal(merged)
	if err != nil {
		return nil, errors.NewInternalError("failed to re-encode merged configuration", err)
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.NewValidationError("configuration has unexpected structure", err)
	}

	config := &AppConfig{
		Server:   raw.Server,
		Logging:  raw.Logging,
		Services: make(map[string]ServiceConfig, len(raw.Services)),
	}

	if config.Server.Port == 0 {
		config.Server.Port = DefaultPort
	}
	if config.Logging.Level == "" {
		config.Logging.Level = DefaultLogLevel
	}

	for id, entry := range raw.Services {
		service := ServiceConfig{
			Display: make(map[string]interface{}, len(entry)),
		}
		for key, value := range entry {
			if key == "url" {
				if url, ok := value.(string); ok {
					service.URL = url
				}
				continue
			}
			service.Display[key] = value
		}
		config.Services[id] = service
	}

	return config, nil
}

// Validate checks the structural constraints of one server section.
func (s ServerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Port,
			validation.Required,
			validation.Min(1),
			validation.Max(65535),
		),
	)
}

// Validate checks the structural constraints of one logging section.
func (l LoggingConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level,
			validation.In("debug", "info", "warn", "error"),
		),
	)
}

// Validate checks the structural constraints of the configuration.
func (c *AppConfig) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}

	for id, service := range c.Services {
		// An absent url is allowed (the probe then reports down); a
		// present one must be a well-formed URL.
		if service.URL == "" {
			continue
		}
		if err := validation.Validate(service.URL, is.URL); err != nil {
			return validation.NewError("validation_service_url", "service "+id+" has an invalid url")
		}
	}

	return nil
}
