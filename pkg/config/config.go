package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/cmdb"
	ConfigFileName    = "cmdb.yml"
)

// Config holds all CMDB server and worker settings
type Config struct {
	// Port is the HTTP listen port
	Port int `yaml:"port" json:"port"`

	// ESURL is the base URL of the search index backend
	ESURL string `yaml:"es_url" json:"es_url"`

	// ESIndex is the name of the search index
	ESIndex string `yaml:"es_index" json:"es_index"`

	// SearchResultLimit caps the number of reconciled rows per search
	SearchResultLimit int `yaml:"search_result_limit" json:"search_result_limit"`

	// JobTimeoutSeconds is the soft timeout after which an unresponsive job
	// counts as finished
	JobTimeoutSeconds int `yaml:"job_timeout" json:"job_timeout"`

	// JobPollIntervalMillis is the initial interval of the dependency wait
	JobPollIntervalMillis int `yaml:"job_poll_interval_ms" json:"job_poll_interval_ms"`

	// JobWorkers is the size of the worker pool
	JobWorkers int `yaml:"job_workers" json:"job_workers"`

	// TokenSigningKey signs API tokens
	TokenSigningKey string `yaml:"token_signing_key" json:"token_signing_key"`

	// TokenTTLSeconds is the lifetime of issued API tokens
	TokenTTLSeconds int `yaml:"token_ttl" json:"token_ttl"`

	// LogLevel is the zap log level (debug, info, warn, error)
	LogLevel string `yaml:"log_level" json:"log_level"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *Config
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			// Return defaults on error
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// newDefault returns a config with default values
func newDefault() *Config {
	return &Config{
		Port:                  8080,
		ESURL:                 "http://localhost:9200",
		ESIndex:               "entry",
		SearchResultLimit:     100,
		JobTimeoutSeconds:     300,
		JobPollIntervalMillis: 500,
		JobWorkers:            4,
		TokenTTLSeconds:       3600,
		LogLevel:              "info",
		sources:               make(map[string]string),
	}
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*Config, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("CMDB_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig Config
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"port", "es_url", "es_index", "search_result_limit",
		"job_timeout", "job_poll_interval_ms", "job_workers",
		"token_signing_key", "token_ttl", "log_level",
	}
}

func (c *Config) applyFileConfig(file *Config) {
	if file.Port != 0 {
		c.Port = file.Port
		c.sources["port"] = "file"
	}
	if file.ESURL != "" {
		c.ESURL = file.ESURL
		c.sources["es_url"] = "file"
	}
	if file.ESIndex != "" {
		c.ESIndex = file.ESIndex
		c.sources["es_index"] = "file"
	}
	if file.SearchResultLimit != 0 {
		c.SearchResultLimit = file.SearchResultLimit
		c.sources["search_result_limit"] = "file"
	}
	if file.JobTimeoutSeconds != 0 {
		c.JobTimeoutSeconds = file.JobTimeoutSeconds
		c.sources["job_timeout"] = "file"
	}
	if file.JobPollIntervalMillis != 0 {
		c.JobPollIntervalMillis = file.JobPollIntervalMillis
		c.sources["job_poll_interval_ms"] = "file"
	}
	if file.JobWorkers != 0 {
		c.JobWorkers = file.JobWorkers
		c.sources["job_workers"] = "file"
	}
	if file.TokenSigningKey != "" {
		c.TokenSigningKey = file.TokenSigningKey
		c.sources["token_signing_key"] = "file"
	}
	if file.TokenTTLSeconds != 0 {
		c.TokenTTLSeconds = file.TokenTTLSeconds
		c.sources["token_ttl"] = "file"
	}
	if file.LogLevel != "" {
		c.LogLevel = file.LogLevel
		c.sources["log_level"] = "file"
	}
}

func (c *Config) applyEnvConfig() {
	if val := os.Getenv("PORT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.Port = i
			c.sources["port"] = "environment"
		}
	}
	if val := os.Getenv("CMDB_ES_URL"); val != "" {
		c.ESURL = val
		c.sources["es_url"] = "environment"
	}
	if val := os.Getenv("CMDB_ES_INDEX"); val != "" {
		c.ESIndex = val
		c.sources["es_index"] = "environment"
	}
	if val := os.Getenv("CMDB_SEARCH_RESULT_LIMIT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.SearchResultLimit = i
			c.sources["search_result_limit"] = "environment"
		}
	}
	if val := os.Getenv("CMDB_JOB_TIMEOUT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.JobTimeoutSeconds = i
			c.sources["job_timeout"] = "environment"
		}
	}
	if val := os.Getenv("CMDB_JOB_POLL_INTERVAL_MS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.JobPollIntervalMillis = i
			c.sources["job_poll_interval_ms"] = "environment"
		}
	}
	if val := os.Getenv("CMDB_JOB_WORKERS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.JobWorkers = i
			c.sources["job_workers"] = "environment"
		}
	}
	if val := os.Getenv("CMDB_TOKEN_SIGNING_KEY"); val != "" {
		c.TokenSigningKey = val
		c.sources["token_signing_key"] = "environment"
	}
	if val := os.Getenv("CMDB_TOKEN_TTL"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.TokenTTLSeconds = i
			c.sources["token_ttl"] = "environment"
		}
	}
	if val := os.Getenv("CMDB_LOG_LEVEL"); val != "" {
		c.LogLevel = val
		c.sources["log_level"] = "environment"
	}
}

// ConfigFilePath returns the path to the config file
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// JobTimeout returns the job soft timeout as a duration
func (c *Config) JobTimeout() time.Duration {
	return time.Duration(c.JobTimeoutSeconds) * time.Second
}

// JobPollInterval returns the dependency poll interval as a duration
func (c *Config) JobPollInterval() time.Duration {
	return time.Duration(c.JobPollIntervalMillis) * time.Millisecond
}

// TokenTTL returns the API token lifetime as a duration
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLSeconds) * time.Second
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.JobTimeoutSeconds <= 0 {
		return fmt.Errorf("job_timeout must be positive")
	}
	if c.JobWorkers <= 0 {
		return fmt.Errorf("job_workers must be positive")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}
	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *Config) Attributes() []Attribute {
	return []Attribute{
		{Name: "port", Value: strconv.Itoa(c.Port), Source: c.Source("port")},
		{Name: "es_url", Value: c.ESURL, Source: c.Source("es_url")},
		{Name: "es_index", Value: c.ESIndex, Source: c.Source("es_index")},
		{Name: "search_result_limit", Value: strconv.Itoa(c.SearchResultLimit), Source: c.Source("search_result_limit")},
		{Name: "job_timeout", Value: strconv.Itoa(c.JobTimeoutSeconds), Source: c.Source("job_timeout")},
		{Name: "job_poll_interval_ms", Value: strconv.Itoa(c.JobPollIntervalMillis), Source: c.Source("job_poll_interval_ms")},
		{Name: "job_workers", Value: strconv.Itoa(c.JobWorkers), Source: c.Source("job_workers")},
		{Name: "token_signing_key", Value: maskSecret(c.TokenSigningKey), Source: c.Source("token_signing_key")},
		{Name: "token_ttl", Value: strconv.Itoa(c.TokenTTLSeconds), Source: c.Source("token_ttl")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
	}
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-25s %-30s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-25s %-30s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-25s %-30s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}
