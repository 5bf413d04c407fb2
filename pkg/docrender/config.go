package docrender

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arafateouronile-glitch/EDUZEN-sub009/pkg/docrender/fetch"
)

// UnresolvedPolicy decides what happens to a well-formed placeholder that has
// no value.
type UnresolvedPolicy string

const (
	UnresolvedDrop  UnresolvedPolicy = "drop"
	UnresolvedKeep  UnresolvedPolicy = "keep"
	UnresolvedError UnresolvedPolicy = "error"
)

// CodeImageMode selects how QR codes and barcodes are sourced.
type CodeImageMode string

const (
	CodeImageRemote CodeImageMode = "remote"
	CodeImageInline CodeImageMode = "inline"
)

const defaultPagedJSURL = "https://unpkg.com/pagedjs/dist/paged.polyfill.js"

// Config contains all configuration options for the rendering engine
type Config struct {
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string `yaml:"log_level"`
	// UnresolvedPlaceholderPolicy applies to placeholders with no value
	UnresolvedPlaceholderPolicy UnresolvedPolicy `yaml:"unresolved_placeholder_policy"`
	// LogoFetchTimeout bounds each logo download
	LogoFetchTimeout time.Duration `yaml:"logo_fetch_timeout"`
	// InlineLogos embeds logos as data URIs; when false the URL is kept as src
	InlineLogos bool `yaml:"inline_logos"`
	// CodeImageMode selects remote image services or locally drawn PNGs
	CodeImageMode CodeImageMode `yaml:"code_image_mode"`
	// CharsPerPage is the text length assumed to fill one page
	CharsPerPage int `yaml:"chars_per_page"`
	// PagedJSURL is the pagination polyfill loaded by the document
	PagedJSURL string `yaml:"pagedjs_url"`
	// DateFormat is the Go layout used for dates
	DateFormat string `yaml:"date_format"`
	// CacheMaxSize is the maximum number of parsed fragments to cache. 0 disables caching.
	CacheMaxSize int `yaml:"cache_max_size"`
	// CacheTTL is the time-to-live for cached fragments. 0 means no expiration.
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// MaxPayloadLogBytes truncates variable payloads written to error logs
	MaxPayloadLogBytes int `yaml:"max_payload_log_bytes"`
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

func init() {
	configOnce.Do(func() {
		globalConfig = ConfigFromEnvironment()
	})
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LogLevel:                    "info",
		UnresolvedPlaceholderPolicy: UnresolvedDrop,
		LogoFetchTimeout:            fetch.DefaultTimeout,
		InlineLogos:                 true,
		CodeImageMode:               CodeImageRemote,
		CharsPerPage:                3000,
		PagedJSURL:                  defaultPagedJSURL,
		DateFormat:                  "02/01/2006",
		CacheMaxSize:                100,
		CacheTTL:                    0,
		MaxPayloadLogBytes:          500,
	}
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()
	applyEnvironment(config)
	return config
}

// LoadConfigFile reads a YAML configuration file. Keys missing from the file
// keep their defaults and environment variables override the file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	applyEnvironment(config)
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
	"off":   true,
}

// applyEnvironment overrides config from DOCRENDER_* variables. Values that
// do not parse or are out of range are ignored.
func applyEnvironment(config *Config) {
	// DOCRENDER_LOG_LEVEL
	if val := strings.ToLower(os.Getenv("DOCRENDER_LOG_LEVEL")); validLogLevels[val] {
		config.LogLevel = val
	}

	// DOCRENDER_UNRESOLVED_POLICY
	switch val := UnresolvedPolicy(strings.ToLower(os.Getenv("DOCRENDER_UNRESOLVED_POLICY"))); val {
	case UnresolvedDrop, UnresolvedKeep, UnresolvedError:
		config.UnresolvedPlaceholderPolicy = val
	}

	// DOCRENDER_LOGO_FETCH_TIMEOUT
	if val := os.Getenv("DOCRENDER_LOGO_FETCH_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			config.LogoFetchTimeout = d
		}
	}

	// DOCRENDER_INLINE_LOGOS
	if val := os.Getenv("DOCRENDER_INLINE_LOGOS"); val != "" {
		config.InlineLogos = parseBool(val)
	}

	// DOCRENDER_CODE_IMAGE_MODE
	switch val := CodeImageMode(strings.ToLower(os.Getenv("DOCRENDER_CODE_IMAGE_MODE"))); val {
	case CodeImageRemote, CodeImageInline:
		config.CodeImageMode = val
	}

	// DOCRENDER_CHARS_PER_PAGE
	if val := os.Getenv("DOCRENDER_CHARS_PER_PAGE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			config.CharsPerPage = n
		}
	}

	// DOCRENDER_PAGEDJS_URL
	if val := os.Getenv("DOCRENDER_PAGEDJS_URL"); val != "" {
		config.PagedJSURL = val
	}

	// DOCRENDER_DATE_FORMAT
	if val := os.Getenv("DOCRENDER_DATE_FORMAT"); val != "" {
		config.DateFormat = val
	}

	// DOCRENDER_CACHE_MAX_SIZE
	if val := os.Getenv("DOCRENDER_CACHE_MAX_SIZE"); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size >= 0 {
			config.CacheMaxSize = size
		}
	}

	// DOCRENDER_CACHE_TTL
	if val := os.Getenv("DOCRENDER_CACHE_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d >= 0 {
			config.CacheTTL = d
		}
	}

	// DOCRENDER_MAX_PAYLOAD_LOG
	if val := os.Getenv("DOCRENDER_MAX_PAYLOAD_LOG"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n >= 0 {
			config.MaxPayloadLogBytes = n
		}
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var issues []ValidationIssue

	if !validLogLevels[c.LogLevel] {
		issues = append(issues, ValidationIssue{Field: "log_level", Message: "invalid log level: " + c.LogLevel})
	}

	switch c.UnresolvedPlaceholderPolicy {
	case UnresolvedDrop, UnresolvedKeep, UnresolvedError:
	default:
		issues = append(issues, ValidationIssue{Field: "unresolved_placeholder_policy", Message: fmt.Sprintf("unknown policy %q", c.UnresolvedPlaceholderPolicy)})
	}

	switch c.CodeImageMode {
	case CodeImageRemote, CodeImageInline:
	default:
		issues = append(issues, ValidationIssue{Field: "code_image_mode", Message: fmt.Sprintf("unknown mode %q", c.CodeImageMode)})
	}

	if c.LogoFetchTimeout <= 0 {
		issues = append(issues, ValidationIssue{Field: "logo_fetch_timeout", Message: "must be positive"})
	}
	if c.CharsPerPage <= 0 {
		issues = append(issues, ValidationIssue{Field: "chars_per_page", Message: "must be positive"})
	}
	if c.CacheMaxSize < 0 {
		issues = append(issues, ValidationIssue{Field: "cache_max_size", Message: "cannot be negative"})
	}
	if c.CacheTTL < 0 {
		issues = append(issues, ValidationIssue{Field: "cache_ttl", Message: "cannot be negative"})
	}
	if c.DateFormat == "" {
		issues = append(issues, ValidationIssue{Field: "date_format", Message: "cannot be empty"})
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

// GetGlobalConfig returns a copy of the global configuration
func GetGlobalConfig() *Config {
	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) error {
	if config == nil {
		return errors.New("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return err
	}
	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()

	// Update logger based on new config (outside the lock to avoid deadlock)
	UpdateLoggerFromConfig()
	return nil
}

// parseBool parses a boolean value from a string
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
