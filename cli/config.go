package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration of the interact tool.
type Config struct {
	MaxNodes       int    `yaml:"max_nodes"`
	MaxLineLength  int    `yaml:"max_line_length"`
	IndentStep     int    `yaml:"indent_step"`
	HistoryFile    string `yaml:"history_file"`
	InitialCommand string `yaml:"initial_command"`
	Color          string `yaml:"color"` // auto, always or never
	Requires       string `yaml:"requires"`
}

const configSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "max_nodes": {"type": "integer", "minimum": 1},
    "max_line_length": {"type": "integer", "minimum": 20},
    "indent_step": {"type": "integer", "minimum": 0, "maximum": 16},
    "history_file": {"type": "string"},
    "initial_command": {"type": "string"},
    "color": {"enum": ["auto", "always", "never"]},
    "requires": {"type": "string", "format": "semver"}
  }
}`

// schemaCache caches compiled schemas by the sha256 of their source
type schemaCache struct {
	mu    sync.RWMutex
	cache map[string]*jsonschema.Schema
}

var schemas = &schemaCache{cache: make(map[string]*jsonschema.Schema)}

func (c *schemaCache) get(source string) (*jsonschema.Schema, error) {
	hash := sha256.Sum256([]byte(source))
	key := hex.EncodeToString(hash[:])

	c.mu.RLock()
	s, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return s, nil
	}

	s, err := compileSchema(source)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = s
	return s, nil
}

func (c *schemaCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func compileSchema(source string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if compiler.Formats == nil {
		compiler.Formats = make(map[string]func(interface{}) bool)
	}
	compiler.Formats["semver"] = func(v interface{}) bool {
		s, ok := v.(string)
		if !ok {
			return true // Type validation happens separately
		}
		return semver.IsValid(canonicalVersion(s))
	}

	// No $ref leaves the embedded schema
	compiler.LoadURL = func(url string) (io.ReadCloser, error) {
		return nil, fmt.Errorf("$ref not allowed: %s", url)
	}

	url := "schema://config.json"
	if err := compiler.AddResource(url, strings.NewReader(source)); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}

// canonicalVersion adds the "v" prefix x/mod/semver requires.
func canonicalVersion(s string) string {
	if !strings.HasPrefix(s, "v") {
		return "v" + s
	}
	return s
}

// LoadConfig decodes and validates a YAML configuration.
func LoadConfig(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if raw == nil {
		return &Config{}, nil
	}

	schema, err := schemas.get(configSchema)
	if err != nil {
		return nil, fmt.Errorf("compile config schema: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.checkRequires(Version); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfigFile reads the configuration at path.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening config %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return LoadConfig(f)
}

func (c *Config) checkRequires(version string) error {
	if c.Requires == "" {
		return nil
	}
	required := canonicalVersion(c.Requires)
	if semver.Compare(canonicalVersion(version), required) < 0 {
		return &CLIError{
			Type:    "config",
			Message: fmt.Sprintf("config requires interact %s, this is %s", required, canonicalVersion(version)),
			Hint:    "Upgrade interact or lower `requires` in the config file",
		}
	}
	return nil
}
