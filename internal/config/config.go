package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abelbrown/facetline/internal/schema"
)

// Config is the persistent application configuration
type Config struct {
	// Searchable field declarations, in display order
	Fields []FieldConfig `json:"fields"`

	// Lookup settings
	Lookup LookupConfig `json:"lookup"`

	// UI Preferences
	UI UIConfig `json:"ui"`
}

// FieldConfig declares one searchable field
type FieldConfig struct {
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Type     string         `json:"type"`
	Relation string         `json:"relation,omitempty"`
	Domain   string         `json:"domain,omitempty"`
	Operator string         `json:"operator,omitempty"`
	Options  [][2]string    `json:"options,omitempty"` // [value, label] pairs
	Sub      []FieldConfig  `json:"sub,omitempty"`     // properties sub-fields
}

// LookupConfig controls where child suggestions are fetched from
type LookupConfig struct {
	// Endpoint, when set, routes name lookups to a remote HTTP endpoint
	// instead of the local catalog
	Endpoint string `json:"endpoint,omitempty"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	Theme       string `json:"theme"`
	ResultLimit int    `json:"result_limit"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Fields: []FieldConfig{
			{ID: "name", Label: "Name", Type: "text"},
			{ID: "status", Label: "Status", Type: "selection", Options: [][2]string{
				{"open", "Open"},
				{"closed", "Closed"},
			}},
			{ID: "active", Label: "Active", Type: "boolean"},
			{ID: "created", Label: "Created", Type: "date"},
			{ID: "owner", Label: "Owner", Type: "many2one", Relation: "users"},
			{ID: "tags", Label: "Tags", Type: "many2many", Relation: "tags"},
			{ID: "attrs", Label: "Attributes", Type: "properties", Sub: []FieldConfig{
				{ID: "team", Label: "Team", Type: "text"},
				{ID: "priority", Label: "Priority", Type: "number"},
			}},
		},
		UI: UIConfig{
			Theme:       "dark",
			ResultLimit: 200,
		},
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".facetline", "config.json")
}

// Load reads config from disk, or returns defaults
func Load() (*Config, error) {
	path := ConfigPath()

	data, err := os.ReadFile(path)
	if err != nil {
		cfg := DefaultConfig()
		cfg.AutoPopulateFromEnv()
		if os.IsNotExist(err) {
			return cfg, nil
		}
		// Unreadable file: still hand back usable defaults so callers never
		// hold a nil config, but surface the error.
		return cfg, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), nil
	}
	if len(cfg.Fields) == 0 {
		cfg.Fields = DefaultConfig().Fields
	}
	cfg.AutoPopulateFromEnv()

	return &cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	path := ConfigPath()

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// AutoPopulateFromEnv fills in settings from environment variables
func (c *Config) AutoPopulateFromEnv() {
	if url := os.Getenv("FACETLINE_LOOKUP_URL"); url != "" {
		c.Lookup.Endpoint = url
	}
}

// Registry builds the schema registry from the declared fields.
// Unknown types are rejected so a typo in the config fails loudly at
// startup instead of silently producing no suggestions.
func (c *Config) Registry() (*schema.Registry, error) {
	fields := make([]schema.Field, 0, len(c.Fields))
	for _, fc := range c.Fields {
		field, err := fc.toField(true)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return schema.NewRegistry(fields), nil
}

func (fc FieldConfig) toField(allowSub bool) (schema.Field, error) {
	fieldType, ok := schema.ParseFieldType(fc.Type)
	if !ok {
		return schema.Field{}, fmt.Errorf("field %q: unknown type %q", fc.ID, fc.Type)
	}

	field := schema.Field{
		ID:       fc.ID,
		Label:    fc.Label,
		Type:     fieldType,
		Relation: fc.Relation,
		Domain:   fc.Domain,
		Operator: fc.Operator,
	}
	for _, opt := range fc.Options {
		field.Options = append(field.Options, schema.Option{Value: opt[0], Label: opt[1]})
	}

	if len(fc.Sub) > 0 {
		if !allowSub || fieldType != schema.Properties {
			return schema.Field{}, fmt.Errorf("field %q: sub-fields are only valid one level deep on properties fields", fc.ID)
		}
		for _, sub := range fc.Sub {
			subField, err := sub.toField(false)
			if err != nil {
				return schema.Field{}, err
			}
			field.Sub = append(field.Sub, subField)
		}
	}

	return field, nil
}
