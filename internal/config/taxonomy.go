package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mind-engage/mindengage-qbank/internal/qbank/parser"
)

// ParseTaxonomy decodes a single YAML document into a validated taxonomy.
// Unknown keys are rejected.
func ParseTaxonomy(data []byte) (*parser.Taxonomy, error) {
	var tax parser.Taxonomy
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&tax); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("parse taxonomy: multiple YAML documents are not supported")
		}
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	if err := tax.Validate(); err != nil {
		return nil, err
	}
	return &tax, nil
}

// LoadTaxonomy reads path, or returns the built-in taxonomy when path is empty.
func LoadTaxonomy(path string) (*parser.Taxonomy, error) {
	if path == "" {
		return parser.DefaultTaxonomy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}
	return ParseTaxonomy(data)
}

// ParserOptions builds importer options from the environment settings.
func (c Config) ParserOptions() (parser.Options, error) {
	tax, err := LoadTaxonomy(c.TaxonomyFile)
	if err != nil {
		return parser.Options{}, err
	}
	return parser.Options{
		DefaultSubject:    c.DefaultSubject,
		DefaultDifficulty: c.DefaultDifficulty,
		Taxonomy:          tax,
		Workers:           c.Workers,
	}, nil
}
