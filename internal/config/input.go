// Package config loads the company snapshot and optional statutory-table
// overrides from YAML files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tribgo/tribgo/internal/domain"
)

// Input is the top-level structure of the input YAML file.
type Input struct {
	Company  domain.CompanyInputs   `yaml:"company"`
	Partners []domain.PartnerConfig `yaml:"partners"`
	Options  Options                `yaml:"options"`
}

// Options collects per-run switches that are not part of the fiscal
// snapshot itself.
type Options struct {
	// EqualizePartners rebalances participations to an even split before
	// validation. This is the explicit action that bypasses the sum check.
	EqualizePartners bool `yaml:"equalize_partners"`
	// Scenarios appends distribution strategies for the winning regime.
	Scenarios bool `yaml:"scenarios"`
}

// InputParser handles parsing of input files.
type InputParser struct{}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a run input from a YAML file.
func (ip *InputParser) LoadFromFile(filename string) (*Input, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes a run input from YAML bytes and applies the equalize
// action when requested.
func (ip *InputParser) Parse(data []byte) (*Input, error) {
	var input Input
	if err := yaml.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if input.Company.PayoutPolicy == "" {
		input.Company.PayoutPolicy = domain.PayoutFull
	}
	if input.Options.EqualizePartners {
		input.Partners = domain.EqualizePartners(input.Partners)
	}
	return &input, nil
}

// LoadTables loads the bundled statutory tables, overlaying an override
// file when one is given. The returned tables are not yet validated; the
// engine validates them before use.
func LoadTables(overrideFile string) (*domain.TaxTables, error) {
	tables := domain.DefaultTaxTables()
	if overrideFile == "" {
		return tables, nil
	}
	data, err := os.ReadFile(overrideFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables file %s: %w", overrideFile, err)
	}
	if err := yaml.Unmarshal(data, tables); err != nil {
		return nil, fmt.Errorf("failed to parse tables YAML: %w", err)
	}
	return tables, nil
}
