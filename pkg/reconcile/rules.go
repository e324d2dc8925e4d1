package reconcile

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Defaults applied when no rules file overrides them.
const (
	DefaultFallbackCategory = "Regolazione saldo"
	DefaultTransferMarker   = "giroconto"
	DefaultAggregateMarker  = "ETF"
)

// MatchMode selects how a correction rule compares account titles.
type MatchMode string

const (
	MatchContains MatchMode = "contains"
	MatchExact    MatchMode = "exact"
)

// CorrectionRule adds Delta to every retained account whose title matches.
type CorrectionRule struct {
	Match MatchMode
	Title string
	Delta decimal.Decimal
}

// Matches reports whether the rule applies to an account title.
func (c CorrectionRule) Matches(title string) bool {
	switch c.Match {
	case MatchExact:
		return title == c.Title
	case MatchContains:
		return strings.Contains(title, c.Title)
	}
	return false
}

// AggregationRule folds every retained account whose title contains Contains
// into one synthetic balance named Title.
type AggregationRule struct {
	Contains string
	Title    string
}

// Rules parameterizes the dataset-specific parts of a reconciliation.
type Rules struct {
	// FallbackCategory names the category of transactions without one.
	FallbackCategory string
	// TransferMarker is the case-insensitive category-title substring that
	// marks a transaction as the shadow of a transfer. Empty disables it.
	TransferMarker string
	Corrections    []CorrectionRule
	Aggregations   []AggregationRule
}

// DefaultRules returns the rules matching the reference dataset, including
// the known Intesa/Contanti double-count patch.
func DefaultRules() Rules {
	delta := decimal.RequireFromString("219.50")
	return Rules{
		FallbackCategory: DefaultFallbackCategory,
		TransferMarker:   DefaultTransferMarker,
		Corrections: []CorrectionRule{
			{Match: MatchContains, Title: "Intesa", Delta: delta},
			{Match: MatchExact, Title: "Contanti", Delta: delta.Neg()},
		},
		Aggregations: []AggregationRule{
			{Contains: DefaultAggregateMarker, Title: DefaultAggregateMarker},
		},
	}
}

// WithoutCorrections returns a copy of r with no correction rules.
func (r Rules) WithoutCorrections() Rules {
	r.Corrections = nil
	return r
}

// rulesFile is the YAML layout of a rules file. Pointer fields distinguish
// an absent key (keep default) from an explicitly empty one.
type rulesFile struct {
	FallbackCategory *string `yaml:"fallback_category"`
	TransferMarker   *string `yaml:"transfer_marker"`
	Corrections      *[]struct {
		Match string `yaml:"match"`
		Title string `yaml:"title"`
		Delta string `yaml:"delta"`
	} `yaml:"corrections"`
	Aggregations *[]struct {
		Contains string `yaml:"contains"`
		Title    string `yaml:"title"`
	} `yaml:"aggregations"`
}

// LoadRules reads a YAML rules file on top of DefaultRules.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules parses YAML rules on top of DefaultRules.
func ParseRules(data []byte) (Rules, error) {
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Rules{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	rules := DefaultRules()

	if file.FallbackCategory != nil {
		if *file.FallbackCategory == "" {
			return Rules{}, fmt.Errorf("fallback_category must not be empty")
		}
		rules.FallbackCategory = *file.FallbackCategory
	}
	if file.TransferMarker != nil {
		rules.TransferMarker = *file.TransferMarker
	}

	if file.Corrections != nil {
		rules.Corrections = make([]CorrectionRule, 0, len(*file.Corrections))
		for i, c := range *file.Corrections {
			mode := MatchMode(c.Match)
			if mode != MatchContains && mode != MatchExact {
				return Rules{}, fmt.Errorf("correction %d: invalid match mode %q", i, c.Match)
			}
			if c.Title == "" {
				return Rules{}, fmt.Errorf("correction %d: title is required", i)
			}
			delta, err := decimal.NewFromString(c.Delta)
			if err != nil {
				return Rules{}, fmt.Errorf("correction %d: invalid delta %q: %w", i, c.Delta, err)
			}
			rules.Corrections = append(rules.Corrections, CorrectionRule{
				Match: mode,
				Title: c.Title,
				Delta: delta.Round(2),
			})
		}
	}

	if file.Aggregations != nil {
		rules.Aggregations = make([]AggregationRule, 0, len(*file.Aggregations))
		for i, a := range *file.Aggregations {
			if a.Contains == "" {
				return Rules{}, fmt.Errorf("aggregation %d: contains is required", i)
			}
			title := a.Title
			if title == "" {
				title = a.Contains
			}
			rules.Aggregations = append(rules.Aggregations, AggregationRule{
				Contains: a.Contains,
				Title:    title,
			})
		}
	}

	return rules, nil
}
