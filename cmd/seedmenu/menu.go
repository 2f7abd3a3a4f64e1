package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"resto-collect/internal/model"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// menuFile is the YAML layout of a menu seed.
type menuFile struct {
	Items []menuEntry `yaml:"items"`
}

type menuEntry struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Price       string  `yaml:"price"`
	Category    string  `yaml:"category"`
	Available   *bool   `yaml:"available"`
	Image       *string `yaml:"image"`
}

var errEmptyMenu = errors.New("menu file has no items")

// parseMenu decodes a YAML menu. Prices are kept as strings in the file so
// they round-trip exactly. A missing availability flag means available.
func parseMenu(data []byte) ([]model.MenuItem, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f menuFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode menu: %w", err)
	}
	if len(f.Items) == 0 {
		return nil, errEmptyMenu
	}

	seen := make(map[string]bool, len(f.Items))
	items := make([]model.MenuItem, 0, len(f.Items))
	for i, e := range f.Items {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("item %d: name is required", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("item %d: duplicate name %q", i+1, name)
		}
		seen[name] = true

		price, err := decimal.NewFromString(strings.TrimSpace(e.Price))
		if err != nil {
			return nil, fmt.Errorf("item %q: invalid price %q: %w", name, e.Price, err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("item %q: price must not be negative", name)
		}

		items = append(items, model.MenuItem{
			Name:        name,
			Description: strings.TrimSpace(e.Description),
			Price:       price,
			Category:    strings.TrimSpace(e.Category),
			Available:   model.NormalizeAvailability(e.Available),
			ImageURL:    e.Image,
		})
	}

	return items, nil
}
