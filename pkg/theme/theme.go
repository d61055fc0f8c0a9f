// Package theme serves the badge colors the UI uses for statuses and kinds.
package theme

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed palette.yaml
var paletteYAML []byte

// Fallback is returned when neither the key nor the category default exists.
var Fallback = Color{Hex: "#6B7280", Class: "bg-gray-500"}

type Color struct {
	Hex   string `yaml:"hex" json:"hex"`
	Class string `yaml:"class" json:"class"`
}

// Palette maps category -> key -> color. The key "default" is the category fallback.
type Palette map[string]map[string]Color

func Parse(data []byte) (Palette, error) {
	var p Palette
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse palette: %w", err)
	}
	return p, nil
}

// Default parses the embedded palette. It panics if the embedded file is invalid.
func Default() Palette {
	p, err := Parse(paletteYAML)
	if err != nil {
		panic(err)
	}
	return p
}

// Lookup never fails: key, then category default, then Fallback.
func (p Palette) Lookup(category, key string) Color {
	entries, ok := p[category]
	if !ok {
		return Fallback
	}
	if c, ok := entries[key]; ok {
		return c
	}
	if c, ok := entries["default"]; ok {
		return c
	}
	return Fallback
}

func (p Palette) Categories() []string {
	out := make([]string, 0, len(p))
	for k := range p {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
