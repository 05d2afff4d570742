// Package rules serves the campaign rules document shown on the rules page.
// The document ships embedded in the binary so the rules page never depends
// on the filesystem.
package rules

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var rulesYAML []byte

// Section is one titled block of rules text
type Section struct {
	Heading string `yaml:"heading" json:"heading"`
	Body    string `yaml:"body" json:"body"`
}

// Document is the full rules document
type Document struct {
	Title    string    `yaml:"title" json:"title"`
	Intro    string    `yaml:"intro" json:"intro"`
	Sections []Section `yaml:"sections" json:"sections"`
}

// Load parses the embedded rules document
func Load() (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(rulesYAML, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
