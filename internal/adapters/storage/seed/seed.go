package seed

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultYAML []byte

// Demo holds the vocabulary used to generate development contacts.
type Demo struct {
	Contacts     int      `yaml:"contacts"`
	LastNames    []string `yaml:"last_names"`
	FirstNames   []string `yaml:"first_names"`
	EmailDomains []string `yaml:"email_domains"`
	Prefectures  []string `yaml:"prefectures"`
	Cities       []string `yaml:"cities"`
	Buildings    []string `yaml:"buildings"`
	Details      []string `yaml:"details"`
}

// Data is the parsed seed file.
type Data struct {
	Categories []string `yaml:"categories"`
	Demo       Demo     `yaml:"demo"`
}

var ErrEmptyVocabulary = errors.New("seed: demo vocabulary lists must not be empty")

// Default parses the embedded seed file.
func Default() (Data, error) {
	return Parse(defaultYAML)
}

// Parse decodes seed YAML and checks that every list the generator draws from is populated.
// PRE: raw is YAML shaped like seed.yaml
// POST: Returns Data or a decode/validation error
func Parse(raw []byte) (Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return Data{}, fmt.Errorf("seed: decode: %w", err)
	}
	if len(d.Categories) == 0 {
		return Data{}, errors.New("seed: at least one category is required")
	}
	if d.Demo.Contacts > 0 {
		for _, list := range [][]string{d.Demo.LastNames, d.Demo.FirstNames, d.Demo.EmailDomains, d.Demo.Prefectures, d.Demo.Cities, d.Demo.Details} {
			if len(list) == 0 {
				return Data{}, ErrEmptyVocabulary
			}
		}
	}
	return d, nil
}
