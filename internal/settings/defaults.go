package settings

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadDefaults returns the built-in defaults overlaid with the YAML file at
// path. An empty path returns the built-in defaults.
//
//	mode: remote
//	remote:
//	  endpoint: https://llm.internal/v1
//	  generation:
//	    temperature: 0.3
func LoadDefaults(path string) (Profile, error) {
	p := Defaults()
	if path == "" {
		return p, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return p, fmt.Errorf("open settings defaults: %w", err)
	}
	defer f.Close()

	return ReadDefaults(f)
}

// ReadDefaults is LoadDefaults for an already opened reader.
func ReadDefaults(r io.Reader) (Profile, error) {
	p := Defaults()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Defaults(), fmt.Errorf("parse settings defaults: %w", err)
	}
	m, err := ParseMode(string(p.Mode))
	if err != nil {
		return Defaults(), fmt.Errorf("settings defaults: %w", err)
	}
	p.Mode = m
	if err := p.Validate(); err != nil {
		return Defaults(), fmt.Errorf("settings defaults: %w", err)
	}
	return p, nil
}
