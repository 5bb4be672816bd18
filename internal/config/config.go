package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultTextPointerCapacity is the buffer capacity assumed for char
	// pointer members when decoding.
	DefaultTextPointerCapacity = 256

	DefaultHeaderName = "cbor_generated.h"
	DefaultSourceName = "cbor_generated.c"
)

// Options are the generation options.
type Options struct {
	// Version of the config schema.
	Version string `yaml:"version"`
	// TextPointerCapacity is the decode buffer capacity assumed for char
	// pointer members. Must leave room for at least one character plus the
	// terminator.
	TextPointerCapacity int `yaml:"text_pointer_capacity"`
	// HeaderName is the file name of the generated header.
	HeaderName string `yaml:"header_name"`
	// SourceName is the file name of the generated source file.
	SourceName string `yaml:"source_name"`
	// Includes lists extra headers to include from the generated header,
	// typically the input header itself.
	Includes []string `yaml:"includes"`
}

// Default returns the options used when no config file is given.
func Default() Options {
	var opts Options

	applyDefaults(&opts)

	return opts
}

// LoadFile loads and parses a YAML config file from the given path.
func LoadFile(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into validated Options.
func Parse(data []byte) (Options, error) {
	var opts Options

	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	applyDefaults(&opts)

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}

	return opts, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(opts *Options) {
	if opts.Version == "" {
		opts.Version = "1"
	}

	if opts.TextPointerCapacity == 0 {
		opts.TextPointerCapacity = DefaultTextPointerCapacity
	}

	if opts.HeaderName == "" {
		opts.HeaderName = DefaultHeaderName
	}

	if opts.SourceName == "" {
		opts.SourceName = DefaultSourceName
	}
}

// Validate checks option values for consistency.
func (o Options) Validate() error {
	if o.Version != "1" {
		return fmt.Errorf("unsupported config version %q", o.Version)
	}

	if o.TextPointerCapacity < 2 {
		return fmt.Errorf("text_pointer_capacity must be at least 2, got %d", o.TextPointerCapacity)
	}

	if o.HeaderName == o.SourceName {
		return fmt.Errorf("header_name and source_name must differ, both are %q", o.HeaderName)
	}

	return nil
}
