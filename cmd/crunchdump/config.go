package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// schemaConfig declares the fixed capacities of the demo Profile
// message this binary builds, encodes, and decodes. Real schemas are
// ordinarily fixed at compile time in Go source, the way the fields in
// fixtures_test.go are; this config file exists only so the demo binary
// has something worth reading from disk and logging about, per this
// module's ambient configuration layer.
type schemaConfig struct {
	Format      string `toml:"format"`
	Integrity   string `toml:"integrity"`
	NameMaxSize int    `toml:"name_max_size"`
	TagsMaxSize int    `toml:"tags_max_size"`
}

func defaultSchemaConfig() schemaConfig {
	return schemaConfig{
		Format:      "aligned4",
		Integrity:   "crc16",
		NameMaxSize: 32,
		TagsMaxSize: 8,
	}
}

func loadSchemaConfig(path string) (schemaConfig, error) {
	cfg := defaultSchemaConfig()
	if path == "" {
		return cfg, nil
	}
	var raw schemaConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return schemaConfig{}, fmt.Errorf("load crunchdump config: %w", err)
	}
	if meta.IsDefined("format") {
		cfg.Format = strings.TrimSpace(raw.Format)
	}
	if meta.IsDefined("integrity") {
		cfg.Integrity = strings.TrimSpace(raw.Integrity)
	}
	if meta.IsDefined("name_max_size") {
		cfg.NameMaxSize = raw.NameMaxSize
	}
	if meta.IsDefined("tags_max_size") {
		cfg.TagsMaxSize = raw.TagsMaxSize
	}
	return cfg, nil
}
