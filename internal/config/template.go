package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/rileyhilliard/procdash/internal/errors"
	"gopkg.in/yaml.v3"
)

// sectionComments annotate the top-level keys of a generated config file.
var sectionComments = map[string]string{
	"version":   "Config schema version.",
	"backend":   "Where the supervision backend lives. Set ssh to tunnel through a host alias.",
	"poll":      "Snapshot poll cadence (minimum 100ms).",
	"history":   "Samples kept per metric and how long absent processes keep their history.",
	"animation": "Eased transitions between polled values.",
	"editor":    "Shared secret for the config editor. Use 'procdash config hash-secret' to store a bcrypt hash.",
	"ui":        "color: auto, always, never.",
	"log":       "Log file (defaults to the XDG state dir) and debug level.",
}

// Render serializes cfg as commented YAML.
func Render(cfg *Config) ([]byte, error) {
	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't encode config",
			"This is a bug, please report it")
	}

	// Keys and values alternate in a mapping node's Content.
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key := doc.Content[i]
		if comment, ok := sectionComments[key.Value]; ok {
			key.HeadComment = comment
		}
	}
	doc.HeadComment = "procdash configuration"

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't encode config",
			"This is a bug, please report it")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't encode config",
			"This is a bug, please report it")
	}
	return buf.Bytes(), nil
}

// WriteDefault writes a commented default config to path. It refuses to
// overwrite an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	return Write(path, DefaultConfig(), force)
}

// Write renders cfg to path as commented YAML, with the same overwrite rule
// as WriteDefault.
func Write(path string, cfg *Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.New(errors.ErrConfig,
				"Config already exists: "+path,
				"Use --force to overwrite it")
		}
	}

	data, err := Render(cfg)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Couldn't create config directory",
				"Check permissions on "+dir)
		}
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't write config file",
			"Check permissions on "+path)
	}
	return nil
}
