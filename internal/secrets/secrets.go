// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves the WoS API key. Keys live either in a directory
// of plain-text files (filename is the key name, trimmed contents the
// value) or in a dotenv file of KEY=value lines.
package secrets

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Key names.
const (
	// WoSAPIKeyFile is the file name under the secrets directory.
	WoSAPIKeyFile = "wos-api-key"

	// WoSAPIKeyEnv is the environment and dotenv variable name.
	WoSAPIKeyEnv = "WOS_API_KEY"
)

// Default locations, relative to the working directory.
const (
	DefaultDir    = ".secrets"
	DefaultDotEnv = ".env"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	out := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			out[name] = value
		}
	}
	return out, nil
}

// LoadDotEnv parses a dotenv file. Blank lines and # comments are skipped,
// an optional "export " prefix is accepted, and values may be wrapped in
// single or double quotes. A missing file yields an empty map.
func LoadDotEnv(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	out := make(map[string]string)
	sc := bufio.NewScanner(f)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		text = strings.TrimPrefix(text, "export ")
		key, value, ok := strings.Cut(text, "=")
		if !ok {
			return nil, fmt.Errorf("%s:%d: expected KEY=value", path, line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
			value = value[1 : len(value)-1]
		}
		if key != "" && value != "" {
			out[key] = value
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return out, nil
}

// WoSAPIKey returns the first key found in the WOS_API_KEY environment
// variable, dir/wos-api-key, or the dotenv file, in that order. An empty
// string with a nil error means no key is configured.
func WoSAPIKey(dir, dotEnv string) (string, error) {
	if v := strings.TrimSpace(os.Getenv(WoSAPIKeyEnv)); v != "" {
		return v, nil
	}
	files, err := Load(dir)
	if err != nil {
		return "", err
	}
	if v := files[WoSAPIKeyFile]; v != "" {
		return v, nil
	}
	env, err := LoadDotEnv(dotEnv)
	if err != nil {
		return "", err
	}
	return env[WoSAPIKeyEnv], nil
}
