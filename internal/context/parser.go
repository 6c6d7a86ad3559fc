// Package context builds layered key/value configuration from the
// environment, JSON or YAML files, JSON strings and key=value flags.
package context

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultEnvPrefix is the environment prefix of the run context.
const DefaultEnvPrefix = "FTLAUNCH_CONTEXT"

// ParseKV parses a key=value pair, inferring int, float and bool values.
func ParseKV(kvPair string) (string, any, error) {
	key, raw, found := strings.Cut(kvPair, "=")
	if !found {
		return "", nil, fmt.Errorf("invalid format, expected key=value: %s", kvPair)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", nil, fmt.Errorf("empty key in key=value pair")
	}
	return key, inferValue(strings.TrimSpace(raw)), nil
}

func inferValue(s string) any {
	// ints first so "1" is not read as true
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if s == "true" || s == "false" {
		return s == "true"
	}
	return s
}

// ParseJSON parses a JSON document of any shape.
func ParseJSON(jsonStr string) (any, error) {
	var result any
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return result, nil
}

// ParseFile reads a JSON or YAML file; .yaml and .yml select YAML.
func ParseFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var result any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("invalid JSON in %s: %w", path, err)
		}
	}
	return result, nil
}

// Decode converts a parsed document into out, which is typically a pointer to
// a struct with json tags.
func Decode(doc any, out any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to re-encode document: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}

// ParseEnvWithPrefix reads PREFIX as a JSON object and PREFIX_KEY variables
// as single keys. Keys are lower-cased; it returns nil when nothing is set.
func ParseEnvWithPrefix(prefix string) map[string]any {
	values := make(map[string]any)

	if jsonStr := os.Getenv(prefix); jsonStr != "" {
		if parsed, err := ParseJSON(jsonStr); err == nil {
			if m, ok := parsed.(map[string]any); ok {
				maps.Copy(values, m)
			}
		}
	}

	envPrefix := prefix + "_"
	for _, env := range os.Environ() {
		name, raw, found := strings.Cut(env, "=")
		if !found || !strings.HasPrefix(name, envPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, envPrefix))
		values[key] = inferValue(raw)
	}

	if len(values) == 0 {
		return nil
	}
	return values
}

// MergeContexts merges sources left to right; later keys win. A non-object
// source is returned as-is only when nothing was merged before it.
func MergeContexts(contexts ...any) any {
	result := make(map[string]any)

	for _, c := range contexts {
		switch v := c.(type) {
		case nil:
		case map[string]any:
			maps.Copy(result, v)
		default:
			if len(result) == 0 {
				return v
			}
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// BuildContext builds the run context with the default environment prefix.
func BuildContext(jsonStr string, kvPairs []string, filePath string) (any, error) {
	return BuildContextWithPrefix(DefaultEnvPrefix, jsonStr, kvPairs, filePath)
}

// BuildContextWithPrefix layers environment < file < JSON string < key=value pairs.
func BuildContextWithPrefix(envPrefix, jsonStr string, kvPairs []string, filePath string) (any, error) {
	var layers []any

	if envCtx := ParseEnvWithPrefix(envPrefix); envCtx != nil {
		layers = append(layers, envCtx)
	}

	if filePath != "" {
		fileCtx, err := ParseFile(filePath)
		if err != nil {
			return nil, err
		}
		layers = append(layers, fileCtx)
	}

	if jsonStr != "" {
		jsonCtx, err := ParseJSON(jsonStr)
		if err != nil {
			return nil, err
		}
		layers = append(layers, jsonCtx)
	}

	if len(kvPairs) > 0 {
		kvCtx := make(map[string]any, len(kvPairs))
		for _, kv := range kvPairs {
			key, value, err := ParseKV(kv)
			if err != nil {
				return nil, err
			}
			kvCtx[key] = value
		}
		layers = append(layers, kvCtx)
	}

	return MergeContexts(layers...), nil
}
