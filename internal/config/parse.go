package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	maxConfigSize = 1 << 20 // 1MB is far beyond any real config
)

// readFile reads a file with a size cap.
func readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigSize)
	}

	return io.ReadAll(io.LimitReader(file, maxConfigSize))
}

// unmarshal decodes data using the path's extension to choose JSON or YAML.
// JSON input is rejected when two keys differ only by case, since encoding/json
// would silently merge them.
func unmarshal(path string, data []byte, v any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := detectCaseInsensitiveKeyCollisions(data); err != nil {
			return fmt.Errorf("case-insensitive key collision detected: %w", err)
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(v)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil && err != io.EOF { //nolint:errorlint // yaml returns bare io.EOF for empty input
			return err
		}
		return nil
	default:
		return fmt.Errorf("unknown config file extension: %s", path)
	}
}

// UnmarshalFile is unmarshal for callers outside the package that share the file conventions (themes).
func UnmarshalFile(path string, v any) error {
	data, err := readFile(path)
	if err != nil {
		return err
	}
	return unmarshal(path, data, v)
}

func detectCaseInsensitiveKeyCollisions(data []byte) error {
	var res any
	// Syntax errors are left for the main decode to report.
	if err := json.Unmarshal(data, &res); err != nil {
		return nil //nolint:nilerr // reported by the real decode
	}
	return checkKeys(res, "")
}

func checkKeys(obj any, path string) error {
	switch v := obj.(type) {
	case map[string]any:
		seen := make(map[string]string, len(v))
		for key, value := range v {
			lower := strings.ToLower(key)
			if first, ok := seen[lower]; ok {
				return fmt.Errorf("at '%s': '%s' and '%s'", join(path, key), key, first)
			}
			seen[lower] = key
			if err := checkKeys(value, join(path, key)); err != nil {
				return err
			}
		}
	case []any:
		for i, item := range v {
			if err := checkKeys(item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
