// Package snapshot persists serialized timeline documents as JSON or YAML
// files for save/restore and export/import.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kangezhang/learngraphics/internal/timeline"
)

// Format names a snapshot encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. The empty string maps to JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown snapshot format %q (want json or yaml)", s)
}

// DetectFormat infers the encoding from a file path's extension, defaulting
// to JSON.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Encode renders doc in the given format.
func Encode(doc timeline.Document, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encoding snapshot as JSON: %w", err)
		}
		return buf.Bytes(), nil
	case FormatYAML:
		out, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encoding snapshot as YAML: %w", err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown snapshot format %q", format)
}

// Decode parses a snapshot document in the given format.
func Decode(data []byte, format Format) (timeline.Document, error) {
	var doc timeline.Document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return timeline.Document{}, fmt.Errorf("decoding JSON snapshot: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return timeline.Document{}, fmt.Errorf("decoding YAML snapshot: %w", err)
		}
	default:
		return timeline.Document{}, fmt.Errorf("unknown snapshot format %q", format)
	}
	return doc, nil
}

// WriteFile encodes doc and writes it to path. An empty format is inferred
// from the path's extension.
func WriteFile(path string, doc timeline.Document, format Format) error {
	if format == "" {
		format = DetectFormat(path)
	}
	data, err := Encode(doc, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	return nil
}

// ReadFile reads and decodes the snapshot at path. An empty format is
// inferred from the path's extension.
func ReadFile(path string, format Format) (timeline.Document, error) {
	if format == "" {
		format = DetectFormat(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return timeline.Document{}, fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	return Decode(data, format)
}
