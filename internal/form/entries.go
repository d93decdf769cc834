package form

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidEntries is returned when an entries document is not a flat
// mapping of field names to scalar values.
var ErrInvalidEntries = errors.New("invalid entries")

// Entries is an ordered mapping of field name to value. It is serialized as a
// top-level YAML mapping, one key per line, in slice order.
type Entries []Assignment

// TemplateEntries returns entries with an empty value for every named field.
func TemplateEntries(records []FieldRecord) Entries {
	names := FieldNames(records)
	entries := make(Entries, 0, len(names))
	for _, name := range names {
		entries = append(entries, Assignment{Name: name})
	}
	return entries
}

// Keys returns the entry names in order.
func (e Entries) Keys() []string {
	keys := make([]string, 0, len(e))
	for _, a := range e {
		keys = append(keys, a.Name)
	}
	return keys
}

// Assignments returns the entries as a fill list.
func (e Entries) Assignments() []Assignment {
	return append([]Assignment(nil), e...)
}

// MarshalYAML implements yaml.Marshaler.
func (e Entries) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, a := range e {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: a.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: a.Value},
		)
	}
	return node, nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Duplicate keys are kept.
func (e *Entries) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		*e = Entries{}
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: line %d: top level must be a mapping", ErrInvalidEntries, value.Line)
	}

	out := make(Entries, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return fmt.Errorf("%w: line %d: field name must be a string", ErrInvalidEntries, key.Line)
		}
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("%w: line %d: value of %q must be a string", ErrInvalidEntries, val.Line, key.Value)
		}
		a := Assignment{Name: key.Value}
		if val.Tag != "!!null" {
			a.Value = val.Value
		}
		out = append(out, a)
	}
	*e = out
	return nil
}

// DecodeEntries reads an entries document. An empty document yields no entries.
func DecodeEntries(r io.Reader) (Entries, error) {
	var entries Entries
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
		if errors.Is(err, io.EOF) {
			return Entries{}, nil
		}
		if errors.Is(err, ErrInvalidEntries) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntries, err)
	}
	if entries == nil {
		entries = Entries{}
	}
	return entries, nil
}

// EncodeEntries writes entries as a block-style YAML mapping.
func EncodeEntries(w io.Writer, entries Entries) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("failed to encode entries: %w", err)
	}
	return enc.Close()
}

// ReadEntries loads an entries file.
func ReadEntries(path string) (Entries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := DecodeEntries(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// WriteEntries writes entries to path, replacing any existing file.
func WriteEntries(path string, entries Entries) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeEntries(f, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// DerivePDFPath replaces the extension of an entries file with ".pdf".
func DerivePDFPath(entriesPath string) string {
	return strings.TrimSuffix(entriesPath, filepath.Ext(entriesPath)) + ".pdf"
}
