package pdfcpu

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// exportedField is the part of a field entry in pdfcpu's form export that
// identifies it.
type exportedField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// formFieldIDs returns pdfcpu's field ids mapped to pdfcpu's field names.
// pdfcpu names a field after the dictionary it fills, which for merged
// field/widget kids is the parent rather than the qualified name.
func formFieldIDs(pdfPath string) (map[string]string, error) {
	file, err := os.Open(pdfPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var out bytes.Buffer
	if err := api.ExportFormJSON(file, &out, filepath.Base(pdfPath), newConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to list form fields: %w", err)
	}

	var doc struct {
		Forms []map[string]json.RawMessage `json:"forms"`
	}
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode form fields: %w", err)
	}

	ids := make(map[string]string)
	for _, group := range doc.Forms {
		for _, raw := range group {
			var entries []exportedField
			if err := json.Unmarshal(raw, &entries); err != nil {
				continue // not a field list
			}
			for _, e := range entries {
				if e.ID != "" {
					ids[e.ID] = e.Name
				}
			}
		}
	}
	return ids, nil
}

// resolveIDs sets id and fillAs on every field pdfcpu knows, using the
// innermost object of the field's chain that pdfcpu lists.
func resolveIDs(fields []field, ids map[string]string) {
	for i := range fields {
		for _, nr := range fields[i].objNums {
			id := strconv.Itoa(nr)
			if name, ok := ids[id]; ok {
				fields[i].id = id
				fields[i].fillAs = name
				break
			}
		}
	}
}

// lockIDs returns the distinct pdfcpu ids of fields.
func lockIDs(fields []field) []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range fields {
		if f.id == "" || seen[f.id] {
			continue
		}
		seen[f.id] = true
		out = append(out, f.id)
	}
	return out
}
