package pdftk

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/a3tai/fill-pdf-form/internal/form"
)

// ErrMalformedDump is returned when the field dump cannot be parsed.
var ErrMalformedDump = errors.New("malformed field dump")

const maxDumpLine = 4 * 1024 * 1024

var dumpLinePattern = regexp.MustCompile(`^(\w+): (.*)$`)

// QuoteLine turns a "Key: value" dump line into "Key: 'value'" so that values
// containing YAML indicators (": ", "#", leading "*" or "&") parse as plain
// strings. Other lines are returned unchanged.
func QuoteLine(line string) string {
	m := dumpLinePattern.FindStringSubmatch(line)
	if m == nil {
		return line
	}
	return m[1] + ": '" + strings.ReplaceAll(m[2], "'", "''") + "'"
}

// ParseFieldDump parses the output of "pdftk dump_data_fields". The dump is
// a series of "---" separated blocks, one per field. Repeated keys such as
// FieldStateOption are kept in order.
func ParseFieldDump(r io.Reader) ([]form.FieldRecord, error) {
	var quoted bytes.Buffer
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxDumpLine)
	for scanner.Scan() {
		quoted.WriteString(QuoteLine(strings.TrimSuffix(scanner.Text(), "\r")))
		quoted.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read field dump: %w", err)
	}

	dec := yaml.NewDecoder(&quoted)
	records := []form.FieldRecord{}
	for block := 1; ; block++ {
		var doc yaml.Node
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: %v", ErrMalformedDump, err)
		}

		rec, ok, err := recordFromNode(&doc)
		if err != nil {
			return nil, fmt.Errorf("%w: block %d: %v", ErrMalformedDump, block, err)
		}
		if ok {
			records = append(records, rec)
		}
	}

	return records, nil
}

// recordFromNode converts one dump block. Empty blocks report ok == false.
func recordFromNode(doc *yaml.Node) (form.FieldRecord, bool, error) {
	node := doc
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return form.FieldRecord{}, false, nil
		}
		node = node.Content[0]
	}

	switch node.Kind {
	case yaml.MappingNode:
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return form.FieldRecord{}, false, nil
		}
		return form.FieldRecord{}, false, fmt.Errorf("line %d: expected key/value pairs, got %q", node.Line, node.Value)
	default:
		return form.FieldRecord{}, false, fmt.Errorf("line %d: expected key/value pairs", node.Line)
	}

	var rec form.FieldRecord
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode || val.Kind != yaml.ScalarNode {
			return form.FieldRecord{}, false, fmt.Errorf("line %d: nested value", key.Line)
		}
		value := val.Value
		if val.Tag == "!!null" {
			value = ""
		}
		rec.Add(key.Value, value)
	}
	return rec, len(rec.Attributes) > 0, nil
}
