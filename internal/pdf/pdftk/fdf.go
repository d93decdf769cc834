package pdftk

import (
	"bufio"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"

	"github.com/a3tai/fill-pdf-form/internal/form"
)

const (
	fdfHeader = "%FDF-1.2\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<\n/FDF\n<<\n/Fields [\n"
	fdfFooter = "]\n>>\n>>\nendobj\ntrailer\n\n<<\n/Root 1 0 R\n>>\n%%EOF\n"
)

// WriteFDF writes assignments as an FDF document accepted by "pdftk fill_form".
// Field names and values are encoded as UTF-16BE strings with a byte order mark.
func WriteFDF(w io.Writer, assignments []form.Assignment) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(fdfHeader); err != nil {
		return err
	}
	for _, a := range assignments {
		name, err := fdfString(a.Name)
		if err != nil {
			return fmt.Errorf("failed to encode field name %q: %w", a.Name, err)
		}
		value, err := fdfString(a.Value)
		if err != nil {
			return fmt.Errorf("failed to encode value of %q: %w", a.Name, err)
		}
		fmt.Fprintf(bw, "<</T(%s)/V(%s)>>\n", name, value)
	}
	if _, err := bw.WriteString(fdfFooter); err != nil {
		return err
	}
	return bw.Flush()
}

// fdfString encodes s as the body of a PDF literal string.
func fdfString(s string) (string, error) {
	enc := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()
	utf16, err := enc.Bytes([]byte(s))
	if err != nil {
		return "", err
	}

	// any byte of a code unit may collide with a delimiter or an end of line
	out := make([]byte, 0, len(utf16)+8)
	for _, b := range utf16 {
		switch b {
		case '(', ')', '\\':
			out = append(out, '\\', b)
		case '\r':
			out = append(out, '\\', 'r')
		case '\n':
			out = append(out, '\\', 'n')
		default:
			out = append(out, b)
		}
	}
	return string(out), nil
}
