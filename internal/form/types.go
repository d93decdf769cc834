package form

// Well-known attribute keys reported by the field extractors.
const (
	KeyFieldType        = "FieldType"
	KeyFieldName        = "FieldName"
	KeyFieldFlags       = "FieldFlags"
	KeyFieldValue       = "FieldValue"
	KeyFieldStateOption = "FieldStateOption"
	KeyFieldMaxLength   = "FieldMaxLength"
)

// Attribute is a single key/value pair of a field record.
type Attribute struct {
	Key   string
	Value string
}

// FieldRecord holds the metadata of one form field as reported by an
// extraction engine. Attributes keep their original order, and keys may repeat.
type FieldRecord struct {
	Attributes []Attribute
}

// NewFieldRecord builds a record from alternating key/value strings.
func NewFieldRecord(kv ...string) FieldRecord {
	var rec FieldRecord
	for i := 0; i+1 < len(kv); i += 2 {
		rec.Add(kv[i], kv[i+1])
	}
	return rec
}

// Add appends an attribute to the record.
func (r *FieldRecord) Add(key, value string) {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
}

// Get returns the first value stored under key.
func (r FieldRecord) Get(key string) (string, bool) {
	for _, attr := range r.Attributes {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// Values returns every value stored under key, in order.
func (r FieldRecord) Values(key string) []string {
	var values []string
	for _, attr := range r.Attributes {
		if attr.Key == key {
			values = append(values, attr.Value)
		}
	}
	return values
}

// Name returns the FieldName attribute, or "" if the record has none.
func (r FieldRecord) Name() string {
	name, _ := r.Get(KeyFieldName)
	return name
}

// Type returns the FieldType attribute, or "" if the record has none.
func (r FieldRecord) Type() string {
	typ, _ := r.Get(KeyFieldType)
	return typ
}

// Assignment is a value to be written into the named field.
type Assignment struct {
	Name  string
	Value string
}

// FieldNames returns the names of all records that carry one, in order.
func FieldNames(records []FieldRecord) []string {
	names := make([]string, 0, len(records))
	for _, rec := range records {
		if name := rec.Name(); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// IdentityAssignments sets every field's value to its own name, so that a
// filled copy shows which field is which.
func IdentityAssignments(records []FieldRecord) []Assignment {
	names := FieldNames(records)
	assignments := make([]Assignment, 0, len(names))
	for _, name := range names {
		assignments = append(assignments, Assignment{Name: name, Value: name})
	}
	return assignments
}
