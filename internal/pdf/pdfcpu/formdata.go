package pdfcpu

import (
	"github.com/a3tai/fill-pdf-form/internal/form"
)

// formGroup mirrors the JSON document accepted by pdfcpu's form filling.
type formGroup struct {
	Forms []formData `json:"forms"`
}

type formData struct {
	TextFields        []textField  `json:"textfield,omitempty"`
	CheckBoxes        []checkBox   `json:"checkbox,omitempty"`
	RadioButtonGroups []radioGroup `json:"radiobuttongroup,omitempty"`
	ComboBoxes        []comboBox   `json:"combobox,omitempty"`
	ListBoxes         []listBox    `json:"listbox,omitempty"`
}

type textField struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

type checkBox struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Value bool   `json:"value"`
}

type radioGroup struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

type comboBox struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

type listBox struct {
	ID     string   `json:"id,omitempty"`
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// buildFormGroup sorts assignments into pdfcpu's per-type lists, addressing
// each field by pdfcpu's id. It returns the number of assignments that
// matched a fillable field pdfcpu knows.
func buildFormGroup(fields []field, assignments []form.Assignment) (formGroup, int) {
	byName := make(map[string]field, len(fields))
	for _, f := range fields {
		if _, dup := byName[f.name]; !dup {
			byName[f.name] = f
		}
	}

	var data formData
	matched := 0
	for _, a := range assignments {
		f, ok := byName[a.Name]
		if !ok || f.id == "" {
			continue
		}
		switch f.kind {
		case kindText:
			data.TextFields = append(data.TextFields, textField{ID: f.id, Name: f.fillAs, Value: a.Value})
		case kindCheckbox:
			data.CheckBoxes = append(data.CheckBoxes, checkBox{ID: f.id, Name: f.fillAs, Value: checked(a.Value, f.states)})
		case kindRadio:
			data.RadioButtonGroups = append(data.RadioButtonGroups, radioGroup{ID: f.id, Name: f.fillAs, Value: a.Value})
		case kindCombo:
			data.ComboBoxes = append(data.ComboBoxes, comboBox{ID: f.id, Name: f.fillAs, Value: a.Value})
		case kindList:
			values := []string{a.Value}
			if a.Value == "" {
				values = []string{}
			}
			data.ListBoxes = append(data.ListBoxes, listBox{ID: f.id, Name: f.fillAs, Values: values})
		default:
			continue
		}
		matched++
	}

	return formGroup{Forms: []formData{data}}, matched
}
