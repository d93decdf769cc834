package pdfcpu

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/a3tai/fill-pdf-form/internal/form"
)

// maxFieldDepth bounds the field tree walk so cyclic Kids arrays terminate.
const maxFieldDepth = 32

// Field flag bits, PDF 32000-1 section 12.7.
const (
	flagRadio      = 1 << 15
	flagPushbutton = 1 << 16
	flagCombo      = 1 << 17
)

type fieldKind int

const (
	kindUnknown fieldKind = iota
	kindText
	kindCheckbox
	kindRadio
	kindPushbutton
	kindCombo
	kindList
	kindSignature
)

// field is a terminal AcroForm field.
type field struct {
	name    string
	objNums []int // object numbers of the field and its ancestors, innermost first
	// pdfcpu's own id and name for the field, see resolveIDs
	id      string
	fillAs  string
	ft      string
	flags   int
	kind    fieldKind
	value   string
	states  []string
	maxLen  int
	hasMax  bool
	options []string
}

// inherited holds the inheritable attributes of a parent field.
type inherited struct {
	ft    string
	flags int
	value types.Object
}

// record converts the field into the attribute layout reported by pdftk.
func (f field) record() form.FieldRecord {
	var rec form.FieldRecord
	rec.Add(form.KeyFieldType, pdftkType(f.ft))
	rec.Add(form.KeyFieldName, f.name)
	rec.Add(form.KeyFieldFlags, strconv.Itoa(f.flags))
	rec.Add(form.KeyFieldValue, f.value)
	for _, s := range f.states {
		rec.Add(form.KeyFieldStateOption, s)
	}
	for _, o := range f.options {
		rec.Add(form.KeyFieldStateOption, o)
	}
	if f.hasMax {
		rec.Add(form.KeyFieldMaxLength, strconv.Itoa(f.maxLen))
	}
	return rec
}

func pdftkType(ft string) string {
	switch ft {
	case "Tx":
		return "Text"
	case "Btn":
		return "Button"
	case "Ch":
		return "Choice"
	case "Sig":
		return "Signature"
	default:
		return ft
	}
}

func classify(ft string, flags int) fieldKind {
	switch ft {
	case "Tx":
		return kindText
	case "Btn":
		if flags&flagPushbutton != 0 {
			return kindPushbutton
		}
		if flags&flagRadio != 0 {
			return kindRadio
		}
		return kindCheckbox
	case "Ch":
		if flags&flagCombo != 0 {
			return kindCombo
		}
		return kindList
	case "Sig":
		return kindSignature
	default:
		return kindUnknown
	}
}

// collectFields walks the AcroForm field tree of ctx and returns its
// terminal fields with fully qualified names.
func collectFields(ctx *model.Context) ([]field, error) {
	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return nil, nil
	}
	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroFormDict == nil {
		return nil, nil
	}

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return nil, nil
	}
	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference Fields array: %w", err)
	}

	var fields []field
	for _, obj := range fieldsArray {
		if err := walkField(ctx, obj, "", nil, inherited{}, 0, &fields); err != nil {
			return nil, err
		}
	}
	return fields, nil
}

func walkField(ctx *model.Context, obj types.Object, parentName string, ancestors []int, inh inherited, depth int, out *[]field) error {
	if depth > maxFieldDepth {
		return fmt.Errorf("field tree deeper than %d levels", maxFieldDepth)
	}

	d, err := ctx.DereferenceDict(obj)
	if err != nil {
		return fmt.Errorf("failed to dereference field: %w", err)
	}
	if d == nil {
		return nil
	}

	objNums := ancestors
	if ir, ok := obj.(types.IndirectRef); ok {
		objNums = append([]int{ir.ObjectNumber.Value()}, ancestors...)
	}

	name := parentName
	if partial := stringEntry(ctx, d, "T"); partial != "" {
		if name != "" {
			name += "."
		}
		name += partial
	}

	if ftObj, found := d.Find("FT"); found {
		if ft, err := ctx.DereferenceName(ftObj, model.V10, nil); err == nil {
			inh.ft = string(ft)
		}
	}
	if ffObj, found := d.Find("Ff"); found {
		if ff, err := ctx.DereferenceInteger(ffObj); err == nil && ff != nil {
			inh.flags = int(*ff)
		}
	}
	if v, found := d.Find("V"); found {
		inh.value = v
	}

	var widgets []types.Dict
	var children []types.Object
	if kidsObj, found := d.Find("Kids"); found {
		kids, err := ctx.DereferenceArray(kidsObj)
		if err != nil {
			return fmt.Errorf("failed to dereference Kids of %q: %w", name, err)
		}
		for _, kid := range kids {
			kd, err := ctx.DereferenceDict(kid)
			if err != nil || kd == nil {
				continue
			}
			if _, named := kd.Find("T"); named {
				children = append(children, kid)
			} else {
				widgets = append(widgets, kd)
			}
		}
	}

	if len(children) > 0 {
		for _, child := range children {
			if err := walkField(ctx, child, name, objNums, inh, depth+1, out); err != nil {
				return err
			}
		}
		return nil
	}

	if name == "" {
		return nil
	}

	f := field{
		name:    name,
		objNums: objNums,
		ft:      inh.ft,
		flags:   inh.flags,
		kind:    classify(inh.ft, inh.flags),
	}
	if inh.value != nil {
		f.value = valueString(ctx, inh.value)
	}
	if f.kind == kindCheckbox || f.kind == kindRadio {
		f.states = appearanceStates(ctx, append([]types.Dict{d}, widgets...))
	}
	if f.kind == kindCombo || f.kind == kindList {
		f.options = choiceOptions(ctx, d)
	}
	if mlObj, found := d.Find("MaxLen"); found {
		if ml, err := ctx.DereferenceInteger(mlObj); err == nil && ml != nil {
			f.maxLen, f.hasMax = int(*ml), true
		}
	}

	*out = append(*out, f)
	return nil
}

func stringEntry(ctx *model.Context, d types.Dict, key string) string {
	obj, found := d.Find(key)
	if !found {
		return ""
	}
	s, err := ctx.DereferenceStringOrHexLiteral(obj, model.V10, nil)
	if err != nil {
		return ""
	}
	return s
}

// valueString renders a V entry the way pdftk reports it.
func valueString(ctx *model.Context, obj types.Object) string {
	if s, err := ctx.DereferenceStringOrHexLiteral(obj, model.V10, nil); err == nil {
		return s
	}
	if n, err := ctx.DereferenceName(obj, model.V10, nil); err == nil {
		return string(n)
	}
	if arr, err := ctx.DereferenceArray(obj); err == nil && len(arr) > 0 {
		return valueString(ctx, arr[0])
	}
	return ""
}

// appearanceStates lists the normal appearance state names of a button,
// "Off" first and the rest sorted.
func appearanceStates(ctx *model.Context, dicts []types.Dict) []string {
	seen := map[string]bool{}
	for _, d := range dicts {
		apObj, found := d.Find("AP")
		if !found {
			continue
		}
		ap, err := ctx.DereferenceDict(apObj)
		if err != nil || ap == nil {
			continue
		}
		nObj, found := ap.Find("N")
		if !found {
			continue
		}
		n, err := ctx.DereferenceDict(nObj)
		if err != nil || n == nil {
			continue
		}
		for state := range n {
			seen[state] = true
		}
	}

	var states []string
	for s := range seen {
		if s != "Off" {
			states = append(states, s)
		}
	}
	sort.Strings(states)
	if seen["Off"] {
		states = append([]string{"Off"}, states...)
	}
	return states
}

// choiceOptions returns the export values of a choice field.
func choiceOptions(ctx *model.Context, d types.Dict) []string {
	optObj, found := d.Find("Opt")
	if !found {
		return nil
	}
	optArray, err := ctx.DereferenceArray(optObj)
	if err != nil {
		return nil
	}

	var options []string
	for _, opt := range optArray {
		if s, err := ctx.DereferenceStringOrHexLiteral(opt, model.V10, nil); err == nil {
			options = append(options, s)
		} else if pair, err := ctx.DereferenceArray(opt); err == nil && len(pair) >= 1 {
			if export, err := ctx.DereferenceStringOrHexLiteral(pair[0], model.V10, nil); err == nil {
				options = append(options, export)
			}
		}
	}
	return options
}
