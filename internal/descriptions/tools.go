package descriptions

import "sort"

// Tool descriptions with practical examples, shown to MCP clients

const (
	FormFieldsDescription = `List the fillable form fields of a PDF.

**When to use:** Before filling a form, to learn the exact field names, their types and the values a field accepts.

**What you get:** One block per field with FieldType, FieldName, FieldFlags, FieldValue, FieldMaxLength and, for checkboxes, radio buttons and choice lists, one FieldStateOption line per accepted value.

**Examples:**
• Inspect an application form: "Which fields does application.pdf have?"
• Find the accepted values of a checkbox: look for FieldStateOption lines such as Off and Yes

**Best practices:** Field names are often cryptic (topmostSubform[0].Page1[0].f1_01[0]); use pdf_form_explain to see which box on the page a name belongs to.`

	FormExplainDescription = `Write a copy of a PDF form in which every field shows its own name.

**When to use:** When field names do not tell you which box on the page they belong to.

**What you get:** A new PDF at output_path where each text field contains its field name. The input file is not changed.

**Examples:**
• Map names to boxes: "Explain tax-form.pdf into tax-form-explained.pdf"

**Common workflows:**
1. pdf_form_explain → read the explained PDF → pdf_form_template → edit values → pdf_form_fill`

	FormTemplateDescription = `Write a YAML entries file with one empty value per form field.

**When to use:** To start filling a form; the file lists every field name in document order.

**What you get:** A YAML mapping from field name to value, all values empty. The file content is echoed in the response.

**Examples:**
• "Create entries.yml for application.pdf", then set name: Jane Doe and agree: "Yes"

**Best practices:** Checkbox and radio values must be one of the field's FieldStateOption values. Fields left empty are cleared when filling.`

	FormFillDescription = `Fill a PDF form with the values of a YAML entries file.

**When to use:** After writing the values into an entries file created by pdf_form_template.

**What you get:** A filled PDF at output_path, or next to the entries file with a .pdf extension when output_path is omitted (entries.yml → entries.pdf). Set flatten to make the fields non-editable.

**Examples:**
• "Fill application.pdf with entries.yml into application-filled.pdf"
• "Fill and flatten contract.pdf with signed.yml"

**Best practices:** Keys that name no field are ignored. Quote values YAML would otherwise read as booleans or numbers, such as "Yes" or "007".`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"pdf_form_fields":   FormFieldsDescription,
	"pdf_form_explain":  FormExplainDescription,
	"pdf_form_template": FormTemplateDescription,
	"pdf_form_fill":     FormFillDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the names of all described tools, sorted
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
