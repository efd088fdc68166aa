package validation

import "github.com/goliatone/go-formset/pkg/element"

const (
	InvalidClass    = "invalid"
	ValidClass      = "valid"
	FieldErrorClass = "field-error"
)

// MarkInvalid flags field and shows message next to it. A field carries at
// most one error element; an existing one keeps its text.
func MarkInvalid(field *element.Element, message string) {
	if field == nil {
		return
	}
	field.AddClass(InvalidClass).RemoveClass(ValidClass)
	field.SetAttr("aria-invalid", "true")

	parent := field.Parent()
	if parent == nil || parent.ChildByClass(FieldErrorClass) != nil {
		return
	}
	parent.Append(element.Div(FieldErrorClass+" error", element.Text(message)))
}

// MarkValid clears the invalid state of field and removes its error element.
func MarkValid(field *element.Element) {
	if field == nil {
		return
	}
	field.AddClass(ValidClass).RemoveClass(InvalidClass)
	field.RemoveAttr("aria-invalid")

	if parent := field.Parent(); parent != nil {
		if existing := parent.ChildByClass(FieldErrorClass); existing != nil {
			parent.Remove(existing)
		}
	}
}

// Apply decorates the controls under root: fields named in the result are
// marked invalid with their first message, the other checked fields valid.
// It returns the names that had no matching control.
func Apply(root *element.Element, result Result, checked ...string) []string {
	var missing []string
	for _, name := range result.Names() {
		field := root.Find(element.ByName(name))
		if field == nil {
			missing = append(missing, name)
			continue
		}
		MarkInvalid(field, result.Fields[name][0])
	}
	for _, name := range checked {
		if _, failed := result.Fields[name]; failed {
			continue
		}
		MarkValid(root.Find(element.ByName(name)))
	}
	return missing
}
