package formset

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-formset/pkg/element"
	"github.com/goliatone/go-formset/pkg/notify"
)

// Row is one repeatable unit of a group.
type Row struct {
	Index int
	// Static rows were rendered by the server before the group was initialised.
	Static  bool
	Element *element.Element
	File    *FileInput
	Hidden  map[string]*element.Element
}

// MarkDeleted sets or clears the soft-delete flag of an update row. The row
// node always stays in the tree.
func (r *Row) MarkDeleted(deleted bool) error {
	flag := r.Hidden[FieldDelete]
	if flag == nil {
		return ErrNoDeleteFlag
	}
	if deleted {
		flag.SetAttr("value", "on")
		r.Element.AddClass("is-deleted")
	} else {
		flag.RemoveAttr("value")
		r.Element.RemoveClass("is-deleted")
	}
	return nil
}

// Deleted reports whether the soft-delete flag is set.
func (r *Row) Deleted() bool {
	flag := r.Hidden[FieldDelete]
	if flag == nil {
		return false
	}
	return truthy(flag.AttrOr("value", ""))
}

type rowBuilder struct {
	cfg        Config
	translator notify.Translator
	locale     string
}

func (b rowBuilder) label(index int) string {
	if b.cfg.Kind == KindUpdate {
		return notify.Message(b.translator, b.locale, notify.KeyNewRowLabel)
	}
	return notify.Message(b.translator, b.locale, notify.KeyRowLabel, index+1)
}

// build constructs the row markup for index:
//
//	<div class="image-form-item" data-formset-index="i">
//	  <div class="form-group">
//	    <label>..</label><input type="file"> [hidden fields]
//	  </div>
//	</div>
func (b rowBuilder) build(index int, mu *sync.Mutex) *Row {
	prefix := b.cfg.Prefix
	fileID := FieldElementID(prefix, index, FieldImage)

	fileEl := element.File(FieldName(prefix, index, FieldImage), fileID, element.A("class", "form-control"))
	if b.cfg.Kind == KindComment {
		fileEl.SetAttr("accept", "image/*")
	}

	group := element.Div("form-group",
		element.Label(b.label(index), element.A("for", fileID)),
		fileEl,
	)

	hidden := make(map[string]*element.Element)
	for _, field := range b.cfg.HiddenFields() {
		input := element.Hidden(FieldName(prefix, index, field), FieldElementID(prefix, index, field), "")
		hidden[field] = input
		group.Append(input)
	}

	wrapper := element.Div(RowClass, group)
	if b.cfg.Kind == KindComment {
		wrapper.AddClass(CommentRowClass)
	}
	wrapper.SetAttr("data-formset-index", strconv.Itoa(index))

	return &Row{
		Index:   index,
		Element: wrapper,
		File:    newFileInput(fileEl, mu),
		Hidden:  hidden,
	}
}

var rowFieldPattern = regexp.MustCompile(`^(.+)-(\d+)-([A-Za-z_]+)$`)

// ParseFieldName splits "images-3-image" into its prefix, index and field.
func ParseFieldName(name string) (prefix string, index int, field string, ok bool) {
	match := rowFieldPattern.FindStringSubmatch(strings.TrimSpace(name))
	if match == nil {
		return "", 0, "", false
	}
	index, err := strconv.Atoi(match[2])
	if err != nil {
		return "", 0, "", false
	}
	return match[1], index, match[3], true
}

// adoptRows wraps file inputs already present in the container.
func adoptRows(cfg Config, container *element.Element, mu *sync.Mutex) []*Row {
	var rows []*Row
	for _, input := range container.FindAll(element.FileInputs()) {
		prefix, index, field, ok := ParseFieldName(input.Name())
		if !ok || prefix != cfg.Prefix || field != FieldImage {
			continue
		}
		rowEl := closestRow(input, container)
		row := &Row{
			Index:   index,
			Static:  true,
			Element: rowEl,
			File:    newFileInput(input, mu),
			Hidden:  make(map[string]*element.Element),
		}
		for _, hiddenField := range []string{FieldID, FieldPost, FieldDelete} {
			if el := rowEl.Find(element.ByName(FieldName(cfg.Prefix, index, hiddenField))); el != nil {
				row.Hidden[hiddenField] = el
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func closestRow(input, container *element.Element) *element.Element {
	for node := input.Parent(); node != nil && node != container; node = node.Parent() {
		if node.HasClass(RowClass) {
			return node
		}
	}
	if parent := input.Parent(); parent != nil {
		return parent
	}
	return input
}

func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}
