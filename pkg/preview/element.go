package preview

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formset/pkg/element"
)

// ContainerClass marks the preview set rendered next to a file input.
const ContainerClass = "image-previews"

var (
	labelPolicyOnce sync.Once
	labelPolicy     *bluemonday.Policy
)

// Label strips markup from a filename before it is shown as text.
func Label(filename string) string {
	labelPolicyOnce.Do(func() {
		labelPolicy = bluemonday.StrictPolicy()
	})
	cleaned := labelPolicy.Sanitize(strings.TrimSpace(filename))
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// Element builds one preview item: the thumbnail plus a filename label.
func Element(p Preview) *element.Element {
	label := Label(p.Filename)
	img := element.Img(p.DataURI, label,
		element.A("style", "max-width: 100px; max-height: 100px;"),
		element.A("data-preview-key", p.Key),
	)
	name := element.Div("image-preview-name", element.Text(label))
	name.SetAttr("style", "font-size: 12px; margin-top: 5px;")
	return element.Div("image-preview-item", img, name)
}

// Container builds the preview set for a selection, or nil when empty.
func Container(previews []Preview) *element.Element {
	if len(previews) == 0 {
		return nil
	}
	container := element.Div(ContainerClass)
	for _, p := range previews {
		container.Append(Element(p))
	}
	return container
}
