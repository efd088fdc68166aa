package element

// Div builds a <div> with a class list and children.
func Div(class string, children ...*Element) *Element {
	el := New("div")
	if class != "" {
		el.SetAttr("class", class)
	}
	return el.Append(children...)
}

// Label builds a <label> holding text.
func Label(text string, attrs ...Attr) *Element {
	return New("label", attrs...).Append(Text(text))
}

// Input builds an <input> of the given type.
func Input(inputType, name, id string, attrs ...Attr) *Element {
	el := New("input", A("type", inputType))
	if name != "" {
		el.SetAttr("name", name)
	}
	if id != "" {
		el.SetAttr("id", id)
	}
	for _, attr := range attrs {
		el.SetAttr(attr.Key, attr.Value)
	}
	return el
}

// Hidden builds <input type="hidden">.
func Hidden(name, id, value string) *Element {
	el := Input("hidden", name, id)
	if value != "" {
		el.SetAttr("value", value)
	}
	return el
}

// File builds <input type="file">.
func File(name, id string, attrs ...Attr) *Element {
	return Input("file", name, id, attrs...)
}

// Img builds an <img>.
func Img(src, alt string, attrs ...Attr) *Element {
	el := New("img", A("src", src), A("alt", alt))
	for _, attr := range attrs {
		el.SetAttr(attr.Key, attr.Value)
	}
	return el
}

// Button builds a <button> holding text.
func Button(buttonType, id, text string, attrs ...Attr) *Element {
	el := New("button", A("type", buttonType))
	if id != "" {
		el.SetAttr("id", id)
	}
	for _, attr := range attrs {
		el.SetAttr(attr.Key, attr.Value)
	}
	return el.Append(Text(text))
}
