package render

import "github.com/goliatone/go-formset/pkg/notify"

// RenderOptions describe per-request data that renderers can use without
// mutating the group.
type RenderOptions struct {
	// Locale selects row labels and notice messages.
	Locale string
	// Translator resolves catalog keys. Renderers fall back to the embedded
	// catalog when nil.
	Translator notify.Translator
	// OnMissing controls the string used when a key has no translation.
	OnMissing MissingTranslationHandler
	// Action and Method are copied onto the wrapping form when set.
	Action string
	Method string
	// Hidden adds extra hidden inputs such as a CSRF token.
	Hidden map[string]string
	// Errors surfaces server-side feedback keyed by submitted field name
	// ("images-3-image") or by an equivalent dotted path.
	Errors map[string][]string
	// Notices are shown above the group. Blocking notices render as alerts,
	// the rest as banners that the runtime dismisses.
	Notices []notify.Notice
}

// Message translates key with the options' translator and locale.
func (o RenderOptions) Message(key string, args ...any) string {
	t := o.Translator
	if t == nil {
		t = notify.DefaultCatalog()
	}
	msg, err := t.Translate(o.Locale, key, args...)
	if err != nil || msg == "" {
		onMissing := o.OnMissing
		if onMissing == nil {
			onMissing = missingTranslationDefault
		}
		return onMissing(o.Locale, key, args, err)
	}
	return msg
}
