package vanilla

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassForm    ChromeClass = "formset-form"
	ClassFormset ChromeClass = "formset"
	ClassNotices ChromeClass = "formset-notices"
	ClassAlert   ChromeClass = "alert alert-blocking"
	ClassBanner  ChromeClass = "alert alert-banner"
	ClassErrors  ChromeClass = "formset-errors"
)

// ChromeClasses overrides the chrome classes. Empty values keep the defaults.
type ChromeClasses struct {
	Form    string
	Formset string
	Notices string
	Alert   string
	Banner  string
	Errors  string
}

func (c ChromeClasses) withDefaults() ChromeClasses {
	pick := func(value string, fallback ChromeClass) string {
		if value == "" {
			return string(fallback)
		}
		return value
	}
	return ChromeClasses{
		Form:    pick(c.Form, ClassForm),
		Formset: pick(c.Formset, ClassFormset),
		Notices: pick(c.Notices, ClassNotices),
		Alert:   pick(c.Alert, ClassAlert),
		Banner:  pick(c.Banner, ClassBanner),
		Errors:  pick(c.Errors, ClassErrors),
	}
}

func (c ChromeClasses) context() map[string]any {
	return map[string]any{
		"form":    c.Form,
		"formset": c.Formset,
		"notices": c.Notices,
		"alert":   c.Alert,
		"banner":  c.Banner,
		"errors":  c.Errors,
	}
}
