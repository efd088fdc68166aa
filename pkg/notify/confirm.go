package notify

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(message string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(message string) bool

func (fn ConfirmFunc) Confirm(message string) bool {
	if fn == nil {
		return false
	}
	return fn(message)
}

var (
	// AlwaysConfirm approves every prompt.
	AlwaysConfirm Confirmer = ConfirmFunc(func(string) bool { return true })
	// NeverConfirm declines every prompt.
	NeverConfirm Confirmer = ConfirmFunc(func(string) bool { return false })
)

// ConfirmKey translates key and asks c. A nil Confirmer declines.
func ConfirmKey(c Confirmer, t Translator, locale, key string) bool {
	if c == nil {
		return false
	}
	return c.Confirm(Message(t, locale, key))
}
