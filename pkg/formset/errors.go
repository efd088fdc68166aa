package formset

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formset/pkg/notify"
)

var (
	// ErrMissingHandle means the page lacks the trigger, container or counter;
	// the group is left uninitialised.
	ErrMissingHandle = errors.New("formset: missing page handle")
	// ErrInvalidCounter means the counter value is not a non-negative integer.
	ErrInvalidCounter = errors.New("formset: invalid management counter")
	// ErrMissingCounter means a submission carries no counter value.
	ErrMissingCounter = errors.New("formset: missing management counter")
	// ErrNoDeleteFlag is returned when soft-deleting a row without a DELETE field.
	ErrNoDeleteFlag = errors.New("formset: row has no delete flag")
	// ErrNoSelectionHandler is returned when a file input has no handler attached.
	ErrNoSelectionHandler = errors.New("formset: no selection handler attached")
)

// LimitError reports that a group already holds its maximum number of rows.
type LimitError struct {
	Prefix string
	Max    int
	Key    string
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("formset: %s reached the maximum of %d rows", e.Prefix, e.Max)
}

// Notice renders the error as a blocking alert.
func (e *LimitError) Notice(t notify.Translator, locale string) notify.Notice {
	return notify.Alert(e.Key, notify.Message(t, locale, e.Key, e.Max))
}
