// Package validation runs the advisory form checks shown before submission:
// required fields, the profile form, the comment form and auth forms. The
// server stays the final authority.
package validation

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-formset/internal/logging"
	"github.com/goliatone/go-formset/pkg/element"
	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/notify"
	"github.com/goliatone/go-formset/pkg/render"
)

const (
	EmailField    = "user-email"
	BirthdayField = "profile-birthday"
	CommentField  = "text"

	// BirthdayLayout is the value format of date inputs.
	BirthdayLayout = "2006-01-02"

	DefaultCommentMaxFiles = formset.DefaultCommentMaxRows
)

// ErrInvalid is matched by every *Error.
var ErrInvalid = errors.New("validation: form is invalid")

// Error wraps a failed Result.
type Error struct {
	Result Result
}

func (e *Error) Error() string {
	return fmt.Sprintf("validation: %d invalid field(s): %s", len(e.Result.Fields), strings.Join(e.Result.Names(), ", "))
}

func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}

// Result collects field messages keyed by submitted name, form-level
// messages, and the blocking notice shown to the user.
type Result struct {
	Fields map[string][]string
	Form   []string
	Notice *notify.Notice
	// Focus is the first offending field.
	Focus string
}

// Valid reports whether no check failed.
func (r Result) Valid() bool {
	return len(r.Fields) == 0 && len(r.Form) == 0
}

// Err returns *Error when the result is invalid.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	return &Error{Result: r}
}

// Names returns the invalid field names in sorted order.
func (r Result) Names() []string {
	names := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Mapping converts the result into the renderer error mapping.
func (r Result) Mapping() render.ErrorMapping {
	mapping := render.ErrorMapping{Form: render.MergeFormErrors(r.Form)}
	if len(r.Fields) > 0 {
		mapping.Fields = make(map[string][]string, len(r.Fields))
		for name, messages := range r.Fields {
			mapping.Fields[name] = slices.Clone(messages)
		}
	}
	return mapping
}

func (r *Result) addField(name, message string) {
	if r.Fields == nil {
		r.Fields = make(map[string][]string)
	}
	r.Fields[name] = append(r.Fields[name], message)
	if r.Focus == "" {
		r.Focus = name
	}
}

func (r *Result) alert(key, message string) {
	if r.Notice != nil {
		return
	}
	notice := notify.Alert(key, message)
	r.Notice = &notice
}

// Option configures a Validator.
type Option func(*Validator)

// WithTranslator sets the message catalog.
func WithTranslator(t notify.Translator) Option {
	return func(v *Validator) {
		if t != nil {
			v.translator = t
		}
	}
}

// WithLocale sets the message locale.
func WithLocale(locale string) Option {
	return func(v *Validator) {
		v.locale = strings.TrimSpace(locale)
	}
}

// WithNotifier receives the blocking notice of every failed check.
func WithNotifier(n notify.Notifier) Option {
	return func(v *Validator) {
		if n != nil {
			v.notifier = n
		}
	}
}

// WithClock overrides the time source used for date checks.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithCommentMaxFiles overrides the comment form file limit.
func WithCommentMaxFiles(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.commentMaxFiles = n
		}
	}
}

// Validator runs the form checks.
type Validator struct {
	translator      notify.Translator
	locale          string
	notifier        notify.Notifier
	now             func() time.Time
	logger          logrus.FieldLogger
	commentMaxFiles int
}

// New constructs a Validator.
func New(options ...Option) *Validator {
	v := &Validator{
		translator:      notify.DefaultCatalog(),
		notifier:        notify.Discard,
		now:             time.Now,
		logger:          logging.Discard(),
		commentMaxFiles: DefaultCommentMaxFiles,
	}
	for _, opt := range options {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

func (v *Validator) msg(key string, args ...any) string {
	return notify.Message(v.translator, v.locale, key, args...)
}

func (v *Validator) finish(form string, result Result) Result {
	if result.Notice != nil {
		v.notifier.Notify(*result.Notice)
		v.logger.WithFields(logrus.Fields{
			"form":   form,
			"fields": result.Names(),
		}).Debug("form validation failed")
	}
	return result
}

// Required checks every control under root carrying the required attribute.
// Values come from values when it holds the name, otherwise from the
// control's own value (or text for textareas).
func (v *Validator) Required(root *element.Element, values url.Values) Result {
	var result Result
	for _, field := range requiredFields(root, nil) {
		if strings.TrimSpace(fieldValue(field, values)) == "" {
			result.addField(field.Name(), v.msg(notify.KeyFieldRequired))
		}
	}
	if !result.Valid() {
		result.alert(notify.KeyRequired, v.msg(notify.KeyRequired))
	}
	return v.finish("required", result)
}

// Auth checks the required <input> controls of a login or signup form.
func (v *Validator) Auth(root *element.Element, values url.Values) Result {
	var result Result
	for _, field := range requiredFields(root, element.ByTag("input")) {
		if strings.TrimSpace(fieldValue(field, values)) == "" {
			result.addField(field.Name(), v.msg(notify.KeyFieldRequired))
		}
	}
	if !result.Valid() {
		result.alert(notify.KeyRequired, v.msg(notify.KeyRequired))
	}
	return v.finish("auth", result)
}

// Profile requires an email and rejects birthdays in the future. An
// unparsable birthday is left to the server.
func (v *Validator) Profile(values url.Values) Result {
	var result Result
	if strings.TrimSpace(values.Get(EmailField)) == "" {
		message := v.msg(notify.KeyEmailRequired)
		result.addField(EmailField, message)
		result.alert(notify.KeyEmailRequired, message)
	}
	if raw := strings.TrimSpace(values.Get(BirthdayField)); raw != "" {
		birthday, err := time.ParseInLocation(BirthdayLayout, raw, time.Local)
		if err == nil {
			now := v.now()
			today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
			if birthday.After(today) {
				message := v.msg(notify.KeyBirthdayFuture)
				result.addField(BirthdayField, message)
				result.alert(notify.KeyBirthdayFuture, message)
			}
		}
	}
	return v.finish("profile", result)
}

// Comment requires comment text and caps the files attached across every
// file input of the form.
func (v *Validator) Comment(values url.Values, files map[string][]*multipart.FileHeader) Result {
	var result Result
	if strings.TrimSpace(values.Get(CommentField)) == "" {
		message := v.msg(notify.KeyCommentTextRequired)
		result.addField(CommentField, message)
		result.alert(notify.KeyCommentTextRequired, message)
		return v.finish("comment", result)
	}

	total := 0
	for _, headers := range files {
		total += len(headers)
	}
	if total > v.commentMaxFiles {
		message := v.msg(notify.KeyCommentTooManyFiles, v.commentMaxFiles)
		result.Form = append(result.Form, message)
		result.alert(notify.KeyCommentTooManyFiles, message)
	}
	return v.finish("comment", result)
}

func requiredFields(root *element.Element, extra element.Matcher) []*element.Element {
	matchers := []element.Matcher{
		element.HasAttr("required"),
		func(el *element.Element) bool { return el.Name() != "" },
	}
	if extra != nil {
		matchers = append(matchers, extra)
	}
	return root.FindAll(element.All(matchers...))
}

func fieldValue(field *element.Element, values url.Values) string {
	if values != nil {
		if submitted, ok := values[field.Name()]; ok && len(submitted) > 0 {
			return submitted[0]
		}
	}
	if field.Tag == "textarea" {
		return field.TextContent()
	}
	return field.AttrOr("value", "")
}
