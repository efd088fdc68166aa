package formsets

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-formset/pkg/element"
	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/notify"
	"github.com/goliatone/go-formset/pkg/preview"
	"github.com/goliatone/go-formset/pkg/render"
	"github.com/goliatone/go-formset/pkg/upload"
)

// TotalHeader carries the counter value after an add-row request.
const TotalHeader = "X-Formset-Total"

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type noticeResponse struct {
	Error  string        `json:"error"`
	Notice notify.Notice `json:"notice"`
}

type previewsResponse struct {
	Data []preview.Preview `json:"data"`
}

// RowsHandler builds the add-row handler with default options plus any
// overrides.
func RowsHandler(fns ...OptionFn) http.Handler {
	return RowsHandlerWithOptions(NewOptions(fns...))
}

// RowsHandlerWithOptions answers POST requests carrying prefix, kind and
// total form values with the fragment of the row at index total.
func RowsHandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	log := opts.Logger.WithField("handler", "rows")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allowPost(w, r, opts) {
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		cfg, err := groupFor(opts, r.PostForm.Get("prefix"), r.PostForm.Get("kind"))
		if err != nil {
			writeError(w, err)
			return
		}
		total := strings.TrimSpace(r.PostForm.Get("total"))
		locale := localeFor(r, opts)

		counter := element.Hidden(formset.TotalFormsName(cfg.Prefix), cfg.CounterID, total)
		handles := formset.Handles{
			Trigger:   element.Button("button", cfg.TriggerID, "+"),
			Container: element.New("div", element.A("id", cfg.ContainerID)),
			Counter:   counter,
		}
		group, err := formset.Initialize(cfg, handles,
			formset.WithTranslator(opts.Translator),
			formset.WithLocale(locale),
			formset.WithLogger(opts.Logger),
		)
		if err != nil {
			writeError(w, StatusError{Code: http.StatusBadRequest, Err: err})
			return
		}

		row, err := group.AddRow()
		var limit *formset.LimitError
		if errors.As(err, &limit) {
			log.WithField("prefix", cfg.Prefix).Debug("add row refused at maximum")
			writeNotice(w, http.StatusConflict, limit.Notice(opts.Translator, locale))
			return
		}
		if err != nil {
			log.WithError(err).Error("add row failed")
			writeError(w, err)
			return
		}

		fragment, err := rowHTML(r, opts, row, locale)
		if err != nil {
			log.WithError(err).Error("render row failed")
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set(TotalHeader, strconv.Itoa(group.Total()))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(fragment)
	})
}

// PreviewsHandler builds the preview handler with default options plus any
// overrides.
func PreviewsHandler(fns ...OptionFn) http.Handler {
	return PreviewsHandlerWithOptions(NewOptions(fns...))
}

// PreviewsHandlerWithOptions checks the multipart "files" selection and
// returns thumbnails in selection order. rules=avatar applies the single
// profile photo rules.
func PreviewsHandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	log := opts.Logger.WithField("handler", "previews")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allowPost(w, r, opts) {
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, opts.MaxRequestBytes)
		if err := r.ParseMultipartForm(opts.MaxMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				log.WithField("limit", tooLarge.Limit).Warn("previews request too large")
				http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if r.MultipartForm != nil {
			defer func() { _ = r.MultipartForm.RemoveAll() }()
		}

		rules := upload.DefaultRules()
		if strings.EqualFold(r.FormValue("rules"), "avatar") {
			rules = upload.AvatarRules()
		}

		files, err := upload.FromHeaders(r.MultipartForm.File["files"])
		if err != nil {
			log.WithError(err).Warn("read upload failed")
			writeError(w, StatusError{Code: http.StatusBadRequest, Err: err})
			return
		}

		if err := rules.Check(files); err != nil {
			var violation *upload.Violation
			if errors.As(err, &violation) {
				writeNotice(w, http.StatusUnprocessableEntity, violation.Notice(opts.Translator, localeFor(r, opts)))
				return
			}
			writeError(w, err)
			return
		}

		previews, err := opts.Previews.Generate(r.Context(), files)
		if err != nil {
			log.WithError(err).Warn("preview generation failed")
			writeError(w, StatusError{Code: http.StatusUnprocessableEntity, Err: err})
			return
		}
		if previews == nil {
			previews = []preview.Preview{}
		}
		writeJSON(w, http.StatusOK, previewsResponse{Data: previews})
	})
}

func allowPost(w http.ResponseWriter, r *http.Request, opts Options) bool {
	if r == nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return false
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return false
	}
	if opts.Guard != nil {
		if err := opts.Guard(r); err != nil {
			writeGuardError(w, err)
			return false
		}
	}
	return true
}

func groupFor(opts Options, prefix, kind string) (formset.Config, error) {
	prefix = strings.TrimSpace(prefix)
	cfg, ok := opts.Groups[prefix]
	if !ok {
		return formset.Config{}, StatusError{Code: http.StatusNotFound, Err: fmt.Errorf("formsets: unknown group %q", prefix)}
	}
	if kind = strings.TrimSpace(kind); kind != "" {
		cfg.Kind = formset.Kind(kind)
		if err := cfg.Validate(); err != nil {
			return formset.Config{}, StatusError{Code: http.StatusBadRequest, Err: err}
		}
	}
	return cfg.Normalize(), nil
}

func rowHTML(r *http.Request, opts Options, row *formset.Row, locale string) ([]byte, error) {
	if opts.RowRenderer == nil {
		out, err := row.Element.HTML()
		return []byte(out), err
	}
	return opts.RowRenderer.RenderRow(r.Context(), row, render.RenderOptions{
		Locale:     locale,
		Translator: opts.Translator,
	})
}

func localeFor(r *http.Request, opts Options) string {
	if locale := strings.TrimSpace(r.FormValue("locale")); locale != "" {
		return locale
	}
	if header := r.Header.Get("Accept-Language"); header != "" {
		tag, _, _ := strings.Cut(header, ",")
		tag, _, _ = strings.Cut(tag, ";")
		if tag = strings.TrimSpace(tag); tag != "" && tag != "*" {
			return tag
		}
	}
	return opts.Locale
}

func writeNotice(w http.ResponseWriter, code int, notice notify.Notice) {
	writeJSON(w, code, noticeResponse{Error: notice.Message, Notice: notice})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
	}
	http.Error(w, http.StatusText(code), code)
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	if err == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}
