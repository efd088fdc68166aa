package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goliatone/go-formset/pkg/element"
	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/notify"
	"github.com/goliatone/go-formset/pkg/render"
	"github.com/goliatone/go-formset/pkg/upload"
)

// Renderer implements render.Renderer for terminal sessions. Render walks the
// user through a group: soft-deleting existing rows, adding rows and picking
// files for them, then serializes what a browser would have submitted.
type Renderer struct {
	driver            PromptDriver
	out               io.Writer
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{outputFormat: OutputFormatJSON}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = newSurveyDriver(r.out)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render runs the interactive session against group and returns the
// serialized submission.
func (r *Renderer) Render(ctx context.Context, group *formset.Group, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}
	if group == nil {
		return nil, ErrNoGroup
	}

	for _, notice := range opts.Notices {
		if err := r.notify(ctx, notice); err != nil {
			return nil, err
		}
	}

	mapping := render.MapErrorPayload(render.FieldNames(group), opts.Errors)
	for _, msg := range mapping.Form {
		if err := r.error(ctx, msg); err != nil {
			return nil, err
		}
	}
	state := NewState(mapping.Fields)

	if group.Config().Kind == formset.KindUpdate {
		if err := r.promptDeletes(ctx, group, opts); err != nil {
			return nil, err
		}
	}
	if err := r.promptRows(ctx, group, state, opts); err != nil {
		return nil, err
	}

	collect(group, state)
	values := state.Values()
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(values)
}

// promptDeletes offers the server-rendered rows for soft deletion.
func (r *Renderer) promptDeletes(ctx context.Context, group *formset.Group, opts render.RenderOptions) error {
	var existing []*formset.Row
	var labels []string
	var defaults []int
	for _, row := range group.Rows() {
		if !row.Static {
			continue
		}
		if row.Deleted() {
			defaults = append(defaults, len(existing))
		}
		existing = append(existing, row)
		labels = append(labels, rowLabel(row))
	}
	if len(existing) == 0 {
		return nil
	}

	picked, err := r.driver.MultiSelect(ctx, SelectConfig{
		Message:  r.prompt("Images to delete"),
		Options:  labels,
		Defaults: defaults,
	})
	if err != nil {
		return err
	}
	if len(picked) > 0 {
		ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: r.prompt(opts.Message(notify.KeyConfirmDeleteItem))})
		if err != nil {
			return err
		}
		if !ok {
			picked = nil
		}
	}

	chosen := make(map[int]bool, len(picked))
	for _, idx := range picked {
		chosen[idx] = true
	}
	for idx, row := range existing {
		if err := row.MarkDeleted(chosen[idx]); err != nil {
			return fmt.Errorf("tui: mark row %d: %w", row.Index, err)
		}
	}
	return nil
}

// promptRows asks for files on rows without a selection, then keeps adding
// rows while the user wants more and the group has room.
func (r *Renderer) promptRows(ctx context.Context, group *formset.Group, state *State, opts render.RenderOptions) error {
	for _, row := range group.Rows() {
		if row.Static || len(row.File.Selected()) > 0 {
			continue
		}
		if err := r.promptFiles(ctx, row, state); err != nil {
			return err
		}
	}

	for {
		more, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: r.prompt(fmt.Sprintf("Add an image? (%d left)", group.Remaining())),
		})
		if err != nil {
			return err
		}
		if !more {
			return nil
		}

		row, err := group.AddRow()
		var limit *formset.LimitError
		if errors.As(err, &limit) {
			return r.notify(ctx, limit.Notice(translatorOf(opts.Translator), opts.Locale))
		}
		if err != nil {
			return err
		}
		if err := r.promptFiles(ctx, row, state); err != nil {
			return err
		}
	}
}

// promptFiles asks for comma separated paths until the selection passes the
// handler's rules. An empty answer leaves the row without files.
func (r *Renderer) promptFiles(ctx context.Context, row *formset.Row, state *State) error {
	name := row.File.Name()
	for _, msg := range state.ErrorsFor(name) {
		if err := r.error(ctx, msg); err != nil {
			return err
		}
	}

	for {
		answer, err := r.driver.Input(ctx, InputConfig{
			Message: r.prompt(rowLabel(row)),
			Help:    "Comma separated file paths. Leave empty to skip.",
			Suggest: suggestPaths,
		})
		if err != nil {
			return err
		}
		paths := splitPaths(answer)
		if len(paths) == 0 {
			return nil
		}

		files, err := openFiles(paths)
		if err != nil {
			if err := r.error(ctx, err.Error()); err != nil {
				return err
			}
			continue
		}

		err = row.File.Select(ctx, files)
		var violation *upload.Violation
		if errors.As(err, &violation) {
			handler := row.File.Handler()
			if err := r.notify(ctx, violation.Notice(translatorOf(handler.Translator), handler.Locale)); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
		return nil
	}
}

func (r *Renderer) notify(ctx context.Context, notice notify.Notice) error {
	if notice.Blocking || notice.Level == notify.LevelError {
		return r.error(ctx, notice.Message)
	}
	return r.driver.Info(ctx, r.theme.InfoPrefix+notice.Message)
}

func (r *Renderer) error(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
}

func (r *Renderer) prompt(msg string) string {
	return r.theme.PromptPrefix + msg
}

// collect records what the browser would submit for group.
func collect(group *formset.Group, state *State) {
	cfg := group.Config()
	_ = state.Set(formset.TotalFormsName(cfg.Prefix), strconv.Itoa(group.Total()))
	_ = state.Set(cfg.Prefix+"-INITIAL_FORMS", strconv.Itoa(group.Initial()))
	_ = state.Set(cfg.Prefix+"-MIN_NUM_FORMS", "0")
	_ = state.Set(cfg.Prefix+"-MAX_NUM_FORMS", strconv.Itoa(cfg.MaxRows))

	for _, row := range group.Rows() {
		for _, input := range row.Hidden {
			if value := input.AttrOr("value", ""); value != "" {
				_ = state.Set(input.Name(), value)
			}
		}
		var names []string
		for _, file := range row.File.Selected() {
			names = append(names, file.Name)
		}
		_ = state.SetFiles(row.File.Name(), names)
	}
}

func translatorOf(t notify.Translator) notify.Translator {
	if t == nil {
		return notify.DefaultCatalog()
	}
	return t
}

func rowLabel(row *formset.Row) string {
	if label := row.Element.Find(element.ByTag("label")); label != nil {
		if text := strings.TrimSpace(label.TextContent()); text != "" {
			return text
		}
	}
	return row.File.Name()
}

func splitPaths(answer string) []string {
	var out []string
	for _, part := range strings.Split(answer, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func openFiles(paths []string) ([]upload.File, error) {
	files := make([]upload.File, 0, len(paths))
	for _, path := range paths {
		file, err := upload.FromPath(path)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func suggestPaths(toComplete string) []string {
	parts := strings.Split(toComplete, ",")
	last := strings.TrimSpace(parts[len(parts)-1])
	matches, _ := filepath.Glob(last + "*")
	return matches
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

func flattenForm(values map[string]any) string {
	out := url.Values{}
	for key, value := range values {
		switch v := value.(type) {
		case []any:
			for _, item := range v {
				out.Add(key, fmt.Sprint(item))
			}
		default:
			out.Set(key, fmt.Sprint(v))
		}
	}
	return out.Encode()
}

func prettyPrint(values map[string]any) string {
	state := &State{values: values}
	var b strings.Builder
	for _, key := range state.Keys() {
		switch v := values[key].(type) {
		case []any:
			for idx, item := range v {
				fmt.Fprintf(&b, "%s[%d]=%v\n", key, idx, item)
			}
		default:
			fmt.Fprintf(&b, "%s=%v\n", key, v)
		}
	}
	return b.String()
}
