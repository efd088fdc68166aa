package formset

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-formset/internal/logging"
	"github.com/goliatone/go-formset/pkg/element"
	"github.com/goliatone/go-formset/pkg/notify"
)

// Handles are the server-rendered elements a group binds to.
type Handles struct {
	Trigger   *element.Element
	Container *element.Element
	Counter   *element.Element
}

// Complete reports whether every handle is present.
func (h Handles) Complete() bool {
	return h.Trigger != nil && h.Container != nil && h.Counter != nil
}

// HandlesFrom looks up the handles for cfg inside a parsed page.
func HandlesFrom(root *element.Element, cfg Config) Handles {
	cfg = cfg.Normalize()
	if root == nil {
		return Handles{}
	}
	return Handles{
		Trigger:   root.Find(element.ByID(cfg.TriggerID)),
		Container: root.Find(element.ByID(cfg.ContainerID)),
		Counter:   root.Find(element.ByID(cfg.CounterID)),
	}
}

// Option configures a Group.
type Option func(*Group)

// WithNotifier routes blocking notices.
func WithNotifier(n notify.Notifier) Option {
	return func(g *Group) {
		if n != nil {
			g.notifier = n
		}
	}
}

// WithTranslator sets the message catalog for labels and notices.
func WithTranslator(t notify.Translator) Option {
	return func(g *Group) {
		if t != nil {
			g.translator = t
		}
	}
}

// WithLocale sets the locale for labels and notices.
func WithLocale(locale string) Option {
	return func(g *Group) {
		g.locale = strings.TrimSpace(locale)
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(g *Group) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithSelectionHandler sets the handler attached to every file input.
func WithSelectionHandler(h *SelectionHandler) Option {
	return func(g *Group) {
		if h != nil {
			g.selection = h
		}
	}
}

// Group is the per-group state object: it owns the row count and the rows,
// and every add-row reaction goes through it.
type Group struct {
	mu *sync.Mutex

	cfg     Config
	handles Handles
	initial int
	count   int
	rows    []*Row

	selection  *SelectionHandler
	notifier   notify.Notifier
	translator notify.Translator
	locale     string
	logger     logrus.FieldLogger
}

// Initialize binds a group to existing page handles. The counter's current
// value becomes the next row index. It returns ErrMissingHandle when any
// handle is absent and ErrInvalidCounter when the counter is unusable; in
// both cases nothing is bound.
func Initialize(cfg Config, handles Handles, options ...Option) (*Group, error) {
	cfg = cfg.Normalize()
	if !handles.Complete() {
		return nil, fmt.Errorf("%w: %s", ErrMissingHandle, cfg.Prefix)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	raw := handles.Counter.AttrOr("value", "")
	count, err := parseCounter(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q", ErrInvalidCounter, cfg.Prefix, raw)
	}

	g := &Group{
		mu:         &sync.Mutex{},
		cfg:        cfg,
		handles:    handles,
		initial:    count,
		count:      count,
		notifier:   notify.Discard,
		translator: notify.DefaultCatalog(),
		logger:     logging.Discard(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(g)
		}
	}
	if g.selection == nil {
		g.selection = NewSelectionHandler()
		g.selection.Notifier = g.notifier
		g.selection.Translator = g.translator
		g.selection.Locale = g.locale
		g.selection.Logger = g.logger
	}
	g.logger = g.logger.WithField("formset", cfg.Prefix)

	g.Adopt()
	g.logger.WithFields(logrus.Fields{
		"count":  count,
		"static": len(g.rows),
	}).Debug("formset initialised")
	return g, nil
}

// Build renders a fresh group scaffold with initial server rows and binds
// it. The scaffold root holds the management inputs, the container and the
// add trigger.
func Build(cfg Config, initialRows int, options ...Option) (*Group, *element.Element, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if initialRows < 0 || initialRows > cfg.MaxRows {
		return nil, nil, fmt.Errorf("%w: %s initial rows %d", ErrInvalidCounter, cfg.Prefix, initialRows)
	}

	probe := &Group{translator: notify.DefaultCatalog()}
	for _, opt := range options {
		if opt != nil {
			opt(probe)
		}
	}
	builder := rowBuilder{cfg: cfg, translator: probe.translator, locale: probe.locale}

	counter := element.Hidden(TotalFormsName(cfg.Prefix), cfg.CounterID, strconv.Itoa(initialRows))
	container := element.New("div", element.A("id", cfg.ContainerID), element.A("class", "image-forms"))
	for idx := 0; idx < initialRows; idx++ {
		container.Append(builder.build(idx, nil).Element)
	}
	trigger := element.Button("button", cfg.TriggerID, "+", element.A("class", "btn btn-secondary"))
	trigger.SetAttr("data-formset-add", cfg.Prefix)

	root := element.Div("formset",
		counter,
		element.Hidden(cfg.Prefix+"-INITIAL_FORMS", "id_"+cfg.Prefix+"-INITIAL_FORMS", strconv.Itoa(initialRows)),
		element.Hidden(cfg.Prefix+"-MIN_NUM_FORMS", "id_"+cfg.Prefix+"-MIN_NUM_FORMS", "0"),
		element.Hidden(cfg.Prefix+"-MAX_NUM_FORMS", "id_"+cfg.Prefix+"-MAX_NUM_FORMS", strconv.Itoa(cfg.MaxRows)),
		container,
		trigger,
	)
	root.SetAttr("data-formset", cfg.Prefix)
	root.SetAttr("data-formset-kind", string(cfg.Kind))
	root.SetAttr("data-formset-max", strconv.Itoa(cfg.MaxRows))

	g, err := Initialize(cfg, Handles{Trigger: trigger, Container: container, Counter: counter}, options...)
	if err != nil {
		return nil, nil, err
	}
	return g, root, nil
}

// AddRow reacts to the add trigger. When the group is full it notifies the
// user and returns *LimitError without touching the tree. Otherwise it
// appends a row at the next index, bumps the counter and attaches the
// selection handler to the new file input.
func (g *Group) AddRow() (*Row, error) {
	row, limitErr := g.appendRow()
	if limitErr != nil {
		// Notified outside the lock so notifiers may read the group.
		g.notifier.Notify(limitErr.Notice(g.translator, g.locale))
		return nil, limitErr
	}
	return row, nil
}

func (g *Group) appendRow() (*Row, *LimitError) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.count >= g.cfg.MaxRows {
		g.logger.WithField("count", g.count).Debug("add row rejected")
		return nil, &LimitError{Prefix: g.cfg.Prefix, Max: g.cfg.MaxRows, Key: g.cfg.LimitKey}
	}

	builder := rowBuilder{cfg: g.cfg, translator: g.translator, locale: g.locale}
	row := builder.build(g.count, g.mu)
	g.handles.Container.Append(row.Element)
	g.count++
	g.handles.Counter.SetAttr("value", strconv.Itoa(g.count))
	g.rows = append(g.rows, row)

	// FileInput shares g.mu, so attach without re-locking.
	row.File.handler = g.selection

	g.logger.WithFields(logrus.Fields{
		"index": row.Index,
		"count": g.count,
	}).Debug("row added")
	return row, nil
}

// Adopt attaches the selection handler to file inputs in the container that
// the group does not know yet and returns how many were adopted.
func (g *Group) Adopt() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	known := make(map[*element.Element]bool, len(g.rows))
	for _, row := range g.rows {
		known[row.File.Element] = true
	}
	adopted := 0
	for _, row := range adoptRows(g.cfg, g.handles.Container, g.mu) {
		if known[row.File.Element] {
			continue
		}
		row.File.handler = g.selection
		g.rows = append(g.rows, row)
		adopted++
	}
	slices.SortStableFunc(g.rows, func(a, b *Row) int { return a.Index - b.Index })
	return adopted
}

// Config returns the normalised group configuration.
func (g *Group) Config() Config {
	return g.cfg
}

// Handles returns the bound page handles.
func (g *Group) Handles() Handles {
	return g.handles
}

// Snapshot returns detached copies of the handles, taken under the group
// lock. Renderers decorate the copies freely.
func (g *Group) Snapshot() Handles {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out Handles
	if g.handles.Trigger != nil {
		out.Trigger = g.handles.Trigger.Clone()
	}
	if g.handles.Container != nil {
		out.Container = g.handles.Container.Clone()
	}
	if g.handles.Counter != nil {
		out.Counter = g.handles.Counter.Clone()
	}
	return out
}

// Total returns the management counter value.
func (g *Group) Total() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.count
}

// Initial returns the counter value read at initialisation.
func (g *Group) Initial() int {
	return g.initial
}

// Remaining returns how many rows can still be added.
func (g *Group) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return max(0, g.cfg.MaxRows-g.count)
}

// Rows returns the known rows in index order.
func (g *Group) Rows() []*Row {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.rows)
}

// Row returns the row at index.
func (g *Group) Row(index int) (*Row, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, row := range g.rows {
		if row.Index == index {
			return row, true
		}
	}
	return nil, false
}

// SelectionHandler returns the handler shared by the group's file inputs.
func (g *Group) SelectionHandler() *SelectionHandler {
	return g.selection
}

// Locale returns the locale used for labels and notices.
func (g *Group) Locale() string {
	return g.locale
}

func parseCounter(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, errors.New("negative counter")
	}
	return value, nil
}
