package formset

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formset/pkg/notify"
)

// Kind selects which hidden fields a row carries.
type Kind string

const (
	// KindCreate rows carry id and post hidden fields.
	KindCreate Kind = "create"
	// KindUpdate rows additionally carry a DELETE flag.
	KindUpdate Kind = "update"
	// KindComment rows carry only the file input.
	KindComment Kind = "comment"
)

const (
	DefaultPostMaxRows    = 10
	DefaultCommentMaxRows = 5

	FieldImage  = "image"
	FieldID     = "id"
	FieldPost   = "post"
	FieldDelete = "DELETE"

	RowClass        = "image-form-item"
	CommentRowClass = "comment-image-form"
)

// Config describes one subform group and the page handles it binds to.
type Config struct {
	Prefix      string `yaml:"prefix" json:"prefix"`
	Kind        Kind   `yaml:"kind" json:"kind"`
	MaxRows     int    `yaml:"maxRows" json:"maxRows"`
	TriggerID   string `yaml:"triggerId" json:"triggerId"`
	ContainerID string `yaml:"containerId" json:"containerId"`
	CounterID   string `yaml:"counterId" json:"counterId"`
	// LimitKey is the catalog key used when the group is full.
	LimitKey string `yaml:"limitKey" json:"limitKey"`
}

// PostImagesCreate is the image group on the create-post page.
func PostImagesCreate() Config {
	return Config{
		Prefix:      "images",
		Kind:        KindCreate,
		MaxRows:     DefaultPostMaxRows,
		TriggerID:   "add-image",
		ContainerID: "image-forms",
		LimitKey:    notify.KeyMaxRows,
	}.Normalize()
}

// PostImagesUpdate is the image group on the edit-post page.
func PostImagesUpdate() Config {
	cfg := PostImagesCreate()
	cfg.Kind = KindUpdate
	return cfg
}

// CommentImages is the image group on comment forms.
func CommentImages() Config {
	return Config{
		Prefix:      "comment_images",
		Kind:        KindComment,
		MaxRows:     DefaultCommentMaxRows,
		TriggerID:   "add-comment-image",
		ContainerID: "comment-image-forms",
		LimitKey:    notify.KeyCommentMaxRows,
	}.Normalize()
}

// Presets returns the built-in groups keyed by name.
func Presets() map[string]Config {
	return map[string]Config{
		"post-create": PostImagesCreate(),
		"post-update": PostImagesUpdate(),
		"comment":     CommentImages(),
	}
}

// Normalize fills derived defaults.
func (c Config) Normalize() Config {
	c.Prefix = strings.TrimSpace(c.Prefix)
	if c.Kind == "" {
		c.Kind = KindCreate
	}
	if c.MaxRows <= 0 {
		if c.Kind == KindComment {
			c.MaxRows = DefaultCommentMaxRows
		} else {
			c.MaxRows = DefaultPostMaxRows
		}
	}
	if c.CounterID == "" && c.Prefix != "" {
		c.CounterID = CounterID(c.Prefix)
	}
	if c.LimitKey == "" {
		if c.Kind == KindComment {
			c.LimitKey = notify.KeyCommentMaxRows
		} else {
			c.LimitKey = notify.KeyMaxRows
		}
	}
	return c
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	if c.Prefix == "" {
		return fmt.Errorf("formset: prefix is required")
	}
	if strings.ContainsAny(c.Prefix, " \t\n\"'<>") {
		return fmt.Errorf("formset: invalid prefix %q", c.Prefix)
	}
	switch c.Kind {
	case KindCreate, KindUpdate, KindComment:
	default:
		return fmt.Errorf("formset: unknown kind %q", c.Kind)
	}
	if c.TriggerID == "" || c.ContainerID == "" {
		return fmt.Errorf("formset: %s: trigger and container ids are required", c.Prefix)
	}
	return nil
}

// HiddenFields lists the auxiliary fields rows of this kind carry.
func (c Config) HiddenFields() []string {
	switch c.Kind {
	case KindCreate:
		return []string{FieldID, FieldPost}
	case KindUpdate:
		return []string{FieldID, FieldPost, FieldDelete}
	default:
		return nil
	}
}

// TotalFormsName is the management counter input name.
func TotalFormsName(prefix string) string {
	return prefix + "-TOTAL_FORMS"
}

// CounterID is the management counter element id.
func CounterID(prefix string) string {
	return "id_" + TotalFormsName(prefix)
}

// FieldName is the submitted name of a row field, e.g. "images-3-image".
func FieldName(prefix string, index int, field string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, index, field)
}

// FieldElementID is the element id of a row field.
func FieldElementID(prefix string, index int, field string) string {
	return "id_" + FieldName(prefix, index, field)
}
