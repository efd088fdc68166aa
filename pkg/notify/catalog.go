package notify

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultLocale is used when a message is missing in the requested locale.
const DefaultLocale = "en"

// Message keys shared by the subform, upload and validation packages.
const (
	KeyMaxRows             = "formset.max_rows"
	KeyCommentMaxRows      = "formset.comment_max_rows"
	KeyRowLabel            = "formset.row_label"
	KeyNewRowLabel         = "formset.new_row_label"
	KeyTooManyFiles        = "upload.too_many_files"
	KeyFileTooLarge        = "upload.file_too_large"
	KeyNotImage            = "upload.not_image"
	KeyAvatarNotImage      = "avatar.not_image"
	KeyAvatarTooLarge      = "avatar.too_large"
	KeyRequired            = "validation.required"
	KeyFieldRequired       = "validation.field_required"
	KeyEmailRequired       = "validation.email_required"
	KeyBirthdayFuture      = "validation.birthday_future"
	KeyCommentTextRequired = "validation.comment_text_required"
	KeyCommentTooManyFiles = "validation.comment_too_many_files"
	KeyConfirmDeletePost   = "confirm.delete_post"
	KeyConfirmDeleteItem   = "confirm.delete_item"
	KeyConfirmDeleteAvatar = "confirm.delete_avatar"
	KeySaved               = "formset.saved"
	KeyDeleteRow           = "formset.delete_row"
)

// ErrMissingMessage is returned when neither the locale nor the fallback
// locale define a key.
var ErrMissingMessage = errors.New("notify: missing message")

// Translator resolves message keys for a locale, formatting args into the
// message with fmt verbs.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

//go:embed messages.yaml
var defaultMessages []byte

// Catalog is a YAML-backed Translator keyed by locale then message key.
type Catalog struct {
	messages map[string]map[string]string
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = ParseCatalog(defaultMessages)
	})
	if defaultErr != nil {
		return &Catalog{}
	}
	return defaultCatalog
}

// ParseCatalog decodes a locale -> key -> message YAML document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("notify: parse catalog: %w", err)
	}
	messages := make(map[string]map[string]string, len(raw))
	for locale, entries := range raw {
		locale = normalizeLocale(locale)
		if locale == "" {
			continue
		}
		messages[locale] = entries
	}
	return &Catalog{messages: messages}, nil
}

// Merge overlays entries from other onto a copy of c.
func (c *Catalog) Merge(other *Catalog) *Catalog {
	out := &Catalog{messages: make(map[string]map[string]string)}
	for _, src := range []*Catalog{c, other} {
		if src == nil {
			continue
		}
		for locale, entries := range src.messages {
			if out.messages[locale] == nil {
				out.messages[locale] = make(map[string]string, len(entries))
			}
			for key, msg := range entries {
				out.messages[locale][key] = msg
			}
		}
	}
	return out
}

// Locales lists the locales that define at least one message.
func (c *Catalog) Locales() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.messages))
	for locale := range c.messages {
		out = append(out, locale)
	}
	return out
}

func (c *Catalog) Translate(locale, key string, args ...any) (string, error) {
	if c == nil {
		return "", ErrMissingMessage
	}
	locale = normalizeLocale(locale)
	for _, candidate := range []string{locale, baseLocale(locale), DefaultLocale} {
		if candidate == "" {
			continue
		}
		if msg, ok := c.messages[candidate][key]; ok {
			if len(args) == 0 {
				return msg, nil
			}
			return fmt.Sprintf(msg, args...), nil
		}
	}
	return "", fmt.Errorf("%w: %s/%s", ErrMissingMessage, locale, key)
}

// Message translates key with t, falling back to the key itself so notices
// are never empty.
func Message(t Translator, locale, key string, args ...any) string {
	if t != nil {
		if msg, err := t.Translate(locale, key, args...); err == nil && strings.TrimSpace(msg) != "" {
			return msg
		}
	}
	return key
}

func normalizeLocale(locale string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(locale)), "_", "-")
}

func baseLocale(locale string) string {
	if idx := strings.Index(locale, "-"); idx > 0 {
		return locale[:idx]
	}
	return ""
}
