package upload

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formset/pkg/notify"
)

const (
	// DefaultMaxFiles caps the number of files selected in one input.
	DefaultMaxFiles = 10
	// DefaultMaxFileSize is 5 MiB.
	DefaultMaxFileSize int64 = 5 * 1024 * 1024
	// DefaultTypePrefix is the MIME prefix every file must carry.
	DefaultTypePrefix = "image/"
)

// Kind identifies which rule a selection violated.
type Kind string

const (
	KindTooManyFiles Kind = "too_many_files"
	KindFileTooLarge Kind = "file_too_large"
	KindNotImage     Kind = "not_image"
)

// Rules are the client-side advisory checks applied to a file selection.
// Per file, size is checked before type unless TypeFirst is set.
type Rules struct {
	MaxFiles    int
	MaxFileSize int64
	TypePrefix  string
	TypeFirst   bool
	// Messages overrides the notify catalog key used for a violation kind.
	Messages map[Kind]string
}

// DefaultRules are the post and comment image rules.
func DefaultRules() Rules {
	return Rules{
		MaxFiles:    DefaultMaxFiles,
		MaxFileSize: DefaultMaxFileSize,
		TypePrefix:  DefaultTypePrefix,
	}
}

// AvatarRules accept a single image and check its type before its size.
func AvatarRules() Rules {
	return Rules{
		MaxFiles:    1,
		MaxFileSize: DefaultMaxFileSize,
		TypePrefix:  DefaultTypePrefix,
		TypeFirst:   true,
		Messages: map[Kind]string{
			KindNotImage:     notify.KeyAvatarNotImage,
			KindFileTooLarge: notify.KeyAvatarTooLarge,
		},
	}
}

func (r Rules) normalized() Rules {
	if r.MaxFiles <= 0 {
		r.MaxFiles = DefaultMaxFiles
	}
	if r.MaxFileSize <= 0 {
		r.MaxFileSize = DefaultMaxFileSize
	}
	if strings.TrimSpace(r.TypePrefix) == "" {
		r.TypePrefix = DefaultTypePrefix
	}
	r.TypePrefix = strings.ToLower(strings.TrimSpace(r.TypePrefix))
	return r
}

// Check validates a whole selection. It returns the first *Violation found:
// the file count first, then each file in selection order.
func (r Rules) Check(files []File) error {
	r = r.normalized()
	if len(files) > r.MaxFiles {
		return r.violation(KindTooManyFiles, "", int64(r.MaxFiles))
	}
	for _, file := range files {
		if err := r.CheckFile(file); err != nil {
			return err
		}
	}
	return nil
}

// CheckFile validates a single file.
func (r Rules) CheckFile(file File) error {
	r = r.normalized()
	checks := []func(File) error{r.checkSize, r.checkType}
	if r.TypeFirst {
		checks = []func(File) error{r.checkType, r.checkSize}
	}
	for _, check := range checks {
		if err := check(file); err != nil {
			return err
		}
	}
	return nil
}

func (r Rules) checkSize(file File) error {
	if file.Size > r.MaxFileSize {
		return r.violation(KindFileTooLarge, file.Name, r.MaxFileSize)
	}
	return nil
}

func (r Rules) checkType(file File) error {
	if !strings.HasPrefix(strings.ToLower(file.ContentType), r.TypePrefix) {
		return r.violation(KindNotImage, file.Name, 0)
	}
	return nil
}

func (r Rules) violation(kind Kind, filename string, limit int64) *Violation {
	key := defaultKeys[kind]
	if override := strings.TrimSpace(r.Messages[kind]); override != "" {
		key = override
	}
	return &Violation{Kind: kind, Filename: filename, Limit: limit, Key: key}
}

var defaultKeys = map[Kind]string{
	KindTooManyFiles: notify.KeyTooManyFiles,
	KindFileTooLarge: notify.KeyFileTooLarge,
	KindNotImage:     notify.KeyNotImage,
}

// Violation describes a rejected selection.
type Violation struct {
	Kind     Kind
	Filename string
	Limit    int64
	Key      string
}

func (v *Violation) Error() string {
	switch v.Kind {
	case KindTooManyFiles:
		return fmt.Sprintf("upload: more than %d files selected", v.Limit)
	case KindFileTooLarge:
		return fmt.Sprintf("upload: file %q exceeds %s", v.Filename, FormatSize(v.Limit))
	case KindNotImage:
		return fmt.Sprintf("upload: file %q is not an image", v.Filename)
	default:
		return "upload: invalid selection"
	}
}

// Args returns the catalog arguments for the violation message.
func (v *Violation) Args() []any {
	switch v.Kind {
	case KindTooManyFiles:
		return []any{v.Limit}
	case KindFileTooLarge:
		if v.Key == notify.KeyAvatarTooLarge {
			return []any{FormatSize(v.Limit)}
		}
		return []any{v.Filename, FormatSize(v.Limit)}
	case KindNotImage:
		if v.Key == notify.KeyAvatarNotImage {
			return nil
		}
		return []any{v.Filename}
	default:
		return nil
	}
}

// Notice renders the violation as a blocking alert.
func (v *Violation) Notice(t notify.Translator, locale string) notify.Notice {
	return notify.Alert(v.Key, notify.Message(t, locale, v.Key, v.Args()...))
}

// FormatSize renders byte limits the way they are shown to users ("5MB").
func FormatSize(size int64) string {
	const (
		kib = 1024
		mib = 1024 * kib
	)
	switch {
	case size >= mib && size%mib == 0:
		return fmt.Sprintf("%dMB", size/mib)
	case size >= kib && size%kib == 0:
		return fmt.Sprintf("%dKB", size/kib)
	default:
		return fmt.Sprintf("%dB", size)
	}
}
