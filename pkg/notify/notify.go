package notify

import (
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultDismissAfter is how long non-blocking banners stay visible.
const DefaultDismissAfter = 5 * time.Second

// Level classifies a notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a user-facing message. Blocking notices map to modal alerts and
// are never dismissed automatically.
type Notice struct {
	Level        Level         `json:"level"`
	Key          string        `json:"key,omitempty"`
	Message      string        `json:"message"`
	Blocking     bool          `json:"blocking"`
	DismissAfter time.Duration `json:"dismissAfter,omitempty"`
}

// Alert builds a blocking error notice.
func Alert(key, message string) Notice {
	return Notice{Level: LevelError, Key: key, Message: message, Blocking: true}
}

// Banner builds a non-blocking notice that auto-dismisses.
func Banner(level Level, key, message string) Notice {
	return Notice{Level: level, Key: key, Message: message, DismissAfter: DefaultDismissAfter}
}

// Notifier receives notices.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (fn NotifierFunc) Notify(n Notice) {
	if fn != nil {
		fn(n)
	}
}

// Discard drops every notice.
var Discard Notifier = NotifierFunc(func(Notice) {})

// Multi fans a notice out to every non-nil notifier.
func Multi(notifiers ...Notifier) Notifier {
	clean := slices.DeleteFunc(slices.Clone(notifiers), func(n Notifier) bool { return n == nil })
	return NotifierFunc(func(n Notice) {
		for _, target := range clean {
			target.Notify(n)
		}
	})
}

// Recorder collects notices in order. It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of the recorded notices.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.notices)
}

// Last returns the most recent notice.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

// Reset clears recorded notices.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}

// LogNotifier writes notices as console diagnostics.
type LogNotifier struct {
	Logger logrus.FieldLogger
}

func (l LogNotifier) Notify(n Notice) {
	if l.Logger == nil {
		return
	}
	entry := l.Logger.WithFields(logrus.Fields{
		"key":      n.Key,
		"blocking": n.Blocking,
	})
	switch n.Level {
	case LevelError, LevelWarning:
		entry.Warn(n.Message)
	default:
		entry.Info(n.Message)
	}
}
