// Package notify delivers user-visible alerts such as palette exhaustion or
// a pileup that failed to load.
package notify

import (
	"sync"
	"time"

	"github.com/hicognition/hicolink/internal/errors"
	"github.com/hicognition/hicolink/internal/logging"
)

// Level classifies a Notice.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

// String returns the lowercase level name.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Notice is one alert shown to the user.
type Notice struct {
	Level   Level
	Message string
	Err     error
	Time    time.Time
}

// Sink receives notices. Implementations must be safe for concurrent use.
type Sink interface {
	Notify(Notice)
}

// Func adapts a function to a Sink.
type Func func(Notice)

// Notify calls f(n).
func (f Func) Notify(n Notice) { f(n) }

// Info creates an informational notice.
func Info(msg string) Notice {
	return Notice{Level: LevelInfo, Message: msg, Time: time.Now()}
}

// FromError creates a notice for err. User facing errors keep their message;
// anything else is reported generically so internals are not leaked to the
// status line.
func FromError(err error) Notice {
	n := Notice{Level: LevelError, Err: err, Time: time.Now()}
	switch sev := errors.GetSeverity(err); {
	case sev <= errors.SeverityInfo:
		n.Level = LevelInfo
	case sev == errors.SeverityWarning:
		n.Level = LevelWarning
	}
	if errors.IsUserFacing(err) {
		n.Message = err.Error()
	} else {
		n.Message = "an internal error occurred"
	}
	return n
}

// Recorder keeps every notice in memory. The console renders the latest one
// and tests assert on the full list.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Notify records n.
func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of the recorded notices, oldest first.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
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

// Len returns the number of recorded notices.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notices)
}

// Clear forgets every notice.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}

// LogSink writes notices to a logger.
type LogSink struct {
	logger *logging.Logger
}

// NewLogSink returns a Sink that logs through logger.
func NewLogSink(logger *logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &LogSink{logger: logger}
}

// Notify logs n at the matching level.
func (s *LogSink) Notify(n Notice) {
	args := []any{"notice", true}
	if n.Err != nil {
		args = append(args, "error", n.Err.Error())
	}
	switch n.Level {
	case LevelError:
		s.logger.Error(n.Message, args...)
	case LevelWarning:
		s.logger.Warn(n.Message, args...)
	default:
		s.logger.Info(n.Message, args...)
	}
}

// Multi fans a notice out to several sinks in order.
type Multi []Sink

// Notify forwards n to every non-nil sink.
func (m Multi) Notify(n Notice) {
	for _, s := range m {
		if s != nil {
			s.Notify(n)
		}
	}
}

// Discard drops every notice.
var Discard Sink = Func(func(Notice) {})
