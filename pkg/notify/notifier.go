package notify

import (
	"io"
	"log"
)

const (
	logNotifierPrefix = "notify.Log#"
)

// Notifier displays a user-facing message. Notify never fails from the perspective of the caller.
type Notifier interface {
	Notify(title string, description string)
}

// Log writes notifications to the provided writer.
type Log struct {
	outLog *log.Logger
}

// NewLog constructs Log notifier.
func NewLog(out io.Writer) *Log {
	return &Log{
		outLog: log.New(out, logNotifierPrefix, log.LstdFlags),
	}
}

func (l *Log) Notify(title string, description string) {
	l.outLog.Printf("%s: %s\n", title, description)
}

// Multi passes every notification to all of its notifiers.
type Multi []Notifier

func (m Multi) Notify(title string, description string) {
	for _, notifier := range m {
		notifier.Notify(title, description)
	}
}
