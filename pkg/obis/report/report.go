// Package report carries progress messages and result artifacts from a
// resolution pass to whoever is driving it (a CLI, a chat host, a log).
package report

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Reporter receives human-readable progress and the final artifact.
// Implementations must be safe for concurrent use.
type Reporter interface {
	Log(ctx context.Context, message string, data any)
	Artifact(ctx context.Context, a Artifact)
}

// Entry is one recorded log message.
type Entry struct {
	Message string
	Data    any
}

// Recorder keeps everything in memory. It is the reporter used by tests
// and by callers that render the messages themselves.
type Recorder struct {
	mu        sync.Mutex
	entries   []Entry
	artifacts []Artifact
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// Log implements Reporter.
func (r *Recorder) Log(_ context.Context, message string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Message: message, Data: data})
}

// Artifact implements Reporter.
func (r *Recorder) Artifact(_ context.Context, a Artifact) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.artifacts = append(r.artifacts, a)
}

// Entries returns a copy of the recorded messages.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Messages returns just the message texts.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Message
	}
	return out
}

// Artifacts returns a copy of the recorded artifacts.
func (r *Recorder) Artifacts() []Artifact {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Artifact(nil), r.artifacts...)
}

// ZapReporter writes messages and artifacts to a zap logger.
type ZapReporter struct {
	log *zap.SugaredLogger
}

// NewZap wraps log; a nil logger discards everything.
func NewZap(log *zap.SugaredLogger) *ZapReporter {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ZapReporter{log: log}
}

// Log implements Reporter.
func (z *ZapReporter) Log(_ context.Context, message string, data any) {
	if data == nil {
		z.log.Info(message)
		return
	}
	z.log.Infow(message, "data", data)
}

// Artifact implements Reporter.
func (z *ZapReporter) Artifact(_ context.Context, a Artifact) {
	z.log.Infow("artifact",
		"id", a.ID,
		"description", a.Description,
		"uris", a.URIs,
		"retrieved", a.Metadata.RetrievedRecordCount,
		"total", a.Metadata.TotalMatchingCount,
	)
}

// Tee fans every call out to several reporters.
type Tee []Reporter

// Log implements Reporter.
func (t Tee) Log(ctx context.Context, message string, data any) {
	for _, r := range t {
		r.Log(ctx, message, data)
	}
}

// Artifact implements Reporter.
func (t Tee) Artifact(ctx context.Context, a Artifact) {
	for _, r := range t {
		r.Artifact(ctx, a)
	}
}
