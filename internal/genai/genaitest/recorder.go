// Package genaitest provides a scripted, recording genai.Generator for tests.
package genaitest

import (
	"context"
	"fmt"
	"sync"

	"github.com/GoogleCloudPlatform/etl-copilot/internal/genai"
)

// Call is one recorded Generate invocation.
type Call struct {
	Model  string
	Prompt string
}

// Reply is a scripted response: Err wins over Text when set.
type Reply struct {
	Text string
	Err  error
}

// Recorder replays Replies in order and records every call. Once the script
// is exhausted it answers with Default.
type Recorder struct {
	mu      sync.Mutex
	Replies []Reply
	Default string
	calls   []Call
}

var _ genai.Generator = (*Recorder)(nil)

// NewRecorder scripts one text reply per call.
func NewRecorder(texts ...string) *Recorder {
	r := &Recorder{}
	for _, t := range texts {
		r.Replies = append(r.Replies, Reply{Text: t})
	}
	return r
}

// Generate implements genai.Generator.
func (r *Recorder) Generate(ctx context.Context, model, prompt string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := len(r.calls)
	r.calls = append(r.calls, Call{Model: model, Prompt: prompt})
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	if idx < len(r.Replies) {
		reply := r.Replies[idx]
		if reply.Err != nil {
			return "", reply.Err
		}
		return reply.Text, nil
	}
	return r.Default, nil
}

// Calls returns a copy of the recorded calls in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}
