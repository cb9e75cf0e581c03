package events

import (
	"context"
	"encoding/json"
	"sync"
)

// Recorder is a Publisher that keeps every message, for assertions in tests.
type Recorder struct {
	mu   sync.Mutex
	msgs []Message
}

func (r *Recorder) Publish(_ context.Context, subject string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, Message{Subject: subject, Data: data})
	return nil
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.msgs))
	copy(out, r.msgs)
	return out
}

// Subjects lists recorded subjects matching pattern, in publish order.
func (r *Recorder) Subjects(pattern string) []string {
	var out []string
	for _, m := range r.Messages() {
		if Match(pattern, m.Subject) {
			out = append(out, m.Subject)
		}
	}
	return out
}

// Decode unmarshals the last message on subject into v.
func (r *Recorder) Decode(subject string, v any) bool {
	msgs := r.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Subject == subject {
			return json.Unmarshal(msgs[i].Data, v) == nil
		}
	}
	return false
}
