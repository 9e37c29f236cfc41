package coordinator

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

type fakeConn struct {
	id string

	mu     sync.Mutex
	msgs   []Message
	closed bool
	fail   bool
}

func newFakeConn(id string) *fakeConn { return &fakeConn{id: id} }

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) Send(msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail || f.closed {
		return errors.New("send failed")
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) messages() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Message(nil), f.msgs...)
}

func (f *fakeConn) ofType(t string) []Message {
	var out []Message
	for _, m := range f.messages() {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeConn) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = nil
}

// stepClock advances one second on every call.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCoordinator() *Coordinator {
	return New(WithClock(newStepClock().Now), WithLogger(discardLogger()))
}

// connectAll registers fake connections with c and returns them by id.
func connectAll(c *Coordinator, ids ...string) map[string]*fakeConn {
	out := make(map[string]*fakeConn, len(ids))
	for _, id := range ids {
		fc := newFakeConn(id)
		c.Connect(fc)
		out[id] = fc
	}
	return out
}

func joinAs(c *Coordinator, roomID, connID string) error {
	return c.Join(roomID, connID, Participant{UserID: "u-" + connID, Username: connID})
}

func connIDs(items []ParticipantItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ConnectionID)
	}
	return out
}
