package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AntDavi/translation-server/internal/domain"
	"github.com/AntDavi/translation-server/internal/protocol"
)

var errFakeClosed = errors.New("fake transport closed")

type fakeTransport struct {
	in   chan []byte
	done chan struct{}
	once sync.Once

	mu     sync.Mutex
	writes [][]byte
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		in:   make(chan []byte, 16),
		done: make(chan struct{}),
	}
}

func (t *fakeTransport) Read() ([]byte, error) {
	select {
	case b := <-t.in:
		return b, nil
	case <-t.done:
		return nil, errFakeClosed
	}
}

func (t *fakeTransport) Write(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	select {
	case <-t.done:
		return errFakeClosed
	default:
	}
	t.writes = append(t.writes, append([]byte(nil), data...))
	return nil
}

func (t *fakeTransport) Close() error {
	t.once.Do(func() { close(t.done) })
	return nil
}

func (t *fakeTransport) closed() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

func (t *fakeTransport) push(tb testing.TB, m protocol.Message) {
	tb.Helper()
	b, err := protocol.Encode(m)
	if err != nil {
		tb.Fatal(err)
	}
	t.in <- b
}

func (t *fakeTransport) written(tb testing.TB) []map[string]any {
	tb.Helper()
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]map[string]any, 0, len(t.writes))
	for _, w := range t.writes {
		var m map[string]any
		if err := json.Unmarshal(w, &m); err != nil {
			tb.Fatal(err)
		}
		out = append(out, m)
	}
	return out
}

type dialResult struct {
	t   *fakeTransport
	err error
}

type fakeDialer struct {
	mu      sync.Mutex
	results []dialResult
	dialed  []*fakeTransport
	count   int
	// gate, when set, holds every Dial until it is closed or fed.
	gate chan struct{}
}

func (d *fakeDialer) Dial(_ context.Context, _ string) (Transport, error) {
	d.mu.Lock()
	d.count++
	gate := d.gate
	d.mu.Unlock()

	if gate != nil {
		<-gate
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	res := dialResult{t: newFakeTransport()}
	if len(d.results) > 0 {
		res = d.results[0]
		d.results = d.results[1:]
	}
	if res.err != nil {
		return nil, res.err
	}
	d.dialed = append(d.dialed, res.t)
	return res.t, nil
}

func (d *fakeDialer) dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}

func (d *fakeDialer) last(tb testing.TB) *fakeTransport {
	tb.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.dialed) == 0 {
		tb.Fatal("nothing dialed")
	}
	return d.dialed[len(d.dialed)-1]
}

type fakeTimer struct {
	d time.Duration
	f func()

	mu      sync.Mutex
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (t *fakeTimer) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// fire runs the callback even if the timer was stopped, emulating a
// timer that already fired when Stop raced with it.
func (t *fakeTimer) fire() {
	t.mu.Lock()
	t.fired = true
	t.mu.Unlock()
	t.f()
}

type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) pending() []*fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*fakeTimer
	for _, t := range s.timers {
		t.mu.Lock()
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
		t.mu.Unlock()
	}
	return out
}

func (s *fakeScheduler) all() []*fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*fakeTimer(nil), s.timers...)
}

type recorder struct {
	mu             sync.Mutex
	events         []string
	transcriptions []domain.Transcription
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) OnConnected()           { r.add("connected") }
func (r *recorder) OnJoined(roomID string) { r.add("joined:" + roomID) }
func (r *recorder) OnError(msg string)     { r.add("error:" + msg) }
func (r *recorder) OnDisconnected()        { r.add("disconnected") }

func (r *recorder) OnTranscription(t domain.Transcription) {
	r.mu.Lock()
	r.transcriptions = append(r.transcriptions, t)
	r.mu.Unlock()
	r.add("transcription")
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) has(e string) bool {
	for _, got := range r.snapshot() {
		if got == e {
			return true
		}
	}
	return false
}

func waitFor(tb testing.TB, what string, cond func() bool) {
	tb.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			tb.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
