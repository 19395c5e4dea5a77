package client

import (
	"fmt"

	"github.com/AntDavi/translation-server/internal/domain"
	"github.com/sourcegraph/conc/panics"
)

// Listener receives lifecycle notifications. Methods are called from the
// client's own goroutines and must not block for long.
type Listener interface {
	OnConnected()
	OnJoined(roomID string)
	OnTranscription(t domain.Transcription)
	OnError(message string)
	OnDisconnected()
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Connected     func()
	JoinedRoom    func(roomID string)
	Transcription func(t domain.Transcription)
	Error         func(message string)
	Disconnected  func()
}

var _ Listener = ListenerFuncs{}

func (f ListenerFuncs) OnConnected() {
	if f.Connected != nil {
		f.Connected()
	}
}

func (f ListenerFuncs) OnJoined(roomID string) {
	if f.JoinedRoom != nil {
		f.JoinedRoom(roomID)
	}
}

func (f ListenerFuncs) OnTranscription(t domain.Transcription) {
	if f.Transcription != nil {
		f.Transcription(t)
	}
}

func (f ListenerFuncs) OnError(message string) {
	if f.Error != nil {
		f.Error(message)
	}
}

func (f ListenerFuncs) OnDisconnected() {
	if f.Disconnected != nil {
		f.Disconnected()
	}
}

// Subscribe registers l and returns a function that removes it.
func (c *Client) Subscribe(l Listener) (unsubscribe func()) {
	c.lmu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = l
	c.lmu.Unlock()

	return func() {
		c.lmu.Lock()
		delete(c.listeners, id)
		c.lmu.Unlock()
	}
}

// notify calls fn on every listener. A panicking listener is logged and
// the remaining listeners still run.
func (c *Client) notify(event string, fn func(Listener)) {
	c.lmu.RLock()
	ls := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		ls = append(ls, l)
	}
	c.lmu.RUnlock()

	for _, l := range ls {
		if r := panics.Try(func() { fn(l) }); r != nil {
			c.log.Error().Str("event", event).Str("panic", fmt.Sprint(r.Value)).Msg("listener panicked")
		}
	}
}
