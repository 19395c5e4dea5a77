// Package client is the participant side of the relay: it connects,
// joins a room, sends utterances and reports incoming transcriptions.
package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/AntDavi/translation-server/internal/core"
	"github.com/AntDavi/translation-server/internal/protocol"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const DefaultReconnectInterval = 5 * time.Second

type Config struct {
	URL      string
	ClientID string
	RoomID   string
	Language string

	AutoReconnect     bool
	ReconnectInterval time.Duration
	// ReconnectMaxInterval enables exponential backoff when it is larger
	// than ReconnectInterval.
	ReconnectMaxInterval time.Duration

	Logger    *zerolog.Logger
	Dialer    Dialer
	Scheduler Scheduler
}

type Client struct {
	cfg    Config
	log    zerolog.Logger
	dialer Dialer
	sched  Scheduler

	mu         sync.Mutex
	state      State
	transport  Transport
	epoch      uint64 // bumped by every connect attempt and Disconnect
	cancelDial context.CancelFunc
	retry      Timer
	failures   int

	lmu          sync.RWMutex
	listeners    map[int]Listener
	nextListener int
}

func New(cfg Config) (*Client, error) {
	switch {
	case cfg.URL == "":
		return nil, errors.New("client: url is required")
	case cfg.ClientID == "":
		return nil, errors.New("client: client id is required")
	case cfg.RoomID == "":
		return nil, errors.New("client: room id is required")
	case cfg.Language == "":
		return nil, errors.New("client: language is required")
	}
	if cfg.ReconnectInterval <= 0 {
		cfg.ReconnectInterval = DefaultReconnectInterval
	}

	c := &Client{
		cfg:       cfg,
		dialer:    cfg.Dialer,
		sched:     cfg.Scheduler,
		listeners: make(map[int]Listener),
	}
	if cfg.Logger != nil {
		c.log = *cfg.Logger
	} else {
		c.log = log.With().Str("module", "client").Logger()
	}
	c.log = c.log.With().Str("participant", cfg.ClientID).Logger()
	if c.dialer == nil {
		c.dialer = WSDialer{}
	}
	if c.sched == nil {
		c.sched = realScheduler{}
	}
	return c, nil
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) IsConnected() bool {
	s := c.State()
	return s == Connected || s == Joined
}

func (c *Client) IsJoined() bool { return c.State() == Joined }

func (c *Client) RoomID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.RoomID
}

func (c *Client) Language() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Language
}

// Connect dials the server and sends join. It returns once the join frame
// is written; the ack arrives asynchronously as OnJoined.
func (c *Client) Connect(ctx context.Context) error {
	return c.connect(ctx, false, 0)
}

// connect with retry set only proceeds if the reconnect scheduled at
// retryEpoch is still current.
func (c *Client) connect(ctx context.Context, retry bool, retryEpoch uint64) error {
	c.mu.Lock()
	if retry && (c.epoch != retryEpoch || c.state != Reconnecting) {
		c.mu.Unlock()
		return &core.UsageError{Op: "reconnect", Err: core.ErrConnectAborted}
	}
	switch c.state {
	case Connecting, Connected, Joined:
		c.mu.Unlock()
		return &core.UsageError{Op: "connect", Err: core.ErrAlreadyConnected}
	}
	c.stopRetryLocked()
	c.epoch++
	epoch := c.epoch
	dctx, cancel := context.WithCancel(ctx)
	c.cancelDial = cancel
	c.state = Connecting
	url := c.cfg.URL
	c.mu.Unlock()

	c.log.Debug().Str("url", url).Msg("connecting")
	t, err := c.dialer.Dial(dctx, url)
	cancel()

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		if t != nil {
			_ = t.Close()
		}
		return &core.UsageError{Op: "connect", Err: core.ErrConnectAborted}
	}
	c.cancelDial = nil
	if err != nil {
		c.state = Disconnected
		c.scheduleReconnectLocked()
		c.mu.Unlock()
		c.log.Warn().Err(err).Msg("connect failed")
		c.notify("error", func(l Listener) { l.OnError("connect failed: " + err.Error()) })
		return &core.TransportError{Op: "dial", Err: err}
	}
	c.transport = t
	c.state = Connected
	c.failures = 0
	join := &protocol.Join{ClientID: c.cfg.ClientID, RoomID: c.cfg.RoomID, Language: c.cfg.Language}
	c.mu.Unlock()

	c.log.Info().Str("room", join.RoomID).Msg("connected")
	c.notify("connected", func(l Listener) { l.OnConnected() })

	frame, err := protocol.Encode(join)
	if err == nil {
		err = t.Write(frame)
	}
	if err != nil {
		c.onTransportClosed(epoch, t, err)
		return &core.TransportError{Op: "send join", Err: err}
	}

	go c.readLoop(epoch, t)
	return nil
}

// Disconnect closes the connection and cancels any pending reconnect. It
// also aborts a Connect that is still dialing.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.epoch++
	c.stopRetryLocked()
	if c.cancelDial != nil {
		c.cancelDial()
		c.cancelDial = nil
	}
	t := c.transport
	c.transport = nil
	prev := c.state
	c.state = Disconnected
	c.mu.Unlock()

	if t != nil {
		_ = t.Close()
	}
	if prev == Disconnected {
		return
	}
	c.log.Info().Str("from", prev.String()).Msg("disconnected by user")
	// Only a live transport has a matching connected event; Reconnecting
	// already reported its loss.
	if prev == Connected || prev == Joined {
		c.notify("disconnected", func(l Listener) { l.OnDisconnected() })
	}
}

// SendUtterance sends text to the joined room and returns the generated
// utterance id. It fails without touching the network unless joined:
// ErrNotConnected with no live transport, ErrNotJoined before the ack.
func (c *Client) SendUtterance(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", &core.UsageError{Op: "send utterance", Err: core.ErrEmptyText}
	}

	c.mu.Lock()
	switch {
	case c.transport == nil || (c.state != Connected && c.state != Joined):
		c.mu.Unlock()
		return "", &core.UsageError{Op: "send utterance", Err: core.ErrNotConnected}
	case c.state != Joined:
		c.mu.Unlock()
		return "", &core.UsageError{Op: "send utterance", Err: core.ErrNotJoined}
	}
	t := c.transport
	msg := &protocol.Utterance{
		UtteranceID: newUtteranceID(),
		SpeakerID:   c.cfg.ClientID,
		RoomID:      c.cfg.RoomID,
		Language:    c.cfg.Language,
		Text:        text,
	}
	c.mu.Unlock()

	frame, err := protocol.Encode(msg)
	if err != nil {
		return "", err
	}
	if err := t.Write(frame); err != nil {
		return "", &core.TransportError{Op: "send utterance", Err: err}
	}
	c.log.Debug().Str("utterance", msg.UtteranceID).Msg("utterance sent")
	return msg.UtteranceID, nil
}

// ChangeRoom switches rooms by reconnecting. Offline, it only updates the
// room used by the next Connect.
func (c *Client) ChangeRoom(ctx context.Context, roomID string) error {
	if roomID == "" {
		return &core.UsageError{Op: "change room", Err: core.ErrMissingField}
	}
	return c.reconfigure(ctx, func(cfg *Config) { cfg.RoomID = roomID })
}

// ChangeLanguage switches the listening language by reconnecting.
func (c *Client) ChangeLanguage(ctx context.Context, lang string) error {
	if lang == "" {
		return &core.UsageError{Op: "change language", Err: core.ErrMissingField}
	}
	return c.reconfigure(ctx, func(cfg *Config) { cfg.Language = lang })
}

func (c *Client) reconfigure(ctx context.Context, apply func(*Config)) error {
	c.mu.Lock()
	apply(&c.cfg)
	active := c.state != Disconnected
	c.mu.Unlock()

	if !active {
		return nil
	}
	c.Disconnect()
	return c.Connect(ctx)
}

func (c *Client) readLoop(epoch uint64, t Transport) {
	for {
		data, err := t.Read()
		if err != nil {
			c.onTransportClosed(epoch, t, err)
			return
		}
		c.dispatch(epoch, data)
	}
}

func (c *Client) dispatch(epoch uint64, data []byte) {
	msg, err := protocol.Decode(data)
	if err != nil {
		c.log.Warn().Err(err).Msg("bad frame from server")
		c.notify("error", func(l Listener) { l.OnError(err.Error()) })
		return
	}

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return
	}
	if _, ok := msg.(*protocol.Joined); ok && c.state == Connected {
		c.state = Joined
	}
	c.mu.Unlock()

	switch m := msg.(type) {
	case *protocol.Joined:
		c.log.Info().Str("room", m.RoomID).Msg("joined")
		c.notify("joined", func(l Listener) { l.OnJoined(m.RoomID) })
	case *protocol.Transcription:
		tr := m.Domain()
		c.notify("transcription", func(l Listener) { l.OnTranscription(tr) })
	case *protocol.Error:
		c.log.Warn().Str("message", m.Message).Msg("server error")
		c.notify("error", func(l Listener) { l.OnError(m.Message) })
	default:
		c.log.Debug().Str("type", msg.MessageType()).Msg("ignoring frame")
	}
}

// onTransportClosed handles a close that Disconnect did not cause.
func (c *Client) onTransportClosed(epoch uint64, t Transport, cause error) {
	_ = t.Close()

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return
	}
	c.epoch++
	c.transport = nil
	c.state = Disconnected
	c.scheduleReconnectLocked()
	c.mu.Unlock()

	c.log.Warn().Err(cause).Msg("connection lost")
	c.notify("disconnected", func(l Listener) { l.OnDisconnected() })
}

func (c *Client) scheduleReconnectLocked() {
	if !c.cfg.AutoReconnect {
		return
	}
	c.stopRetryLocked()
	delay := c.backoffLocked()
	c.failures++
	c.state = Reconnecting
	epoch := c.epoch
	c.retry = c.sched.AfterFunc(delay, func() { c.reconnect(epoch) })
	c.log.Info().Dur("delay", delay).Msg("reconnect scheduled")
}

func (c *Client) backoffLocked() time.Duration {
	d := c.cfg.ReconnectInterval
	limit := c.cfg.ReconnectMaxInterval
	if limit <= d {
		return d
	}
	for i := 0; i < c.failures && d < limit; i++ {
		d *= 2
	}
	return min(d, limit)
}

func (c *Client) stopRetryLocked() {
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
}

func (c *Client) reconnect(epoch uint64) {
	if err := c.connect(context.Background(), true, epoch); err != nil {
		c.log.Debug().Err(err).Msg("reconnect attempt failed")
	}
}

func newUtteranceID() string {
	return "utt-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
