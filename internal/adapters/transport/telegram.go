package transport

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"horsefax/internal/core/domain"
	"horsefax/internal/core/domain/message"
	"horsefax/internal/core/port"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultAPIURL         = "https://api.telegram.org"
	DefaultPollTimeout    = 60 * time.Second
	DefaultRetryBackoff   = 10 * time.Second
	DefaultRequestTimeout = 10 * time.Second

	// pollGrace is added to the long-poll timeout so the server can answer before the client gives up.
	pollGrace = 10 * time.Second
)

type Config struct {
	APIURL         string
	Token          string
	PollTimeout    time.Duration
	RetryBackoff   time.Duration
	RequestTimeout time.Duration
}

type Option func(*Telegram)

func WithHTTPClient(client *http.Client) Option {
	return func(t *Telegram) {
		t.client = client
	}
}

// WithCursorStore makes the cursor survive restarts. The stored value is loaded on Connect and
// written on every advance.
func WithCursorStore(store port.CursorStore) Option {
	return func(t *Telegram) {
		t.store = store
	}
}

// Telegram long-polls getUpdates and delivers every update at most once per process, in
// ascending update_id order, on a single goroutine.
type Telegram struct {
	cfg    Config
	client *http.Client
	store  port.CursorStore

	cursor    atomic.Int64
	connected atomic.Bool

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

type envelope struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

type getUpdatesRequest struct {
	Offset  int64 `json:"offset"`
	Timeout int   `json:"timeout"`
}

func New(cfg Config, opts ...Option) *Telegram {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = DefaultPollTimeout
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = DefaultRetryBackoff
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	t := &Telegram{cfg: cfg, client: &http.Client{}}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Connect starts the polling loop. It fails if a previous loop is still running.
func (t *Telegram) Connect(ctx context.Context, handler port.UpdateHandler) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done != nil {
		select {
		case <-t.done:
		default:
			return domain.ErrAlreadyConnected
		}
	}

	if t.store != nil {
		cursor, err := t.store.Load()
		if err != nil {
			return fmt.Errorf("failed to load update cursor: %w", err)
		}
		t.cursor.Store(cursor)
	}

	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	t.connected.Store(true)

	log.Info().Int64("cursor", t.cursor.Load()).Msg("connected, starting to poll for updates")

	go t.run(ctx, handler, t.stop, t.done)

	return nil
}

func (t *Telegram) Connected() bool {
	return t.connected.Load()
}

// Disconnect is observed at the top of the next loop iteration. A running poll or batch is
// allowed to finish; a pending backoff wait is cut short.
func (t *Telegram) Disconnect() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.connected.Load() {
		return
	}

	t.connected.Store(false)
	close(t.stop)

	log.Info().Msg("disconnect requested")
}

// Done is closed once the polling loop started by the last Connect has exited.
func (t *Telegram) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}

	return t.done
}

// Cursor returns the id of the last update handed to the handler.
func (t *Telegram) Cursor() int64 {
	return t.cursor.Load()
}

func (t *Telegram) run(ctx context.Context, handler port.UpdateHandler, stop, done chan struct{}) {
	defer close(done)
	defer t.connected.Store(false)

	for {
		select {
		case <-stop:
			log.Info().Msg("polling stopped")
			return
		case <-ctx.Done():
			log.Info().Msg("context done, polling stopped")
			return
		default:
		}

		updates, err := t.poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}

			log.Error().Err(err).Dur("backoff", t.cfg.RetryBackoff).Msg("polling for updates failed")

			select {
			case <-stop:
			case <-ctx.Done():
			case <-time.After(t.cfg.RetryBackoff):
			}

			continue
		}

		t.dispatch(ctx, updates, handler)
	}
}

func (t *Telegram) poll(ctx context.Context) ([]message.Update, error) {
	req := getUpdatesRequest{
		Offset:  t.cursor.Load() + 1,
		Timeout: int(t.cfg.PollTimeout.Seconds()),
	}

	result, err := t.call(ctx, "getUpdates", req, t.cfg.PollTimeout+pollGrace)
	if err != nil {
		return nil, err
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(result, &raws); err != nil {
		return nil, fmt.Errorf("%w: malformed getUpdates result: %w", domain.ErrTransport, err)
	}

	updates := make([]message.Update, 0, len(raws))
	for _, raw := range raws {
		u, err := message.ParseUpdate(raw)
		if err != nil {
			log.Warn().Err(err).Msg("skipping malformed update")
			continue
		}
		updates = append(updates, u)
	}

	return updates, nil
}

func (t *Telegram) dispatch(ctx context.Context, updates []message.Update, handler port.UpdateHandler) {
	slices.SortFunc(updates, func(a, b message.Update) int {
		return cmp.Compare(a.ID, b.ID)
	})

	for _, u := range updates {
		l := log.With().Int64("updateId", u.ID).Logger()

		if u.ID <= t.cursor.Load() {
			l.Debug().Int64("cursor", t.cursor.Load()).Msg("skipping already consumed update")
			continue
		}

		// the cursor moves before the handler runs, so a failing update is never redelivered
		t.cursor.Store(u.ID)
		if t.store != nil {
			if err := t.store.Save(u.ID); err != nil {
				l.Warn().Err(err).Msg("failed to persist update cursor")
			}
		}

		if err := deliver(ctx, handler, u); err != nil {
			l.Error().Err(err).Msg("update handler failed")
		}
	}
}

func deliver(ctx context.Context, handler port.UpdateHandler, u message.Update) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("update handler panicked: %v", r)
		}
	}()

	return handler(ctx, u)
}

// Send posts payload as JSON to the given API method and returns the result field of the reply.
func (t *Telegram) Send(ctx context.Context, endpoint string, payload any) (json.RawMessage, error) {
	return t.call(ctx, endpoint, payload, t.cfg.RequestTimeout)
}

func (t *Telegram) call(ctx context.Context, endpoint string, payload any, timeout time.Duration) (json.RawMessage, error) {
	l := log.With().Str("endpoint", endpoint).Logger()

	if payload == nil {
		payload = struct{}{}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", endpoint, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	endpointURL := fmt.Sprintf("%s/bot%s/%s", t.cfg.APIURL, t.cfg.Token, endpoint)

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpointURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	l.Debug().Msg("sending request")

	res, err := t.client.Do(req)
	if err != nil {
		// the url carries the token, keep it out of the error
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("%w: %s request failed: %w", domain.ErrTransport, endpoint, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: error reading %s response: %w", domain.ErrTransport, endpoint, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %s returned status %d: %s",
			domain.ErrTransport, endpoint, res.StatusCode, describe(env, raw))
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: malformed %s response: %w", domain.ErrTransport, endpoint, decodeErr)
	}
	if !env.OK {
		return nil, fmt.Errorf("%w: %s not ok (%d): %s", domain.ErrTransport, endpoint, env.ErrorCode, env.Description)
	}

	return env.Result, nil
}

func describe(env envelope, raw []byte) string {
	if env.Description != "" {
		return env.Description
	}

	return strings.TrimSpace(string(raw))
}
