// Package publish streams solution reports to a socket.io endpoint, such as
// a dashboard that displays halo and fold analysis as it is produced.
package publish

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/stencilgrid/internal/ctxlog"
	"github.com/vk/stencilgrid/internal/report"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultTimeout bounds the connection and the optional acknowledgement wait.
const DefaultTimeout = 15 * time.Second

// Options configure a Publisher.
type Options struct {
	// URL of the socket.io server, e.g. "http://localhost:3000/socket.io/".
	URL string
	// Namespace to join, "/" when empty.
	Namespace string
	// Event the report is emitted as.
	Event string
	// AckEvent, when set, is the event the server answers with once it has
	// stored the report. Publish waits for it.
	AckEvent           string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// conn is the part of a socket.io client connection Publish uses.
type conn interface {
	Once(event string, fn func(...any))
	Emit(event string, args ...any)
	Disconnect()
	ID() string
}

// socketConn adapts a connected *socket.Socket to conn.
type socketConn struct {
	s *socket.Socket
}

func (c socketConn) Once(event string, fn func(...any)) { c.s.Once(types.EventName(event), fn) }
func (c socketConn) Emit(event string, args ...any)     { c.s.Emit(event, args...) }
func (c socketConn) Disconnect()                        { c.s.Disconnect() }
func (c socketConn) ID() string                         { return fmt.Sprint(c.s.Id()) }

// Publisher emits reports over socket.io.
type Publisher struct {
	opts Options
	url  *url.URL
	dial func(ctx context.Context) (conn, error)
}

// New validates opts and returns a Publisher. No connection is made until
// Publish.
func New(opts Options) (*Publisher, error) {
	if opts.URL == "" {
		return nil, errors.New("publish URL is required")
	}
	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported URL scheme %q, expected http, https, ws or wss", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("URL %q has no host", opts.URL)
	}
	if opts.Event == "" {
		return nil, errors.New("publish event name is required")
	}
	if opts.Namespace == "" {
		opts.Namespace = "/"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	p := &Publisher{opts: opts, url: u}
	p.dial = p.dialSocket
	return p, nil
}

// Options returns the effective options.
func (p *Publisher) Options() Options { return p.opts }

// Publish connects, emits r as the configured event and disconnects.
func (p *Publisher) Publish(ctx context.Context, r *report.Report) error {
	logger := ctxlog.FromContext(ctx).With("url", p.opts.URL, "namespace", p.opts.Namespace, "event", p.opts.Event)

	payload, err := r.Native()
	if err != nil {
		return err
	}

	io, err := p.dial(ctx)
	if err != nil {
		return err
	}
	defer io.Disconnect()
	logger = logger.With("sid", io.ID())

	var acked chan struct{}
	if p.opts.AckEvent != "" {
		acked = make(chan struct{}, 1)
		io.Once(p.opts.AckEvent, func(...any) {
			logger.Debug("EVENT HANDLER: acknowledgement received", "ack_event", p.opts.AckEvent)
			select {
			case acked <- struct{}{}:
			default:
			}
		})
	}

	logger.Debug("Emitting report.", "solution", r.Solution, "grids", len(r.Grids))
	io.Emit(p.opts.Event, payload)

	if acked == nil {
		logger.Info("Report published.")
		return nil
	}
	select {
	case <-acked:
		logger.Info("Report published and acknowledged.")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while waiting for %q: %w", p.opts.AckEvent, ctx.Err())
	case <-time.After(p.opts.Timeout):
		return fmt.Errorf("timed out after %v waiting for %q", p.opts.Timeout, p.opts.AckEvent)
	}
}

func (p *Publisher) dialSocket(ctx context.Context) (conn, error) {
	s, err := p.connect(ctx)
	if err != nil {
		return nil, err
	}
	return socketConn{s: s}, nil
}

// connect opens a websocket-only socket.io connection to the namespace.
func (p *Publisher) connect(ctx context.Context) (*socket.Socket, error) {
	logger := ctxlog.FromContext(ctx).With("url", p.opts.URL)

	opts := socket.DefaultOptions()
	opts.SetPath(p.url.Path)
	if p.opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", p.url.Scheme, p.url.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(p.opts.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Debug("Connected.", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connection refused")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		logger.Debug("EVENT HANDLER: 'connect_error' event fired", "error", err)
		connectChan <- err
	})

	logger.Debug("Initiating connection...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return io, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(p.opts.Timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %v waiting for socket.io connection", p.opts.Timeout)
	}
}
