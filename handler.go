// Package mxml serves the recovering MicroXML parser over HTTP.
//
// A POST request body is parsed and the tree is written back in the format
// chosen by the query parameters (see ParseOptions). A websocket connection
// parses every incoming message and answers with a JSON Envelope.
package mxml

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/dpotapov/go-mxml/microxml"
)

// DefaultMaxBodyBytes is the request body limit used when
// Handler.MaxBodyBytes is zero.
const DefaultMaxBodyBytes = 1 << 20

// wsUpgrader is a Gorilla WebSocket instance, used to respond HTTP requests with WebSocket.
var wsUpgrader = websocket.Upgrader{}

type Handler struct {
	// Parser is used for every request. The zero value knows the predefined
	// entities only.
	Parser microxml.Parser

	// MaxBodyBytes limits the size of a request body or websocket message.
	// Larger requests are refused with 413 Request Entity Too Large.
	MaxBodyBytes int64

	// OnError is a callback that is called when an error occurs while serving a request.
	// Client errors (bad method, bad query, oversized body) are not reported.
	OnError func(*http.Request, error)

	// Logger configures logging for internal events.
	Logger *slog.Logger

	// init is used to initialize the handler only once.
	init sync.Once

	// logger is a private logger instance that is used to log internal events.
	logger *slog.Logger

	maxBodyBytes int64
}

// httpError is a request failure with a status code other than 500.
type httpError struct {
	status int
	err    error
}

func (e *httpError) Error() string {
	if e.err == nil {
		return http.StatusText(e.status)
	}
	return e.err.Error()
}

func (e *httpError) Unwrap() error {
	return e.err
}

// ServeHTTP implements the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.init.Do(func() {
		h.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		if h.Logger != nil {
			h.logger = h.Logger
		}
		h.maxBodyBytes = h.MaxBodyBytes
		if h.maxBodyBytes <= 0 {
			h.maxBodyBytes = DefaultMaxBodyBytes
		}
	})

	err := h.handleRequest(w, r)
	if err == nil {
		return
	}

	var he *httpError
	if errors.As(err, &he) {
		http.Error(w, he.Error(), he.status)
		h.logger.Debug("Reject HTTP request", "url", r.URL.Redacted(), "status", he.status, "error", err)
		return
	}

	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	h.fail(r, err)
}

func (h *Handler) fail(r *http.Request, err error) {
	h.logger.Error("Serve HTTP request", "url", r.URL.Redacted(), "error", err)
	if h.OnError != nil {
		h.OnError(r, err)
	}
}

func (h *Handler) handleRequest(w http.ResponseWriter, r *http.Request) error {
	opts, err := ParseOptions(r.URL.Query())
	if err != nil {
		return &httpError{status: http.StatusBadRequest, err: err}
	}

	if websocket.IsWebSocketUpgrade(r) {
		return h.serveWebsocket(w, r, opts)
	}

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		return &httpError{status: http.StatusMethodNotAllowed}
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return &httpError{status: http.StatusRequestEntityTooLarge, err: err}
		}
		return fmt.Errorf("read request body: %w", err)
	}

	doc, parseErr := h.parse(r, body)

	w.Header().Set("Content-Type", contentType(opts))
	if err := Encode(w, doc, parseErr, opts); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	return nil
}

func contentType(opts Options) string {
	if opts.Diagnostics {
		return FormatJSON.ContentType()
	}
	return opts.Format.ContentType()
}

func (h *Handler) parse(r *http.Request, body []byte) (*microxml.Node, error) {
	doc, err := h.Parser.Parse(string(body))
	if diags := microxml.Diagnostics(err); len(diags) > 0 {
		h.logger.Debug("Recovered malformed input", "url", r.URL.Redacted(), "recoveries", len(diags),
			"first", diags[0].Error())
	}
	return doc, err
}

// serveWebsocket parses each incoming message until the client goes away.
// Every reply is an Envelope. Errors after the upgrade are reported through
// OnError since no HTTP response can be sent anymore.
func (h *Handler) serveWebsocket(w http.ResponseWriter, r *http.Request, opts Options) error {
	ws, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.logger.Debug("Upgrade websocket", "url", r.URL.Redacted(), "error", err)
		return nil
	}
	defer ws.Close()

	ws.SetReadLimit(h.maxBodyBytes)
	opts.Diagnostics = true

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			switch {
			case websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure):
			case errors.Is(err, websocket.ErrReadLimit):
				h.logger.Debug("Websocket message too large", "url", r.URL.Redacted())
			default:
				h.fail(r, fmt.Errorf("read websocket message: %w", err))
			}
			return nil
		}

		doc, parseErr := h.parse(r, msg)

		mw, err := ws.NextWriter(websocket.TextMessage)
		if err != nil {
			h.fail(r, fmt.Errorf("get websocket writer: %w", err))
			return nil
		}
		if err := Encode(mw, doc, parseErr, opts); err != nil {
			h.fail(r, fmt.Errorf("encode websocket reply: %w", err))
			return nil
		}
		if err := mw.Close(); err != nil {
			h.fail(r, fmt.Errorf("close websocket writer: %w", err))
			return nil
		}
	}
}
