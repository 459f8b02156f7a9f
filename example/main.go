package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/dpotapov/go-mxml"
	"github.com/dpotapov/go-mxml/microxml"
	"github.com/dpotapov/go-mxml/microxml/conformance"
)

func LoggerMiddleware(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info("HTTP request", "method", r.Method, "url", r.URL)
		next.ServeHTTP(w, r)
	})
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// Refuse to start with a parser that disagrees with its own fixtures.
	fixtures, err := conformance.Bundled()
	if err == nil {
		err = conformance.CheckAll(fixtures)
	}
	if err != nil {
		logger.Error("Conformance check", "error", err)
		os.Exit(1)
	}
	logger.Info("Conformance check passed", "fixtures", len(fixtures))

	ph := &mxml.Handler{
		Parser: microxml.Parser{Entities: map[string]string{
			"nbsp": "\u00a0",
			"copy": "\u00a9",
		}},
		MaxBodyBytes: 4 << 20,
		OnError: func(r *http.Request, err error) {
			logger.Warn("Request failed", "url", r.URL.Redacted(), "error", err)
		},
		Logger: logger,
	}

	mux := http.NewServeMux()
	mux.Handle("/parse", ph)

	logger.Info("Starting HTTP server", "address", "http://localhost:8080/parse")

	err = http.ListenAndServe(":8080", LoggerMiddleware(mux, logger))

	logger.Error("HTTP server error", "error", err)
}
