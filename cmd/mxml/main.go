package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/dpotapov/go-mxml"
	"github.com/dpotapov/go-mxml/microxml"
)

func main() {
	os.Exit(run())
}

func run() int {
	return runWithArgs(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func runWithArgs(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("mxml", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", "json", "output format: json, xml, html or tree")
	query := fs.String("select", "", "print only elements matching this expression")
	diagnostics := fs.Bool("diagnostics", false, "wrap the output in a JSON envelope listing recoveries")
	indent := fs.Int("indent", 0, "indent xml output by this many spaces")
	entitiesPath := fs.String("entities", "", "JSON object of extra entity definitions")
	serveAddr := fs.String("serve", "", "serve the HTTP parser on this address instead of parsing files")
	verbose := fs.Bool("v", false, "log every recovery to stderr")
	var usageErr error
	fs.Usage = func() {
		usageErr = errors.Join(
			usageErr,
			writef(stderr, "Usage: %s [options] [file ...]\n\n", fs.Name()),
			writeln(stderr, "Parses MicroXML documents, repairing malformed markup. Reads stdin without files."),
			writeln(stderr),
			writeln(stderr, "Options:"),
		)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	var parser microxml.Parser
	if *entitiesPath != "" {
		entities, err := loadEntities(*entitiesPath)
		if err != nil {
			_ = writef(stderr, "error loading entities: %v\n", err)
			return 1
		}
		parser.Entities = entities
	}

	if *serveAddr != "" {
		h := &mxml.Handler{Parser: parser, Logger: logger}
		logger.Info("Starting HTTP server", "address", *serveAddr)
		err := http.ListenAndServe(*serveAddr, h)
		logger.Error("HTTP server error", "error", err)
		return 1
	}

	opts := mxml.Options{Diagnostics: *diagnostics, Indent: *indent}
	var err error
	if opts.Format, err = mxml.ParseFormat(*format); err != nil {
		_ = writef(stderr, "error: %v\n", err)
		return 2
	}
	if *query != "" {
		if opts.Select, err = microxml.Compile(*query); err != nil {
			_ = writef(stderr, "error: %v\n", err)
			return 2
		}
	}

	files := fs.Args()
	if len(files) == 0 {
		files = []string{"-"}
	}
	status := 0
	for _, name := range files {
		if err := parseFile(name, stdin, stdout, &parser, opts, logger); err != nil {
			_ = writef(stderr, "error: %v\n", err)
			status = 1
		}
	}
	return status
}

func parseFile(name string, stdin io.Reader, stdout io.Writer, p *microxml.Parser, opts mxml.Options, logger *slog.Logger) error {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}

	text := string(data)
	doc, parseErr := p.Parse(text)
	if diags := microxml.Diagnostics(parseErr); len(diags) > 0 {
		src := microxml.Normalize(text)
		for _, d := range diags {
			logger.Debug("Recovered", "file", name, "pos", d.Span.String(), "error", d.Err, "token", d.Token,
				"source", d.SourceLine(src))
		}
	}

	if err := mxml.Encode(stdout, doc, parseErr, opts); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if opts.Format != mxml.FormatJSON && opts.Format != mxml.FormatTree && !opts.Diagnostics {
		return writeln(stdout)
	}
	return nil
}

func loadEntities(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entities map[string]string
	if err := json.Unmarshal(data, &entities); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return entities, nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
