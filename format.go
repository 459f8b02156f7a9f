package mxml

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/dpotapov/go-mxml/microxml"
)

// Format selects how a parsed tree is written.
type Format string

const (
	FormatJSON Format = "json" // fixture tree form
	FormatXML  Format = "xml"
	FormatHTML Format = "html"
	FormatTree Format = "tree" // debugging dump
)

// ParseFormat validates a format name. The empty string means FormatJSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatXML, FormatHTML, FormatTree:
		return f, nil
	}
	return "", fmt.Errorf("invalid format %q", s)
}

// ContentType returns the media type of output written in format f.
func (f Format) ContentType() string {
	switch f {
	case FormatXML:
		return "application/xml; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatTree:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Options control Encode.
type Options struct {
	Format Format

	// Select, if set, writes only the matching elements instead of the whole tree.
	Select *microxml.Query

	// Diagnostics wraps the output in a JSON Envelope that lists the recoveries
	// applied by the parser.
	Diagnostics bool

	// Indent pretty-prints FormatXML output.
	Indent int
}

// ParseOptions reads Options from URL query parameters: format, select,
// diagnostics and indent.
func ParseOptions(q url.Values) (Options, error) {
	var opts Options
	var err error

	if opts.Format, err = ParseFormat(q.Get("format")); err != nil {
		return opts, err
	}
	if s := q.Get("select"); s != "" {
		if opts.Select, err = microxml.Compile(s); err != nil {
			return opts, err
		}
	}
	if s := q.Get("diagnostics"); s != "" {
		if opts.Diagnostics, err = strconv.ParseBool(s); err != nil {
			return opts, fmt.Errorf("invalid diagnostics flag %q", s)
		}
	}
	if s := q.Get("indent"); s != "" {
		if opts.Indent, err = strconv.Atoi(s); err != nil || opts.Indent < 0 {
			return opts, fmt.Errorf("invalid indent %q", s)
		}
	}
	return opts, nil
}

// Envelope is the JSON document written when diagnostics are requested.
// Tree or Matches carry the result in FormatJSON; the other formats put
// their rendering in Output.
type Envelope struct {
	Tree        *microxml.Node   `json:"tree,omitempty"`
	Matches     []*microxml.Node `json:"matches,omitempty"`
	Output      string           `json:"output,omitempty"`
	Diagnostics []Diagnostic     `json:"diagnostics"`
}

// Encode writes doc to w. parseErr is the error returned alongside doc by
// microxml.Parser.Parse; it only matters when opts.Diagnostics is set.
func Encode(w io.Writer, doc *microxml.Node, parseErr error, opts Options) error {
	nodes := []*microxml.Node{doc}
	if opts.Select != nil {
		var err error
		if nodes, err = opts.Select.Select(doc); err != nil {
			return err
		}
	}

	if !opts.Diagnostics {
		if opts.Format == FormatJSON || opts.Format == "" {
			if opts.Select != nil {
				return encodeJSON(w, nonNil(nodes))
			}
			return encodeJSON(w, doc)
		}
		return render(w, nodes, opts)
	}

	env := Envelope{Diagnostics: NewDiagnostics(parseErr)}
	switch {
	case opts.Format == FormatJSON || opts.Format == "":
		if opts.Select != nil {
			env.Matches = nonNil(nodes)
		} else {
			env.Tree = doc
		}
	default:
		var sb strings.Builder
		if err := render(&sb, nodes, opts); err != nil {
			return err
		}
		env.Output = sb.String()
	}
	return encodeJSON(w, env)
}

func nonNil(nodes []*microxml.Node) []*microxml.Node {
	if nodes == nil {
		return []*microxml.Node{}
	}
	return nodes
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// render writes nodes one after another in a markup or dump format.
func render(w io.Writer, nodes []*microxml.Node, opts Options) error {
	for _, n := range nodes {
		var err error
		switch opts.Format {
		case FormatXML:
			err = microxml.Render(w, n, microxml.RenderOptions{Indent: opts.Indent})
		case FormatHTML:
			err = microxml.RenderHTML(w, n)
		case FormatTree:
			err = microxml.Dump(w, n)
		default:
			err = fmt.Errorf("invalid format %q", opts.Format)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
