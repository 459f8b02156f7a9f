// Package conformance loads and checks MicroXML parser fixtures.
//
// A fixture file is a JSON array of objects with an id, the source text and
// the expected tree in either "result" (well-formed input) or "recover"
// (input that needs repair). Trees use the JSON form of microxml.Node.
package conformance

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/dpotapov/go-mxml/microxml"
)

//go:embed testdata/tests.json
var bundled []byte

// ErrNoExpectation is returned by Check for fixtures that carry neither a
// result nor a recover tree.
var ErrNoExpectation = errors.New("fixture has no expected tree")

type Fixture struct {
	ID      string         `json:"id"`
	Source  string         `json:"source"`
	Result  *microxml.Node `json:"result,omitempty"`
	Recover *microxml.Node `json:"recover,omitempty"`
}

// Expected returns the tree the parser must produce: Result when present,
// otherwise Recover.
func (f Fixture) Expected() (*microxml.Node, bool) {
	if f.Result != nil {
		return f.Result, true
	}
	if f.Recover != nil {
		return f.Recover, true
	}
	return nil, false
}

// MismatchError reports a fixture whose parse differs from the expectation.
type MismatchError struct {
	ID   string
	Diff string // cmp.Diff output, -want +got
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("fixture %s: parse mismatch (-want +got):\n%s", e.ID, e.Diff)
}

// Load decodes a fixture file.
func Load(r io.Reader) ([]Fixture, error) {
	var fixtures []Fixture
	if err := json.NewDecoder(r).Decode(&fixtures); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return fixtures, nil
}

// LoadFS decodes the fixture file name from fsys.
func LoadFS(fsys fs.FS, name string) ([]Fixture, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()

	fixtures, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return fixtures, nil
}

// Bundled returns the fixtures shipped with the package.
func Bundled() ([]Fixture, error) {
	var fixtures []Fixture
	if err := json.Unmarshal(bundled, &fixtures); err != nil {
		return nil, fmt.Errorf("decode bundled fixtures: %w", err)
	}
	return fixtures, nil
}

// Check parses the fixture source and compares the tree with the expected
// one. Empty and missing child lists compare equal.
func Check(f Fixture) error {
	want, ok := f.Expected()
	if !ok {
		return fmt.Errorf("fixture %s: %w", f.ID, ErrNoExpectation)
	}
	got := microxml.Parse(f.Source)
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		return &MismatchError{ID: f.ID, Diff: diff}
	}
	return nil
}

// CheckAll checks every fixture that has an expectation and joins the
// mismatches.
func CheckAll(fixtures []Fixture) error {
	var errs []error
	for _, f := range fixtures {
		if _, ok := f.Expected(); !ok {
			continue
		}
		if err := Check(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
