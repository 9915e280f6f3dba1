// Package parser defines the neutral parsing contract every format reader
// implements (spec.md §4.5). Parsers are pure with respect to the store:
// they never insert, they only produce ParseResult for the Batch Ingester
// to pass on to the Transaction Service. Grounded on
// original_source/parsers/mf/cams.py, karvy.py, and
// original_source/parsers/stock, reimplemented as a Go interface + row
// abstraction instead of per-parser Python classes.
package parser

import (
	"io"
)

// Row is one parsed, mapped record: a case-insensitive view over whatever
// columns a format actually had, generalizing every original_source
// parser's "fuzzy column mapping" step into a single lookup type.
type Row struct {
	fields map[string]string
}

func NewRow(fields map[string]string) Row {
	normalized := make(map[string]string, len(fields))
	for k, v := range fields {
		normalized[normalizeKey(k)] = v
	}
	return Row{fields: normalized}
}

func normalizeKey(k string) string {
	out := make([]byte, 0, len(k))
	for i := 0; i < len(k); i++ {
		c := k[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c == ' ' || c == '_' || c == '-' {
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

// GetByAny returns the first non-empty value among candidate column names,
// the case-insensitive fuzzy-match-against-a-priority-list step spec.md
// §4.5 step 2 describes (e.g. candidates for "date": "date", "txndate",
// "transactiondate", "trade date").
func (r Row) GetByAny(candidates ...string) (string, bool) {
	for _, c := range candidates {
		if v, ok := r.fields[normalizeKey(c)]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// ParseResult mirrors spec.md §4.5's neutral output shape. Only one of
// Transactions/Holdings/Events is populated per parser.
type ParseResult struct {
	Success      bool
	SourceFile   string
	Errors       []string
	Warnings     []string
	Transactions []Row
	Holdings     []Row
	Events       []Row
}

// Source carries the file reader plus an optional password, the
// PDF/spreadsheet-reader abstraction spec.md §4.5 calls "format readers
// (injected dependency)".
type Source struct {
	Name     string
	Reader   io.Reader
	Password string
}

// Format is the contract every concrete parser (cams, karvy, zerodha,
// icici, nsdlcas, ppf, bank) implements.
type Format interface {
	// Name identifies the parser for dispatch and for the idempotency key
	// prefix (spec.md §4.4).
	Name() string
	Parse(src Source) (ParseResult, error)
}

// Registry holds parsers keyed by Name() and returns one from Get; it does
// not look at file names or content. Choosing the parser for a file, the
// ingester's `dispatch(file.extension)` step (spec.md §4.6), is done by the
// ingest.Dispatcher the caller supplies.
type Registry struct {
	byName map[string]Format
}

func NewRegistry() *Registry {
	return &Registry{byName: map[string]Format{}}
}

func (r *Registry) Register(f Format) {
	r.byName[f.Name()] = f
}

func (r *Registry) Get(name string) (Format, bool) {
	f, ok := r.byName[name]
	return f, ok
}
