// Package antivirus screens uploaded files before they reach object storage.
package antivirus

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the scanner cannot be reached. Callers treat it as a rejection.
var ErrUnavailable = errors.New("antivirus: scanner unavailable")

// Result of one scan. Threat is set only when Infected is true.
type Result struct {
	Infected bool
	Threat   string
	Scanner  string
}

type Scanner interface {
	Scan(ctx context.Context, name string, data []byte) (Result, error)
	Name() string
}

// Nop accepts everything. Used when no daemon is configured.
type Nop struct{}

var _ Scanner = Nop{}

func (Nop) Scan(context.Context, string, []byte) (Result, error) {
	return Result{Scanner: "noop"}, nil
}

func (Nop) Name() string { return "noop" }
