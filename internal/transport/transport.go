// Package transport defines the interface for pluggable client transports.
//
// Each transport (HTTP, gRPC) exposes the sommelier's surface to clients
// and registers itself at startup. The sommelier doesn't care how requests
// arrive — it only works with the Service contract.
package transport

import (
	"context"

	"github.com/bankowy11-lgtm/vinoScans/internal/narrate"
	"github.com/bankowy11-lgtm/vinoScans/internal/sommelier"
	"github.com/bankowy11-lgtm/vinoScans/internal/wine"
)

// Service is the full surface a transport may expose. It is implemented by
// the sommelier; transports receive it at Listen time.
type Service interface {
	// Scan identifies a wine label and records it in the history.
	Scan(ctx context.Context, req *sommelier.ScanRequest) (*wine.ScanResult, error)

	// History returns the most-recent-first scan history.
	History() []wine.Record

	// ClearHistory empties the scan history.
	ClearHistory(ctx context.Context) error

	// Narrate synthesizes a spoken reading of tasting notes.
	Narrate(ctx context.Context, text string) (*narrate.Clip, error)
}

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "http", "grpc").
	Name() string

	// Listen starts accepting client requests and serves them from the
	// given service. It blocks until the context is cancelled.
	Listen(ctx context.Context, svc Service) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}
