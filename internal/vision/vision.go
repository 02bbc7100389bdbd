// Package vision defines the interface for AI-based wine label identification.
//
// An identifier takes a base64-encoded JPEG of a label and produces a fully
// validated wine record. vinoScans ships with a Gemini backend; the interface
// keeps the pipeline open to self-hosted vision models.
package vision

import (
	"context"
	"errors"

	"github.com/bankowy11-lgtm/vinoScans/internal/wine"
)

// ErrUnreadable is returned when the service response is absent, empty, or
// violates the declared schema. The caller should ask the user for a clearer
// shot; no partial record is ever produced.
var ErrUnreadable = errors.New("unable to analyze the photo, retry with a clearer shot")

// Identifier is the interface for label identification backends.
type Identifier interface {
	// Name returns the backend identifier (e.g., "gemini").
	Name() string

	// Identify sends the base64 JPEG payload to the vision service and
	// returns a validated record with a locally assigned ID and timestamp.
	// Safe to retry; the client itself never retries.
	Identify(ctx context.Context, imagePayload string) (*wine.Record, error)

	// Close releases any resources held by the identifier.
	Close() error
}
