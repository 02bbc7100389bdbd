// Package sommelier implements the core scan pipeline.
//
// The sommelier receives label images from transports, runs them through
// the vision identifier, and records successful identifications in the
// cellar before the result is returned — a caller that sees a scan result
// can rely on the history already reflecting it. Narration is an
// enhancement on top: at most one narration is in flight at a time.
package sommelier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bankowy11-lgtm/vinoScans/internal/capture"
	"github.com/bankowy11-lgtm/vinoScans/internal/cellar"
	"github.com/bankowy11-lgtm/vinoScans/internal/narrate"
	"github.com/bankowy11-lgtm/vinoScans/internal/vision"
	"github.com/bankowy11-lgtm/vinoScans/internal/wine"
)

// speakingCap bounds how long the narration guard may stay held. Even if
// a synthesis call never returns a completion signal, the guard self-clears
// after this much time.
const speakingCap = 5 * time.Second

// ErrNarrationBusy is returned while a narration is already in flight.
// The caller should treat it as a no-op, not queue a retry.
var ErrNarrationBusy = errors.New("narration already in progress")

// ScanRequest is an incoming identification request from any transport.
type ScanRequest struct {
	// Image is the label image as base64 JPEG. A data-URI prefix is
	// tolerated and stripped.
	Image string `json:"image"`

	// Source identifies the sender (e.g., "phone-elena").
	Source string `json:"source,omitempty"`
}

// Sommelier is the central pipeline engine.
type Sommelier struct {
	identifier  vision.Identifier
	history     *cellar.Cellar
	synthesizer narrate.Synthesizer // nil if narration is disabled

	narrating sync.Mutex
	busy      bool
	busyUntil time.Time
}

// New creates a Sommelier. synthesizer may be nil when narration is
// disabled in config.
func New(identifier vision.Identifier, history *cellar.Cellar, synthesizer narrate.Synthesizer) *Sommelier {
	return &Sommelier{
		identifier:  identifier,
		history:     history,
		synthesizer: synthesizer,
	}
}

// Scan processes a single label image through the full pipeline. Pipeline
// failures are reported in the result envelope, not as an error — the
// transport returns them to the user as a dismissible message.
func (s *Sommelier) Scan(ctx context.Context, req *ScanRequest) (*wine.ScanResult, error) {
	start := time.Now()
	logger := slog.With("source", req.Source)

	payload, err := capture.Normalize(req.Image)
	if err != nil {
		logger.Debug("scan rejected", "error", err)
		return &wine.ScanResult{Error: fmt.Sprintf("invalid image payload: %v", err)}, nil
	}

	record, err := s.identifier.Identify(ctx, payload)
	if err != nil {
		// Nothing is cached on failure; the user retries with a new shot.
		logger.Warn("identification failed", "error", err)
		return &wine.ScanResult{Error: userMessage(err)}, nil
	}

	if err := s.history.Record(ctx, *record); err != nil {
		// The identification itself succeeded; degrade to an unpersisted
		// result rather than discarding it.
		logger.Error("recording history failed", "error", err, "wine", record.Name)
	}

	logger.Info("scan complete",
		"wine", record.Name, "dryness", record.Dryness, "duration", time.Since(start))
	return &wine.ScanResult{Wine: record}, nil
}

// History returns the most-recent-first scan history snapshot.
func (s *Sommelier) History() []wine.Record {
	return s.history.List()
}

// ClearHistory empties the scan history.
func (s *Sommelier) ClearHistory(ctx context.Context) error {
	return s.history.Clear(ctx)
}

// Narrate synthesizes a sommelier reading of the given tasting notes.
// Empty text is rejected before any service call. While one narration is
// in flight, further calls return ErrNarrationBusy.
func (s *Sommelier) Narrate(ctx context.Context, text string) (*narrate.Clip, error) {
	if s.synthesizer == nil {
		return nil, fmt.Errorf("narration is disabled")
	}
	if strings.TrimSpace(text) == "" {
		return nil, narrate.ErrEmptyText
	}

	if !s.beginNarration() {
		return nil, ErrNarrationBusy
	}
	defer s.endNarration()

	// The cap bounds the busy guard, not the synthesis call itself; the
	// service call runs to completion even past it.
	clip, err := s.synthesizer.Synthesize(ctx, text, narrate.SynthesizeOpts{})
	if err != nil {
		slog.Warn("narration failed", "error", err)
		return nil, err
	}

	slog.Info("narration complete", "duration", clip.Duration(), "pcm_bytes", len(clip.PCM))
	return clip, nil
}

// beginNarration takes the single-flight guard. A stale guard whose cap
// has elapsed is reclaimed, so a synthesis call that never completed
// cannot wedge narration forever.
func (s *Sommelier) beginNarration() bool {
	s.narrating.Lock()
	defer s.narrating.Unlock()

	now := time.Now()
	if s.busy && now.Before(s.busyUntil) {
		return false
	}
	s.busy = true
	s.busyUntil = now.Add(speakingCap)
	return true
}

func (s *Sommelier) endNarration() {
	s.narrating.Lock()
	defer s.narrating.Unlock()
	s.busy = false
}

// userMessage maps an identification error to the message shown to the
// user. Schema and parse violations all collapse to the retry prompt.
func userMessage(err error) string {
	if errors.Is(err, vision.ErrUnreadable) {
		return vision.ErrUnreadable.Error()
	}
	return "identification service unavailable, try again shortly"
}
