package sommelier

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankowy11-lgtm/vinoScans/internal/cellar"
	"github.com/bankowy11-lgtm/vinoScans/internal/narrate"
	"github.com/bankowy11-lgtm/vinoScans/internal/vision"
	"github.com/bankowy11-lgtm/vinoScans/internal/wine"
)

// fakeIdentifier returns scripted records in order, or a scripted error.
type fakeIdentifier struct {
	mu      sync.Mutex
	queue   []*wine.Record
	err     error
	calls   int
	payload string
}

func (f *fakeIdentifier) Name() string { return "fake" }

func (f *fakeIdentifier) Identify(ctx context.Context, imagePayload string) (*wine.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.payload = imagePayload
	if f.err != nil {
		return nil, f.err
	}
	if len(f.queue) == 0 {
		return nil, errors.New("fakeIdentifier: queue exhausted")
	}
	r := f.queue[0]
	f.queue = f.queue[1:]
	return r, nil
}

func (f *fakeIdentifier) Close() error { return nil }

// fakeSynthesizer counts calls and optionally blocks until released.
type fakeSynthesizer struct {
	mu          sync.Mutex
	calls       int
	err         error
	release     chan struct{} // when non-nil, Synthesize blocks on it
	hadDeadline bool          // whether the last call's context carried one
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text string, opts narrate.SynthesizeOpts) (*narrate.Clip, error) {
	f.mu.Lock()
	f.calls++
	_, f.hadDeadline = ctx.Deadline()
	release := f.release
	err := f.err
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &narrate.Clip{PCM: []byte{0, 0}, SampleRate: 24000, Channels: 1}, nil
}

func (f *fakeSynthesizer) Close() error { return nil }

func (f *fakeSynthesizer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testRecord(name string, dryness wine.Dryness) *wine.Record {
	return &wine.Record{
		ID:             wine.NewID(),
		Name:           name,
		Region:         "Toscana",
		Dryness:        dryness,
		Description:    "tasting note",
		Pairings:       []string{"pasta"},
		GrapeType:      "Sangiovese",
		AlcoholContent: "13%",
		ServingTemp:    wine.DefaultServingTemp,
		CreatedAt:      time.Now(),
	}
}

func newSommelier(t *testing.T, ident vision.Identifier, synth narrate.Synthesizer) *Sommelier {
	t.Helper()
	history, err := cellar.Open(context.Background(), cellar.NewMemoryStore(), cellar.DefaultLimit)
	require.NoError(t, err)
	return New(ident, history, synth)
}

func payload() string {
	return base64.StdEncoding.EncodeToString([]byte("jpeg"))
}

func TestScanRecordsHistory(t *testing.T) {
	ctx := context.Background()
	ident := &fakeIdentifier{queue: []*wine.Record{testRecord("Barolo", wine.Dry)}}
	s := newSommelier(t, ident, nil)

	result, err := s.Scan(ctx, &ScanRequest{Image: payload()})
	require.NoError(t, err)
	require.NotNil(t, result.Wine)
	assert.Empty(t, result.Error)
	assert.Equal(t, "Barolo", result.Wine.Name)

	// The history already reflects the scan when the result is visible.
	history := s.History()
	require.Len(t, history, 1)
	assert.Equal(t, "Barolo", history[0].Name)
}

func TestScanStripsDataURIPrefix(t *testing.T) {
	ctx := context.Background()
	ident := &fakeIdentifier{queue: []*wine.Record{testRecord("Barolo", wine.Dry)}}
	s := newSommelier(t, ident, nil)

	_, err := s.Scan(ctx, &ScanRequest{Image: "data:image/jpeg;base64," + payload()})
	require.NoError(t, err)
	assert.Equal(t, payload(), ident.payload, "identifier receives the bare payload")
}

func TestScanRescanDedupes(t *testing.T) {
	// Chianti Classico (SemiDry), Barolo (Dry), Chianti Classico (Dry):
	// two entries, reordered, latest dryness wins.
	ctx := context.Background()
	ident := &fakeIdentifier{queue: []*wine.Record{
		testRecord("Chianti Classico", wine.SemiDry),
		testRecord("Barolo", wine.Dry),
		testRecord("Chianti Classico", wine.Dry),
	}}
	s := newSommelier(t, ident, nil)

	for i := 0; i < 3; i++ {
		_, err := s.Scan(ctx, &ScanRequest{Image: payload()})
		require.NoError(t, err)
	}

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, "Chianti Classico", history[0].Name)
	assert.Equal(t, wine.Dry, history[0].Dryness)
	assert.Equal(t, "Barolo", history[1].Name)
}

func TestScanHistoryBounded(t *testing.T) {
	ctx := context.Background()
	var queue []*wine.Record
	for i := 1; i <= 6; i++ {
		queue = append(queue, testRecord(fmt.Sprintf("Wine %d", i), wine.Dry))
	}
	s := newSommelier(t, &fakeIdentifier{queue: queue}, nil)

	for i := 0; i < 6; i++ {
		_, err := s.Scan(ctx, &ScanRequest{Image: payload()})
		require.NoError(t, err)
	}

	history := s.History()
	require.Len(t, history, cellar.DefaultLimit)
	assert.Equal(t, "Wine 6", history[0].Name)
}

func TestScanFailureDoesNotTouchHistory(t *testing.T) {
	ctx := context.Background()
	ident := &fakeIdentifier{err: fmt.Errorf("blurred label: %w", vision.ErrUnreadable)}
	s := newSommelier(t, ident, nil)

	result, err := s.Scan(ctx, &ScanRequest{Image: payload()})
	require.NoError(t, err, "pipeline failures live in the envelope")
	assert.Nil(t, result.Wine)
	assert.Equal(t, vision.ErrUnreadable.Error(), result.Error)
	assert.Empty(t, s.History())
}

func TestScanInvalidPayloadSkipsIdentifier(t *testing.T) {
	ctx := context.Background()
	ident := &fakeIdentifier{}
	s := newSommelier(t, ident, nil)

	result, err := s.Scan(ctx, &ScanRequest{Image: "!!! not base64 !!!"})
	require.NoError(t, err)
	assert.Nil(t, result.Wine)
	assert.NotEmpty(t, result.Error)
	assert.Zero(t, ident.calls, "no service call for an unusable payload")
}

func TestClearHistory(t *testing.T) {
	ctx := context.Background()
	ident := &fakeIdentifier{queue: []*wine.Record{testRecord("Barolo", wine.Dry)}}
	s := newSommelier(t, ident, nil)

	_, err := s.Scan(ctx, &ScanRequest{Image: payload()})
	require.NoError(t, err)
	require.NoError(t, s.ClearHistory(ctx))
	assert.Empty(t, s.History())
}

func TestNarrateRejectsEmptyTextBeforeServiceCall(t *testing.T) {
	synth := &fakeSynthesizer{}
	s := newSommelier(t, &fakeIdentifier{}, synth)

	_, err := s.Narrate(context.Background(), "   ")
	assert.ErrorIs(t, err, narrate.ErrEmptyText)
	assert.Zero(t, synth.callCount())
}

func TestNarrateDisabled(t *testing.T) {
	s := newSommelier(t, &fakeIdentifier{}, nil)
	_, err := s.Narrate(context.Background(), "notes")
	assert.Error(t, err)
}

func TestNarrateSingleFlight(t *testing.T) {
	release := make(chan struct{})
	synth := &fakeSynthesizer{release: release}
	s := newSommelier(t, &fakeIdentifier{}, synth)

	done := make(chan error, 1)
	go func() {
		_, err := s.Narrate(context.Background(), "first")
		done <- err
	}()

	// Wait for the first narration to reach the synthesizer.
	require.Eventually(t, func() bool { return synth.callCount() == 1 },
		time.Second, 5*time.Millisecond)

	// A second narration while the first is in flight is a no-op.
	_, err := s.Narrate(context.Background(), "second")
	assert.ErrorIs(t, err, ErrNarrationBusy)
	assert.Equal(t, 1, synth.callCount())

	close(release)
	require.NoError(t, <-done)

	// Once the first completes, narration is available again.
	_, err = s.Narrate(context.Background(), "third")
	require.NoError(t, err)
	assert.Equal(t, 2, synth.callCount())
}

func TestNarrateLeavesServiceCallUnbounded(t *testing.T) {
	// The speaking cap limits the busy guard only. A tasting paragraph can
	// take longer than the cap to synthesize, so no deadline may reach the
	// service call.
	synth := &fakeSynthesizer{}
	s := newSommelier(t, &fakeIdentifier{}, synth)

	_, err := s.Narrate(context.Background(), "notes")
	require.NoError(t, err)

	synth.mu.Lock()
	defer synth.mu.Unlock()
	assert.False(t, synth.hadDeadline, "synthesis context must not carry a deadline")
}

func TestNarrationGuardSelfClears(t *testing.T) {
	s := newSommelier(t, &fakeIdentifier{}, &fakeSynthesizer{})

	// Simulate a narration whose completion was never observed: the guard
	// is held but its cap has elapsed.
	s.narrating.Lock()
	s.busy = true
	s.busyUntil = time.Now().Add(-time.Millisecond)
	s.narrating.Unlock()

	_, err := s.Narrate(context.Background(), "notes")
	require.NoError(t, err, "a stale guard must not wedge narration")
}

func TestNarrateSynthesisFailure(t *testing.T) {
	synth := &fakeSynthesizer{err: narrate.ErrNoAudio}
	s := newSommelier(t, &fakeIdentifier{}, synth)

	_, err := s.Narrate(context.Background(), "notes")
	assert.ErrorIs(t, err, narrate.ErrNoAudio)

	// A failed narration releases the guard.
	synth.mu.Lock()
	synth.err = nil
	synth.mu.Unlock()
	_, err = s.Narrate(context.Background(), "notes")
	require.NoError(t, err)
}
