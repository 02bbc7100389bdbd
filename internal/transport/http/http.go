// Package http implements the HTTP transport for vinoscans.
//
// This transport exposes the REST API that scanner clients (web, phone)
// talk to: label scanning, scan history, and narration. It is the default
// transport.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bankowy11-lgtm/vinoScans/internal/capture"
	"github.com/bankowy11-lgtm/vinoScans/internal/narrate"
	"github.com/bankowy11-lgtm/vinoScans/internal/sommelier"
	"github.com/bankowy11-lgtm/vinoScans/internal/transport"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Transport implements transport.Transport over HTTP.
type Transport struct {
	port   int
	server *http.Server
}

// New creates a new HTTP transport on the given port.
func New(port int) *Transport {
	return &Transport{port: port}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Listen starts the HTTP server and routes incoming requests to the service.
func (t *Transport) Listen(ctx context.Context, svc transport.Service) error {
	mux := http.NewServeMux()

	// POST /scan — accepts a label image, returns the identified wine.
	mux.HandleFunc("POST /scan", func(w http.ResponseWriter, r *http.Request) {
		t.handleScan(w, r, svc)
	})

	// GET /history — the bounded recency list of past scans.
	mux.HandleFunc("GET /history", func(w http.ResponseWriter, r *http.Request) {
		t.handleHistory(w, r, svc)
	})

	// DELETE /history — wholesale clear.
	mux.HandleFunc("DELETE /history", func(w http.ResponseWriter, r *http.Request) {
		t.handleClearHistory(w, r, svc)
	})

	// POST /narrate — sommelier reading of tasting notes, returned as WAV.
	mux.HandleFunc("POST /narrate", func(w http.ResponseWriter, r *http.Request) {
		t.handleNarrate(w, r, svc)
	})

	// Swagger UI — serves the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// handleScan processes a POST /scan request.
//
// @Summary     Identify a wine label
// @Description Accepts a JSON scan request (base64 JPEG, data-URI prefix tolerated) or raw image/jpeg bytes.
// @Description The image is sent to the vision service; a successful identification is recorded in the
// @Description scan history before the response is written. Identification failures are reported in the
// @Description result envelope, never cached.
// @Tags        scan
// @Accept      json
// @Accept      image/jpeg
// @Produce     json
// @Param       request  body      sommelier.ScanRequest  true  "Scan request (JSON). For raw uploads, POST the image bytes directly with Content-Type image/jpeg."
// @Param       X-Vinoscans-Source  header  string  false  "Sender identifier (used with raw uploads)"
// @Success     200  {object}  wine.ScanResult  "Identification result"
// @Failure     400  {string}  string  "Invalid request body"
// @Failure     500  {string}  string  "Internal processing error"
// @Router      /scan [post]
func (t *Transport) handleScan(w http.ResponseWriter, r *http.Request, svc transport.Service) {
	var req sommelier.ScanRequest

	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "application/json"):
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
			return
		}
	default:
		// Treat the body as a raw image upload.
		payload, err := capture.FromReader(http.MaxBytesReader(w, r.Body, capture.MaxUploadBytes))
		if err != nil {
			http.Error(w, "reading image: "+err.Error(), http.StatusBadRequest)
			return
		}
		req.Image = payload
		req.Source = r.Header.Get("X-Vinoscans-Source")
	}

	result, err := svc.Scan(r.Context(), &req)
	if err != nil {
		slog.Error("scan failed", "error", err)
		http.Error(w, "scan error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

// handleHistory processes a GET /history request.
//
// @Summary     List the scan history
// @Description Returns the bounded, deduplicated recency list of past identifications, most recent first.
// @Tags        history
// @Produce     json
// @Success     200  {array}  wine.Record
// @Router      /history [get]
func (t *Transport) handleHistory(w http.ResponseWriter, _ *http.Request, svc transport.Service) {
	records := svc.History()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(records)
}

// handleClearHistory processes a DELETE /history request.
//
// @Summary     Clear the scan history
// @Description Empties the history and persists the empty state.
// @Tags        history
// @Success     204  {string}  string  "History cleared"
// @Failure     500  {string}  string  "Persistence error"
// @Router      /history [delete]
func (t *Transport) handleClearHistory(w http.ResponseWriter, r *http.Request, svc transport.Service) {
	if err := svc.ClearHistory(r.Context()); err != nil {
		slog.Error("clearing history failed", "error", err)
		http.Error(w, "clear error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// narrateRequest is the body of a POST /narrate request.
type narrateRequest struct {
	// Text is the tasting note to read aloud.
	Text string `json:"text"`
}

// handleNarrate processes a POST /narrate request.
//
// @Summary     Narrate tasting notes
// @Description Synthesizes a sommelier reading of the given text and returns it as a WAV file.
// @Description Only one narration may be in flight at a time; concurrent requests are rejected.
// @Tags        narrate
// @Accept      json
// @Produce     audio/wav
// @Param       request  body  narrateRequest  true  "Narration request"
// @Success     200  {file}    file    "WAV audio (PCM16 mono, 24 kHz)"
// @Failure     400  {string}  string  "Empty text"
// @Failure     409  {string}  string  "A narration is already in progress"
// @Failure     502  {string}  string  "Speech service failure"
// @Router      /narrate [post]
func (t *Transport) handleNarrate(w http.ResponseWriter, r *http.Request, svc transport.Service) {
	var req narrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	clip, err := svc.Narrate(r.Context(), req.Text)
	switch {
	case errors.Is(err, narrate.ErrEmptyText):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, sommelier.ErrNarrationBusy):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		http.Error(w, "narration error: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	_, _ = w.Write(clip.WAV())
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}
