// Package grpc implements the gRPC transport for vinoscans.
//
// This transport exposes a gRPC server for scanner clients that prefer
// strongly-typed streaming over REST, such as kiosk hardware. It is
// disabled by default.
//
// The service is registered by hand with a JSON codec rather than from a
// compiled proto schema; clients call it with content-subtype "json".
package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/bankowy11-lgtm/vinoScans/internal/narrate"
	"github.com/bankowy11-lgtm/vinoScans/internal/sommelier"
	"github.com/bankowy11-lgtm/vinoScans/internal/transport"
	"github.com/bankowy11-lgtm/vinoScans/internal/wine"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Transport implements transport.Transport over gRPC.
type Transport struct {
	port   int
	server *grpc.Server
}

// New creates a new gRPC transport on the given port.
func New(port int) *Transport {
	return &Transport{port: port}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "grpc" }

// Listen starts the gRPC server and routes incoming requests to the service.
func (t *Transport) Listen(ctx context.Context, svc transport.Service) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	t.server = grpc.NewServer(grpc.ForceServerCodec(jsonCodec{}))
	t.server.RegisterService(&serviceDesc, svc)

	slog.Info("grpc transport listening", "port", t.port)

	go func() {
		<-ctx.Done()
		slog.Info("grpc transport shutting down")
		t.server.GracefulStop()
	}()

	return t.server.Serve(lis)
}

// Close gracefully stops the gRPC server.
func (t *Transport) Close() error {
	if t.server != nil {
		t.server.GracefulStop()
	}
	return nil
}

// jsonCodec frames messages as JSON instead of protobuf.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return "json" }

// --- Wire types ---

type emptyMessage struct{}

type historyResponse struct {
	Wines []wine.Record `json:"wines"`
}

type narrateRequest struct {
	Text string `json:"text"`
}

type narrateResponse struct {
	// Audio is the narration as a WAV file (PCM16 mono, 24 kHz).
	Audio      []byte `json:"audio"`
	SampleRate int    `json:"sampleRate"`
	Channels   int    `json:"channels"`
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: "vinoscans.v1.SommelierService",
	HandlerType: (*transport.Service)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Scan", Handler: scanHandler},
		{MethodName: "History", Handler: historyHandler},
		{MethodName: "ClearHistory", Handler: clearHistoryHandler},
		{MethodName: "Narrate", Handler: narrateHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vinoscans/v1/sommelier",
}

func scanHandler(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(sommelier.ScanRequest)
	if err := dec(req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	result, err := srv.(transport.Service).Scan(ctx, req)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return result, nil
}

func historyHandler(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	if err := dec(new(emptyMessage)); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return &historyResponse{Wines: srv.(transport.Service).History()}, nil
}

func clearHistoryHandler(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	if err := dec(new(emptyMessage)); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := srv.(transport.Service).ClearHistory(ctx); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &emptyMessage{}, nil
}

func narrateHandler(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(narrateRequest)
	if err := dec(req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	clip, err := srv.(transport.Service).Narrate(ctx, req.Text)
	switch {
	case errors.Is(err, narrate.ErrEmptyText):
		return nil, status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, sommelier.ErrNarrationBusy):
		return nil, status.Error(codes.Aborted, err.Error())
	case err != nil:
		return nil, status.Error(codes.Unavailable, err.Error())
	}

	return &narrateResponse{
		Audio:      clip.WAV(),
		SampleRate: clip.SampleRate,
		Channels:   clip.Channels,
	}, nil
}
