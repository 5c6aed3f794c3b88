package network

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/mezonai/starledger/block"
	"github.com/mezonai/starledger/events"
	"github.com/mezonai/starledger/interfaces"
	"github.com/mezonai/starledger/logx"
	"github.com/mezonai/starledger/types"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// stopTimeout bounds GracefulStop, which otherwise waits for every open event stream.
const stopTimeout = 5 * time.Second

// GRPCServer adapts the star and health services to LedgerServiceServer.
type GRPCServer struct {
	stars  interfaces.StarService
	health interfaces.HealthService
	bus    *events.EventBus
	server *grpc.Server
}

var _ LedgerServiceServer = (*GRPCServer)(nil)

// NewGRPCServer serves stars and health. bus feeds SubscribeLedgerEvents and may be
// nil, in which case subscriptions fail with Unavailable.
func NewGRPCServer(stars interfaces.StarService, health interfaces.HealthService, bus *events.EventBus, opts ...grpc.ServerOption) *GRPCServer {
	s := &GRPCServer{stars: stars, health: health, bus: bus}
	s.server = grpc.NewServer(opts...)
	s.Register(s.server)
	return s
}

// Register attaches the ledger service to gs.
func (s *GRPCServer) Register(gs *grpc.Server) {
	RegisterLedgerServiceServer(gs, s)
}

// Serve blocks until the server stops.
func (s *GRPCServer) Serve(lis net.Listener) error {
	logx.Info("GRPC", "Listening on ", lis.Addr().String())
	if err := s.server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// Start listens on addr and serves.
func (s *GRPCServer) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("grpc listen on %s: %w", addr, err)
	}
	return s.Serve(lis)
}

// Stop drains in-flight calls and stops the server, cutting open streams after stopTimeout.
func (s *GRPCServer) Stop() {
	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(stopTimeout):
		logx.Warn("GRPC", "Graceful stop timed out, closing open streams")
		s.server.Stop()
		<-done
	}
}

func (s *GRPCServer) GetChainHeight(ctx context.Context, _ *Empty) (*types.HeightResponse, error) {
	resp, err := s.stars.GetChainHeight(ctx)
	return resp, toStatus(err)
}

func (s *GRPCServer) GetBlockByHeight(ctx context.Context, in *types.GetBlockByHeightRequest) (*block.Block, error) {
	resp, err := s.stars.GetBlockByHeight(ctx, in)
	return resp, toStatus(err)
}

func (s *GRPCServer) GetBlockByHash(ctx context.Context, in *types.GetBlockByHashRequest) (*block.Block, error) {
	resp, err := s.stars.GetBlockByHash(ctx, in)
	return resp, toStatus(err)
}

func (s *GRPCServer) RequestValidation(ctx context.Context, in *types.RequestValidationRequest) (*types.RequestValidationResponse, error) {
	resp, err := s.stars.RequestValidation(ctx, in)
	return resp, toStatus(err)
}

func (s *GRPCServer) SubmitStar(ctx context.Context, in *types.SubmitStarRequest) (*block.Block, error) {
	in.ClientIP = peerIP(ctx)
	resp, err := s.stars.SubmitStar(ctx, in)
	return resp, toStatus(err)
}

func (s *GRPCServer) GetStarsByAddress(ctx context.Context, in *types.GetStarsByAddressRequest) (*types.GetStarsByAddressResponse, error) {
	resp, err := s.stars.GetStarsByAddress(ctx, in)
	return resp, toStatus(err)
}

func (s *GRPCServer) ValidateChain(ctx context.Context, _ *Empty) (*types.ValidationResponse, error) {
	resp, err := s.stars.ValidateChain(ctx)
	return resp, toStatus(err)
}

func (s *GRPCServer) Health(ctx context.Context, _ *Empty) (*types.HealthCheckResponse, error) {
	resp, err := s.health.Check(ctx)
	return resp, toStatus(err)
}

// SubscribeLedgerEvents streams bus events matching in until the client goes away.
// Events published while the stream's buffer is full are dropped for this stream.
func (s *GRPCServer) SubscribeLedgerEvents(in *types.SubscribeLedgerEventsRequest, stream grpc.ServerStreamingServer[types.LedgerEventMessage]) error {
	if s.bus == nil {
		return status.Error(codes.Unavailable, "ledger events are not enabled on this node")
	}
	subscriberID, eventChan := s.bus.Subscribe()
	defer s.bus.Unsubscribe(subscriberID)

	for {
		select {
		case event, ok := <-eventChan:
			if !ok {
				return nil
			}
			msg := convertEvent(event)
			if msg == nil || !matchesSubscription(in, msg) {
				continue
			}
			if err := stream.Send(msg); err != nil {
				return err
			}
		case <-stream.Context().Done():
			return stream.Context().Err()
		}
	}
}

func peerIP(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(p.Addr.String())
	if err != nil {
		return p.Addr.String()
	}
	return host
}
