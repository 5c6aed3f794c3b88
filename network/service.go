package network

import (
	"context"
	"fmt"

	"github.com/mezonai/starledger/block"
	"github.com/mezonai/starledger/types"
	"google.golang.org/grpc"
)

const serviceName = "starledger.v1.LedgerService"

// LedgerServiceServer is the server-side interface for the ledger gRPC service.
type LedgerServiceServer interface {
	GetChainHeight(context.Context, *Empty) (*types.HeightResponse, error)
	GetBlockByHeight(context.Context, *types.GetBlockByHeightRequest) (*block.Block, error)
	GetBlockByHash(context.Context, *types.GetBlockByHashRequest) (*block.Block, error)
	RequestValidation(context.Context, *types.RequestValidationRequest) (*types.RequestValidationResponse, error)
	SubmitStar(context.Context, *types.SubmitStarRequest) (*block.Block, error)
	GetStarsByAddress(context.Context, *types.GetStarsByAddressRequest) (*types.GetStarsByAddressResponse, error)
	ValidateChain(context.Context, *Empty) (*types.ValidationResponse, error)
	Health(context.Context, *Empty) (*types.HealthCheckResponse, error)
	SubscribeLedgerEvents(*types.SubscribeLedgerEventsRequest, grpc.ServerStreamingServer[types.LedgerEventMessage]) error
}

// RegisterLedgerServiceServer registers the LedgerServiceServer on a gRPC server.
func RegisterLedgerServiceServer(s *grpc.Server, srv LedgerServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

// unaryHandler adapts a typed method to grpc.MethodDesc, running interceptors
// when the server has any.
func unaryHandler[Req any, Resp any](method string, call func(LedgerServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := new(Req)
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LedgerServiceServer), ctx, req)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		handler := func(ctx context.Context, r any) (any, error) {
			return call(srv.(LedgerServiceServer), ctx, r.(*Req))
		}
		return interceptor(ctx, req, info, handler)
	}
}

func subscribeLedgerEventsHandler(srv any, stream grpc.ServerStream) error {
	in := new(types.SubscribeLedgerEventsRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(LedgerServiceServer).SubscribeLedgerEvents(in, &grpc.GenericServerStream[types.SubscribeLedgerEventsRequest, types.LedgerEventMessage]{ServerStream: stream})
}

// fullMethod builds the full gRPC method path.
func fullMethod(method string) string {
	return fmt.Sprintf("/%s/%s", serviceName, method)
}

// serviceDesc is the manual gRPC service descriptor for the ledger.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetChainHeight", Handler: unaryHandler("GetChainHeight", LedgerServiceServer.GetChainHeight)},
		{MethodName: "GetBlockByHeight", Handler: unaryHandler("GetBlockByHeight", LedgerServiceServer.GetBlockByHeight)},
		{MethodName: "GetBlockByHash", Handler: unaryHandler("GetBlockByHash", LedgerServiceServer.GetBlockByHash)},
		{MethodName: "RequestValidation", Handler: unaryHandler("RequestValidation", LedgerServiceServer.RequestValidation)},
		{MethodName: "SubmitStar", Handler: unaryHandler("SubmitStar", LedgerServiceServer.SubmitStar)},
		{MethodName: "GetStarsByAddress", Handler: unaryHandler("GetStarsByAddress", LedgerServiceServer.GetStarsByAddress)},
		{MethodName: "ValidateChain", Handler: unaryHandler("ValidateChain", LedgerServiceServer.ValidateChain)},
		{MethodName: "Health", Handler: unaryHandler("Health", LedgerServiceServer.Health)},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "SubscribeLedgerEvents", Handler: subscribeLedgerEventsHandler, ServerStreams: true},
	},
	Metadata: "starledger/v1/ledger.go",
}
