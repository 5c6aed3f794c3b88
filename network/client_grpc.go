package network

import (
	"context"
	"fmt"

	"github.com/mezonai/starledger/block"
	"github.com/mezonai/starledger/types"
	"google.golang.org/grpc"
)

// Client calls a remote LedgerService. Failed calls return the server's
// *errors.ServiceError when one was sent.
type Client struct {
	cc *grpc.ClientConn
}

// Dial creates a client for addr. Callers supply transport credentials in opts.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append(opts, grpc.WithDefaultCallOptions(grpc.ForceCodec(JSONCodec{})))
	cc, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{cc: cc}, nil
}

func (c *Client) Close() error {
	return c.cc.Close()
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	return FromStatus(c.cc.Invoke(ctx, fullMethod(method), req, resp))
}

func (c *Client) GetChainHeight(ctx context.Context) (int64, error) {
	resp := new(types.HeightResponse)
	if err := c.invoke(ctx, "GetChainHeight", &Empty{}, resp); err != nil {
		return 0, err
	}
	return resp.Height, nil
}

func (c *Client) GetBlockByHeight(ctx context.Context, height int64) (*block.Block, error) {
	resp := new(block.Block)
	if err := c.invoke(ctx, "GetBlockByHeight", &types.GetBlockByHeightRequest{Height: height}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) GetBlockByHash(ctx context.Context, hash string) (*block.Block, error) {
	resp := new(block.Block)
	if err := c.invoke(ctx, "GetBlockByHash", &types.GetBlockByHashRequest{Hash: hash}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) RequestValidation(ctx context.Context, address string) (*types.RequestValidationResponse, error) {
	resp := new(types.RequestValidationResponse)
	if err := c.invoke(ctx, "RequestValidation", &types.RequestValidationRequest{Address: address}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) SubmitStar(ctx context.Context, req *types.SubmitStarRequest) (*block.Block, error) {
	resp := new(block.Block)
	if err := c.invoke(ctx, "SubmitStar", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) GetStarsByAddress(ctx context.Context, address string) ([]block.StarRecord, error) {
	resp := new(types.GetStarsByAddressResponse)
	if err := c.invoke(ctx, "GetStarsByAddress", &types.GetStarsByAddressRequest{Address: address}, resp); err != nil {
		return nil, err
	}
	return resp.Stars, nil
}

func (c *Client) ValidateChain(ctx context.Context) (*types.ValidationResponse, error) {
	resp := new(types.ValidationResponse)
	if err := c.invoke(ctx, "ValidateChain", &Empty{}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// SubscribeLedgerEvents opens a stream of ledger events filtered by in. The stream
// ends when ctx is cancelled.
func (c *Client) SubscribeLedgerEvents(ctx context.Context, in *types.SubscribeLedgerEventsRequest) (grpc.ServerStreamingClient[types.LedgerEventMessage], error) {
	cs, err := c.cc.NewStream(ctx, &serviceDesc.Streams[0], fullMethod("SubscribeLedgerEvents"))
	if err != nil {
		return nil, FromStatus(err)
	}
	stream := &grpc.GenericClientStream[types.SubscribeLedgerEventsRequest, types.LedgerEventMessage]{ClientStream: cs}
	if err := stream.ClientStream.SendMsg(in); err != nil {
		return nil, FromStatus(err)
	}
	if err := stream.ClientStream.CloseSend(); err != nil {
		return nil, FromStatus(err)
	}
	return stream, nil
}

func (c *Client) Health(ctx context.Context) (*types.HealthCheckResponse, error) {
	resp := new(types.HealthCheckResponse)
	if err := c.invoke(ctx, "Health", &Empty{}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}
