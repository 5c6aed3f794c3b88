package jsonrpc

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/mezonai/starledger/block"
	"github.com/mezonai/starledger/errors"
	"github.com/mezonai/starledger/interfaces"
	"github.com/mezonai/starledger/logx"
	"github.com/mezonai/starledger/types"
)

// Application error codes, outside the range reserved by JSON-RPC 2.0.
const (
	CodeAdmissionRejected jrpc2.Code = -32001
	CodeBlockNotFound     jrpc2.Code = -32004
	CodeRateLimited       jrpc2.Code = -32005
)

// toJRPC2Error carries the ServiceError as the error data so clients can switch on its code.
func toJRPC2Error(err error) error {
	if err == nil {
		return nil
	}
	se := errors.FromError(err)
	if se.Code == errors.ErrCodeInternal {
		logx.Error("JSONRPC", "Request failed:", err)
	}
	return jrpc2.Errorf(rpcCode(se.Code), "%s", se.Message).WithData(se)
}

func rpcCode(code errors.ServiceErrorCode) jrpc2.Code {
	switch code {
	case errors.ErrCodeInvalidRequest:
		return jrpc2.InvalidParams
	case errors.ErrCodeMalformedChallenge, errors.ErrCodeExpiredChallenge, errors.ErrCodeFutureChallenge, errors.ErrCodeInvalidSignature:
		return CodeAdmissionRejected
	case errors.ErrCodeBlockNotFound:
		return CodeBlockNotFound
	case errors.ErrCodeRateLimited:
		return CodeRateLimited
	default:
		return jrpc2.InternalError
	}
}

type Server struct {
	addr       string
	stars      interfaces.StarService
	health     interfaces.HealthService
	corsConfig CORSConfig
	bridge     jhttp.Bridge
	server     *http.Server
}

func NewServer(addr string, stars interfaces.StarService, health interfaces.HealthService) *Server {
	s := &Server{
		addr:   addr,
		stars:  stars,
		health: health,
	}
	s.bridge = jhttp.NewBridge(s.buildMethodMap(), &jhttp.BridgeOptions{Server: &jrpc2.ServerOptions{}})
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// SetCORSConfig allows configuring CORS settings
func (s *Server) SetCORSConfig(config CORSConfig) {
	s.corsConfig = config
}

// Handler returns the HTTP handler serving JSON-RPC requests on every path.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.setCORSHeaders(w, r)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		s.bridge.ServeHTTP(w, r)
	})
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("jsonrpc listen on %s: %w", s.addr, err)
	}
	logx.Info("JSONRPC", "JSON-RPC listening on", ln.Addr().String())
	if err := s.server.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	defer s.bridge.Close()
	return s.server.Shutdown(ctx)
}

// Build jrpc2 method map
func (s *Server) buildMethodMap() handler.Map {
	return handler.Map{
		MethodChainGetHeight: handler.New(func(ctx context.Context) (*types.HeightResponse, error) {
			res, err := s.stars.GetChainHeight(ctx)
			return res, toJRPC2Error(err)
		}),
		MethodChainValidate: handler.New(func(ctx context.Context) (*types.ValidationResponse, error) {
			res, err := s.stars.ValidateChain(ctx)
			return res, toJRPC2Error(err)
		}),
		MethodBlockGetByHeight: handler.New(func(ctx context.Context, p types.GetBlockByHeightRequest) (*block.Block, error) {
			res, err := s.stars.GetBlockByHeight(ctx, &p)
			return res, toJRPC2Error(err)
		}),
		MethodBlockGetByHash: handler.New(func(ctx context.Context, p types.GetBlockByHashRequest) (*block.Block, error) {
			res, err := s.stars.GetBlockByHash(ctx, &p)
			return res, toJRPC2Error(err)
		}),
		MethodStarRequestValidation: handler.New(func(ctx context.Context, p types.RequestValidationRequest) (*types.RequestValidationResponse, error) {
			res, err := s.stars.RequestValidation(ctx, &p)
			return res, toJRPC2Error(err)
		}),
		MethodStarSubmit: handler.New(func(ctx context.Context, p types.SubmitStarRequest) (*block.Block, error) {
			p.ClientIP = extractClientIPFromRequest(jhttp.HTTPRequest(ctx))
			res, err := s.stars.SubmitStar(ctx, &p)
			return res, toJRPC2Error(err)
		}),
		MethodStarGetByAddress: handler.New(func(ctx context.Context, p types.GetStarsByAddressRequest) (*types.GetStarsByAddressResponse, error) {
			res, err := s.stars.GetStarsByAddress(ctx, &p)
			return res, toJRPC2Error(err)
		}),
		MethodNodeHealth: handler.New(func(ctx context.Context) (*types.HealthCheckResponse, error) {
			res, err := s.health.Check(ctx)
			return res, toJRPC2Error(err)
		}),
	}
}
