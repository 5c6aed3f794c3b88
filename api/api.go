package api

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/mezonai/starledger/errors"
	"github.com/mezonai/starledger/interfaces"
	"github.com/mezonai/starledger/jsonx"
	"github.com/mezonai/starledger/logx"
	"github.com/mezonai/starledger/monitoring"
	"github.com/mezonai/starledger/security/validation"
	"github.com/mezonai/starledger/types"
)

// APIServer serves the star registry over plain HTTP/JSON.
type APIServer struct {
	stars      interfaces.StarService
	health     interfaces.HealthService
	router     *mux.Router
	listenAddr string
	server     *http.Server
}

func NewAPIServer(stars interfaces.StarService, health interfaces.HealthService, addr string, metricsEnabled bool) *APIServer {
	api := &APIServer{
		stars:      stars,
		health:     health,
		router:     mux.NewRouter(),
		listenAddr: addr,
	}
	api.setupRoutes()
	if metricsEnabled {
		monitoring.RegisterMetrics(api.router)
	}
	api.server = &http.Server{
		Handler:           api.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return api
}

// setupRoutes configures API routes
func (api *APIServer) setupRoutes() {
	// Block endpoints
	api.router.HandleFunc("/block/height/{height}", api.getBlockByHeight).Methods(http.MethodGet)
	api.router.HandleFunc("/block/hash/{hash}", api.getBlockByHash).Methods(http.MethodGet)
	api.router.HandleFunc("/height", api.getHeight).Methods(http.MethodGet)

	// Ownership endpoints
	api.router.HandleFunc("/requestValidation", api.requestValidation).Methods(http.MethodPost)
	api.router.HandleFunc("/submitstar", api.submitStar).Methods(http.MethodPost)
	api.router.HandleFunc("/blocks/{address}", api.getStarsByAddress).Methods(http.MethodGet)

	// Audit endpoints
	api.router.HandleFunc("/validateChain", api.validateChain).Methods(http.MethodGet)
	api.router.HandleFunc("/health", api.getHealth).Methods(http.MethodGet)
}

// GetRouter returns the configured router
func (api *APIServer) GetRouter() *mux.Router {
	return api.router
}

// Start listens on the configured address and serves until Shutdown.
func (api *APIServer) Start() error {
	ln, err := net.Listen("tcp", api.listenAddr)
	if err != nil {
		return fmt.Errorf("api listen on %s: %w", api.listenAddr, err)
	}
	return api.Serve(ln)
}

func (api *APIServer) Serve(ln net.Listener) error {
	logx.Info("API", "REST API listening on", ln.Addr().String())
	if err := api.server.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (api *APIServer) Shutdown(ctx context.Context) error {
	return api.server.Shutdown(ctx)
}

func (api *APIServer) getBlockByHeight(w http.ResponseWriter, r *http.Request) {
	height, err := strconv.ParseInt(mux.Vars(r)["height"], 10, 64)
	if err != nil {
		api.writeError(w, errors.NewError(errors.ErrCodeInvalidRequest, "Block height must be an integer"))
		return
	}
	b, err := api.stars.GetBlockByHeight(r.Context(), &types.GetBlockByHeightRequest{Height: height})
	if err != nil {
		api.writeError(w, err)
		return
	}
	api.writeJSON(w, http.StatusOK, b)
}

func (api *APIServer) getBlockByHash(w http.ResponseWriter, r *http.Request) {
	b, err := api.stars.GetBlockByHash(r.Context(), &types.GetBlockByHashRequest{Hash: mux.Vars(r)["hash"]})
	if err != nil {
		api.writeError(w, err)
		return
	}
	api.writeJSON(w, http.StatusOK, b)
}

func (api *APIServer) getHeight(w http.ResponseWriter, r *http.Request) {
	resp, err := api.stars.GetChainHeight(r.Context())
	if err != nil {
		api.writeError(w, err)
		return
	}
	api.writeJSON(w, http.StatusOK, resp)
}

func (api *APIServer) requestValidation(w http.ResponseWriter, r *http.Request) {
	var req types.RequestValidationRequest
	if !api.readJSON(w, r, &req) {
		return
	}
	resp, err := api.stars.RequestValidation(r.Context(), &req)
	if err != nil {
		api.writeError(w, err)
		return
	}
	api.writeJSON(w, http.StatusOK, resp)
}

func (api *APIServer) submitStar(w http.ResponseWriter, r *http.Request) {
	var req types.SubmitStarRequest
	if !api.readJSON(w, r, &req) {
		return
	}
	req.ClientIP = clientIP(r)
	b, err := api.stars.SubmitStar(r.Context(), &req)
	if err != nil {
		api.writeError(w, err)
		return
	}
	api.writeJSON(w, http.StatusOK, b)
}

func (api *APIServer) getStarsByAddress(w http.ResponseWriter, r *http.Request) {
	resp, err := api.stars.GetStarsByAddress(r.Context(), &types.GetStarsByAddressRequest{Address: mux.Vars(r)["address"]})
	if err != nil {
		api.writeError(w, err)
		return
	}
	api.writeJSON(w, http.StatusOK, resp)
}

func (api *APIServer) validateChain(w http.ResponseWriter, r *http.Request) {
	resp, err := api.stars.ValidateChain(r.Context())
	if err != nil {
		api.writeError(w, err)
		return
	}
	api.writeJSON(w, http.StatusOK, resp)
}

func (api *APIServer) getHealth(w http.ResponseWriter, r *http.Request) {
	resp, err := api.health.Check(r.Context())
	if err != nil {
		api.writeError(w, err)
		return
	}
	status := http.StatusOK
	if resp.Status != types.HealthServing {
		status = http.StatusServiceUnavailable
	}
	api.writeJSON(w, status, resp)
}

func (api *APIServer) readJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, validation.DefaultRequestBodyLimit)
	defer body.Close()

	if err := jsonx.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			api.writeError(w, errors.NewError(errors.ErrCodeInvalidRequest, fmt.Sprintf(errors.ErrMsgRequestBodyTooLarge, validation.DefaultRequestBodyLimit)))
			return false
		}
		api.writeError(w, errors.NewError(errors.ErrCodeInvalidRequest, errors.ErrMsgInvalidRequest))
		return false
	}
	return true
}

func (api *APIServer) writeError(w http.ResponseWriter, err error) {
	se := errors.FromError(err)
	if se.Code == errors.ErrCodeInternal {
		logx.Error("API", "Request failed:", err)
	}
	api.writeJSON(w, se.Code.HTTPStatus(), se)
}

func (api *APIServer) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := jsonx.NewEncoder(w).Encode(data); err != nil {
		logx.Error("API", "Failed to encode JSON response:", err)
	}
}

func clientIP(r *http.Request) string {
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}
