package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mezonai/starledger/block"
	"github.com/mezonai/starledger/errors"
	"github.com/mezonai/starledger/jsonx"
	"github.com/mezonai/starledger/ledger"
	"github.com/mezonai/starledger/service"
	"github.com/mezonai/starledger/sigverify"
	"github.com/mezonai/starledger/types"
	"github.com/mezonai/starledger/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const now = 1629664849

func newTestServer(t *testing.T, metrics bool) *httptest.Server {
	t.Helper()
	sv := sigverify.VerifierFunc(func(message, address, signature string) bool {
		return signature == "valid"
	})
	ld, err := ledger.NewLedger(nil, sv, ledger.WithClock(utils.FixedClock(now)))
	require.NoError(t, err)
	stars := service.NewStarService(ld, nil, nil)
	api := NewAPIServer(stars, service.NewHealthService(ld, stars, "api-test"), "127.0.0.1:0", metrics)

	srv := httptest.NewServer(api.GetRouter())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body interface{}, out interface{}) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := jsonx.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, jsonx.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestStarRegistrationFlow(t *testing.T) {
	srv := newTestServer(t, false)

	var challenge types.RequestValidationResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/requestValidation", types.RequestValidationRequest{Address: "addr"}, &challenge)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, fmt.Sprintf("addr:%d:starRegistry", now), challenge.Message)

	var sealed block.Block
	status = doJSON(t, http.MethodPost, srv.URL+"/submitstar", types.SubmitStarRequest{
		Address:   "addr",
		Message:   challenge.Message,
		Signature: "valid",
		Star:      block.Star{Dec: "68° 52' 56.9", Ra: "16h 29m 1.0s", Story: "Testing the story"},
	}, &sealed)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1), sealed.Height)

	var byHeight block.Block
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/block/height/1", nil, &byHeight))
	assert.Equal(t, sealed, byHeight)

	var byHash block.Block
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/block/hash/"+sealed.Hash, nil, &byHash))
	assert.Equal(t, sealed, byHash)

	var owned types.GetStarsByAddressResponse
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/blocks/addr", nil, &owned))
	require.Len(t, owned.Stars, 1)
	assert.Equal(t, "Testing the story", owned.Stars[0].Star.Story)

	var height types.HeightResponse
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/height", nil, &height))
	assert.Equal(t, int64(1), height.Height)
	assert.Equal(t, sealed.Hash, height.Hash)

	var report types.ValidationResponse
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/validateChain", nil, &report))
	assert.True(t, report.Valid)
	assert.Equal(t, 2, report.Checked)
}

func TestErrorResponses(t *testing.T) {
	srv := newTestServer(t, false)

	cases := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
		code   errors.ServiceErrorCode
	}{
		{"unknown height", http.MethodGet, "/block/height/99", nil, http.StatusNotFound, errors.ErrCodeBlockNotFound},
		{"bad height", http.MethodGet, "/block/height/abc", nil, http.StatusBadRequest, errors.ErrCodeInvalidRequest},
		{"unknown hash", http.MethodGet, "/block/hash/abcd", nil, http.StatusNotFound, errors.ErrCodeBlockNotFound},
		{"expired", http.MethodPost, "/submitstar", types.SubmitStarRequest{
			Address: "addr", Message: fmt.Sprintf("addr:%d:starRegistry", now-1000), Signature: "valid", Star: block.Star{Story: "s"},
		}, http.StatusBadRequest, errors.ErrCodeExpiredChallenge},
		{"bad signature", http.MethodPost, "/submitstar", types.SubmitStarRequest{
			Address: "addr", Message: fmt.Sprintf("addr:%d:starRegistry", now), Signature: "forged", Star: block.Star{Story: "s"},
		}, http.StatusUnauthorized, errors.ErrCodeInvalidSignature},
		{"malformed", http.MethodPost, "/submitstar", types.SubmitStarRequest{
			Address: "addr", Message: "addr-no-timestamp", Signature: "valid", Star: block.Star{Story: "s"},
		}, http.StatusBadRequest, errors.ErrCodeMalformedChallenge},
		{"missing address", http.MethodPost, "/requestValidation", types.RequestValidationRequest{}, http.StatusBadRequest, errors.ErrCodeInvalidRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var se errors.ServiceError
			status := doJSON(t, tc.method, srv.URL+tc.path, tc.body, &se)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, se.Code)
		})
	}
}

func TestInvalidJSONBody(t *testing.T) {
	srv := newTestServer(t, false)

	resp, err := http.Post(srv.URL+"/submitstar", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, false)

	resp, err := http.Get(srv.URL + "/submitstar")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, true)

	var health types.HealthCheckResponse
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/health", nil, &health))
	assert.Equal(t, types.HealthServing, health.Status)
	assert.Equal(t, "api-test", health.NodeName)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
