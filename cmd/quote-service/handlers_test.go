package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"poolquote/pkg"
	"poolquote/pkg/logging"
	"poolquote/pkg/router"
	"poolquote/pkg/sol"
)

const (
	okPool      = "Bd3snQsjrRmrKfEkoQk6wcm5QkZ9Hy8UCQfecZYFxd6i"
	missingPool = "11111111111111111111111111111111"
	vendorPool  = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	brokenPool  = "SysvarRent111111111111111111111111111111111"
)

type stubQuoter struct{}

func (stubQuoter) Quote(ctx context.Context, conn pkg.Connection, req pkg.QuoteRequest) (*pkg.QuoteResponse, error) {
	switch req.PoolAddress.String() {
	case okPool:
		out := req.InputAmount.MulRaw(2)
		return &pkg.QuoteResponse{
			Protocol:              pkg.ProtocolNameRaydiumCpmm,
			OutputMint:            "out",
			EstimatedOutputAmount: out,
			MinOutputAmount:       pkg.ApplySlippage(out, req.SlippagePercent),
			PriceImpactPercent:    decimal.Zero,
			FeePaid:               math.ZeroInt(),
			Reserves:              pkg.NewReserves(1, 2),
		}, nil
	case missingPool:
		return nil, fmt.Errorf("%w: %s", pkg.ErrPoolNotFound, req.PoolAddress)
	case brokenPool:
		panic("integer overflow")
	default:
		return nil, &pkg.AdapterError{Protocol: pkg.ProtocolNameMeteoraDlmm, Err: errors.New("upstream 503")}
	}
}

func testServer() http.Handler {
	logger := logging.Discard()
	h := &Handlers{
		Quoter:    stubQuoter{},
		Batch:     router.NewBatchQuoter(stubQuoter{}, 2, logger),
		Conn:      sol.NewFixtureConnection(),
		Protocols: []pkg.ProtocolName{pkg.ProtocolNamePump},
		Timeout:   time.Second,
		Logger:    logger,
		Started:   time.Now(),
	}
	return newServer(h)
}

func do(t *testing.T, srv http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, testServer(), http.MethodGet, "/v1/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.OK)
	assert.Equal(t, []pkg.ProtocolName{pkg.ProtocolNamePump}, res.Protocols)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestQuoteEndpoint(t *testing.T) {
	srv := testServer()

	rec := do(t, srv, http.MethodGet, "/v1/quote?pool="+okPool+"&inputMint="+pkg.NativeMint.String()+"&amount=100&slippage=10", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "raydium_cpmm", res["protocol"])
	assert.Equal(t, "200", res["estimatedOutputAmount"])
	assert.Equal(t, "180", res["minOutputAmount"])
}

func TestQuoteEndpointErrors(t *testing.T) {
	srv := testServer()
	mint := pkg.NativeMint.String()

	tests := []struct {
		name  string
		query string
		code  int
		kind  string
	}{
		{"bad amount", "pool=" + okPool + "&inputMint=" + mint + "&amount=abc", http.StatusBadRequest, "invalid_request"},
		{"fractional slippage", "pool=" + okPool + "&inputMint=" + mint + "&amount=1&slippage=0.5", http.StatusBadRequest, "invalid_request"},
		{"missing pool", "pool=" + missingPool + "&inputMint=" + mint + "&amount=1", http.StatusNotFound, "pool_not_found"},
		{"vendor failure", "pool=" + vendorPool + "&inputMint=" + mint + "&amount=1", http.StatusBadGateway, "adapter_failure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodGet, "/v1/quote?"+tt.query, "")
			require.Equal(t, tt.code, rec.Code, rec.Body.String())
			var res ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.Equal(t, tt.kind, res.Kind)
			assert.Equal(t, tt.code, res.Code)
			assert.NotEmpty(t, res.Error)
		})
	}
}

func TestQuotesBatch(t *testing.T) {
	mint := pkg.NativeMint.String()
	body := fmt.Sprintf(`{"quotes":[
		{"pool":%q,"inputMint":%q,"amount":"5"},
		{"pool":%q,"inputMint":%q,"amount":"0"},
		{"pool":%q,"inputMint":%q,"amount":"5"}
	]}`, okPool, mint, okPool, mint, missingPool, mint)

	rec := do(t, testServer(), http.MethodPost, "/v1/quotes", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Results, 3)

	require.NotNil(t, res.Results[0].Quote)
	assert.Equal(t, "10", res.Results[0].Quote.EstimatedOutputAmount.String())
	assert.Nil(t, res.Results[0].Error)

	require.NotNil(t, res.Results[1].Error)
	assert.Equal(t, "invalid_request", res.Results[1].Error.Kind)

	require.NotNil(t, res.Results[2].Error)
	assert.Equal(t, http.StatusNotFound, res.Results[2].Error.Code)
	assert.Equal(t, missingPool, res.Results[2].Pool)
}

func TestQuotesBatchRejects(t *testing.T) {
	srv := testServer()

	rec := do(t, srv, http.MethodPost, "/v1/quotes", `{"quotes":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/v1/quotes", `{"quotes":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	items := make([]string, maxBatchSize+1)
	for i := range items {
		items[i] = fmt.Sprintf(`{"pool":%q,"inputMint":%q,"amount":"1"}`, okPool, pkg.NativeMint.String())
	}
	rec = do(t, srv, http.MethodPost, "/v1/quotes", `{"quotes":[`+strings.Join(items, ",")+`]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	rec := do(t, testServer(), http.MethodGet, "/v2/nothing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var res ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestStatusFor(t *testing.T) {
	code, kind := statusFor(fmt.Errorf("wrap: %w", pkg.ErrMalformedAccount))
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "malformed_account", kind)

	code, _ = statusFor(context.DeadlineExceeded)
	assert.Equal(t, http.StatusGatewayTimeout, code)

	code, _ = statusFor(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, code)
}

func TestQuotesBatchSurvivesBadEntries(t *testing.T) {
	mint := pkg.NativeMint.String()
	body := fmt.Sprintf(`{"quotes":[
		{"pool":%q,"inputMint":%q,"amount":%q},
		{"pool":%q,"inputMint":%q,"amount":"5"},
		{"pool":%q,"inputMint":%q,"amount":"5"}
	]}`, okPool, mint, "1"+strings.Repeat("0", 74), brokenPool, mint, okPool, mint)

	srv := testServer()
	rec := do(t, srv, http.MethodPost, "/v1/quotes", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Results, 3)

	require.NotNil(t, res.Results[0].Error)
	assert.Equal(t, "invalid_request", res.Results[0].Error.Kind)

	require.NotNil(t, res.Results[1].Error)
	assert.Equal(t, http.StatusInternalServerError, res.Results[1].Error.Code)

	require.NotNil(t, res.Results[2].Quote)
	assert.Equal(t, "10", res.Results[2].Quote.EstimatedOutputAmount.String())

	rec = do(t, srv, http.MethodGet, "/v1/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
