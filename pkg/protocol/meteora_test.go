package protocol

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cosmossdk.io/math"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"poolquote/pkg"
	"poolquote/pkg/jupiter"
	"poolquote/pkg/pool/meteora"
	"poolquote/pkg/sol"
)

type fakeVendor struct {
	got   VendorRequest
	quote *VendorQuote
	err   error
}

func (f *fakeVendor) Quote(ctx context.Context, req VendorRequest) (*VendorQuote, error) {
	f.got = req
	return f.quote, f.err
}

func addDLMM(conn *sol.FixtureConnection) twoTokenPool {
	p := twoTokenPool{addr: newKey(), mintA: newKey(), mintB: pkg.NativeMint}
	data := make([]byte, 904)
	copy(data[88:], p.mintA[:])
	copy(data[120:], p.mintB[:])
	vx := addVault(conn, p.mintA, p.addr, 111)
	vy := addVault(conn, p.mintB, p.addr, 222)
	copy(data[152:], vx[:])
	copy(data[184:], vy[:])
	conn.SetAccount(p.addr, meteora.MeteoraDLMMProgramID, data)
	return p
}

func TestMeteoraDelegatesToVendor(t *testing.T) {
	conn := sol.NewFixtureConnection()
	pool := addDLMM(conn)
	vendor := &fakeVendor{quote: &VendorQuote{
		OutputAmount:       math.NewInt(990),
		MinOutputAmount:    math.NewInt(980),
		Fee:                math.NewInt(3),
		PriceImpactPercent: decimal.RequireFromString("0.1"),
	}}

	res, err := defaultRegistry(t, vendor).Quote(context.Background(), conn, pkg.QuoteRequest{
		PoolAddress:     pool.addr,
		InputMint:       pool.mintB,
		InputAmount:     math.NewInt(1_000),
		SlippagePercent: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, pkg.ProtocolNameMeteoraDlmm, res.Protocol)
	assert.Equal(t, pool.mintA.String(), res.OutputMint)
	assert.Equal(t, "990", res.EstimatedOutputAmount.String())
	assert.Equal(t, "980", res.MinOutputAmount.String())
	assert.Equal(t, "3", res.FeePaid.String())
	assert.Equal(t, "111", res.Reserves.A.String())
	assert.Equal(t, "222", res.Reserves.B.String())

	assert.Equal(t, pkg.ProtocolNameMeteoraDlmm, vendor.got.Protocol)
	assert.Equal(t, pool.addr, vendor.got.Pool)
	assert.Equal(t, pool.mintA, vendor.got.OutputMint)
	assert.Equal(t, 1, vendor.got.SlippagePercent)
}

func TestMeteoraVendorErrorPassesThrough(t *testing.T) {
	conn := sol.NewFixtureConnection()
	pool := addDLMM(conn)
	vendorErr := errors.New("sdk exploded")

	_, err := defaultRegistry(t, &fakeVendor{err: vendorErr}).Quote(context.Background(), conn, pkg.QuoteRequest{
		PoolAddress: pool.addr,
		InputMint:   pool.mintA,
		InputAmount: math.NewInt(1_000),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, pkg.ErrAdapterFailure)
	assert.ErrorIs(t, err, vendorErr)

	var adapterErr *pkg.AdapterError
	require.True(t, errors.As(err, &adapterErr))
	assert.Equal(t, pkg.ProtocolNameMeteoraDlmm, adapterErr.Protocol)
	assert.Same(t, vendorErr, errors.Unwrap(adapterErr))
}

func TestMeteoraWithoutVendor(t *testing.T) {
	conn := sol.NewFixtureConnection()
	pool := addDLMM(conn)

	_, err := defaultRegistry(t, nil).Quote(context.Background(), conn, pkg.QuoteRequest{
		PoolAddress: pool.addr,
		InputMint:   pool.mintA,
		InputAmount: math.NewInt(1_000),
	})
	assert.ErrorIs(t, err, pkg.ErrAdapterFailure)
}

func TestMeteoraDAMMMintMismatch(t *testing.T) {
	conn := sol.NewFixtureConnection()
	pool := newKey()
	data := make([]byte, meteora.DAMMMinSize)
	conn.SetAccount(pool, meteora.MeteoraDAMMProgramID, data)

	vendor := &fakeVendor{}
	_, err := defaultRegistry(t, vendor).Quote(context.Background(), conn, pkg.QuoteRequest{
		PoolAddress: pool,
		InputMint:   pkg.NativeMint,
		InputAmount: math.NewInt(1_000),
	})
	assert.ErrorIs(t, err, pkg.ErrInputMintMismatch)
	assert.Equal(t, VendorRequest{}, vendor.got)
}

func jupiterResponse(ammKey string, hops int) *jupiter.QuoteResponse {
	fee := "4"
	res := &jupiter.QuoteResponse{
		OutAmount:            "1500",
		OtherAmountThreshold: "1485",
		PriceImpactPct:       "0.0025",
	}
	for i := 0; i < hops; i++ {
		res.RoutePlan = append(res.RoutePlan, jupiter.RoutePlanStep{
			SwapInfo: jupiter.SwapInfo{AmmKey: ammKey, FeeAmount: &fee},
			Bps:      10000,
		})
	}
	return res
}

func TestNormalizeJupiter(t *testing.T) {
	pool := newKey()

	q, err := normalizeJupiter(jupiterResponse(pool.String(), 1), pool)
	require.NoError(t, err)
	assert.Equal(t, "1500", q.OutputAmount.String())
	assert.Equal(t, "1485", q.MinOutputAmount.String())
	assert.Equal(t, "4", q.Fee.String())
	assert.Equal(t, "0.25", q.PriceImpactPercent.String())

	_, err = normalizeJupiter(jupiterResponse(newKey().String(), 1), pool)
	assert.Error(t, err)

	_, err = normalizeJupiter(jupiterResponse(pool.String(), 2), pool)
	assert.Error(t, err)

	bad := jupiterResponse(pool.String(), 1)
	bad.OutAmount = "-1"
	_, err = normalizeJupiter(bad, pool)
	assert.Error(t, err)
}

func TestJupiterVendorEndToEnd(t *testing.T) {
	pool := newKey()
	mint := newKey()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "Meteora DAMM v2", q.Get("dexes"))
		assert.Equal(t, "300", q.Get("slippageBps"))
		assert.Equal(t, pkg.NativeMint.String(), q.Get("inputMint"))
		_, _ = w.Write([]byte(`{"outAmount":"77","otherAmountThreshold":"74","priceImpactPct":"0",
			"routePlan":[{"swapInfo":{"ammKey":"` + pool.String() + `"},"bps":10000}]}`))
	}))
	defer srv.Close()

	vendor := NewJupiterVendor(jupiter.NewClient(srv.URL, ""))
	q, err := vendor.Quote(context.Background(), VendorRequest{
		Protocol:        pkg.ProtocolNameMeteoraDamm,
		Pool:            pool,
		InputMint:       pkg.NativeMint,
		OutputMint:      mint,
		Amount:          math.NewInt(100),
		SlippagePercent: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "77", q.OutputAmount.String())
	assert.Equal(t, "74", q.MinOutputAmount.String())
	assert.True(t, q.Fee.IsZero())
}
