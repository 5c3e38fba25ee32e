package pkg

import (
	"errors"
	"strings"
	"testing"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteRequestValidate(t *testing.T) {
	ok := NewReserves(1, 2)
	top := NewReserves(^uint64(0), ^uint64(0))
	above := MaxAmount.AddRaw(1)
	tooBig := Reserves{A: math.NewInt(1), B: above}
	negative := Reserves{A: math.NewInt(-1), B: math.NewInt(1)}
	tests := []struct {
		name string
		req  QuoteRequest
		want error
	}{
		{"valid", QuoteRequest{InputAmount: math.NewInt(1), SlippagePercent: 1}, nil},
		{"valid with overrides", QuoteRequest{InputAmount: math.NewInt(1), OverrideReserves: &ok}, nil},
		{"full slippage", QuoteRequest{InputAmount: math.NewInt(1), SlippagePercent: 100}, nil},
		{"nil amount", QuoteRequest{}, ErrInvalidRequest},
		{"zero amount", QuoteRequest{InputAmount: math.ZeroInt()}, ErrInvalidRequest},
		{"negative amount", QuoteRequest{InputAmount: math.NewInt(-1)}, ErrInvalidRequest},
		{"slippage over 100", QuoteRequest{InputAmount: math.NewInt(1), SlippagePercent: 101}, ErrInvalidRequest},
		{"negative slippage", QuoteRequest{InputAmount: math.NewInt(1), SlippagePercent: -1}, ErrInvalidRequest},
		{"negative override", QuoteRequest{InputAmount: math.NewInt(1), OverrideReserves: &negative}, ErrInvalidRequest},
		{"u64 max amount", QuoteRequest{InputAmount: MaxAmount, OverrideReserves: &top}, nil},
		{"amount above u64", QuoteRequest{InputAmount: above}, ErrInvalidRequest},
		{"override above u64", QuoteRequest{InputAmount: math.NewInt(1), OverrideReserves: &tooBig}, ErrInvalidRequest},
		{"nil override side", QuoteRequest{InputAmount: math.NewInt(1), OverrideReserves: &Reserves{A: math.NewInt(1)}}, ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestApplySlippage(t *testing.T) {
	assert.Equal(t, "99", ApplySlippage(math.NewInt(100), 1).String())
	assert.Equal(t, "100", ApplySlippage(math.NewInt(100), 0).String())
	assert.Equal(t, "0", ApplySlippage(math.NewInt(100), 100).String())
	// floor(199 * 0.99) = 197
	assert.Equal(t, "197", ApplySlippage(math.NewInt(199), 1).String())
}

func TestCeilFee(t *testing.T) {
	assert.Equal(t, "25", CeilFee(math.NewInt(10_000), 2500, 1_000_000).String())
	assert.Equal(t, "1", CeilFee(math.NewInt(7), 2500, 1_000_000).String())
	assert.Equal(t, "0", CeilFee(math.NewInt(7), 0, 1_000_000).String())
}

func TestMatchMints(t *testing.T) {
	a, b := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()

	aToB, err := MatchMints(a, a, b)
	require.NoError(t, err)
	assert.True(t, aToB)

	aToB, err = MatchMints(b, a, b)
	require.NoError(t, err)
	assert.False(t, aToB)

	_, err = MatchMints(NativeMint, a, b)
	assert.ErrorIs(t, err, ErrInputMintMismatch)
}

func TestAdapterError(t *testing.T) {
	cause := errors.New("boom")
	err := error(&AdapterError{Protocol: ProtocolNameMeteoraDamm, Err: cause})
	assert.ErrorIs(t, err, ErrAdapterFailure)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrPoolNotFound)
	assert.Equal(t, "meteora_damm adapter: boom", err.Error())
}

func TestParseQuoteRequest(t *testing.T) {
	pool := "Bd3snQsjrRmrKfEkoQk6wcm5QkZ9Hy8UCQfecZYFxd6i"
	mint := NativeMint.String()

	req, err := ParseQuoteRequest(pool, mint, "1000", "2", "", "")
	require.NoError(t, err)
	assert.Equal(t, "1000", req.InputAmount.String())
	assert.Equal(t, 2, req.SlippagePercent)
	assert.Nil(t, req.OverrideReserves)

	req, err = ParseQuoteRequest(pool, mint, "1000", "2", "0", "0")
	require.NoError(t, err)
	assert.Nil(t, req.OverrideReserves)

	req, err = ParseQuoteRequest(pool, mint, "1000", "2", "10", "20")
	require.NoError(t, err)
	require.NotNil(t, req.OverrideReserves)
	assert.Equal(t, "20", req.OverrideReserves.B.String())

	for _, bad := range [][]string{
		{"nope", mint, "1", "1"},
		{pool, mint, "1.5", "1"},
		{pool, mint, "1", "0.5"},
		{pool, mint, "0", "1"},
		{pool, mint, "1", "101"},
		{pool, mint, "1" + strings.Repeat("0", 74), "1"},
	} {
		_, err := ParseQuoteRequest(bad[0], bad[1], bad[2], bad[3], "", "")
		assert.ErrorIs(t, err, ErrInvalidRequest, bad)
	}
}

func TestParseQuoteRequestRejectsOversizedOverrides(t *testing.T) {
	huge := "1" + strings.Repeat("0", 66)
	_, err := ParseQuoteRequest("Bd3snQsjrRmrKfEkoQk6wcm5QkZ9Hy8UCQfecZYFxd6i", NativeMint.String(), "10000000", "1", huge, huge)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
