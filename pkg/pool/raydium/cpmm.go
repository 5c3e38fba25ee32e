package raydium

import (
	"fmt"

	"cosmossdk.io/math"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"poolquote/pkg"
)

// CPMMPool is the head of a Raydium CP-Swap pool state account.
type CPMMPool struct {
	Discriminator      [8]uint8
	AmmConfig          solana.PublicKey
	PoolCreator        solana.PublicKey
	Token0Vault        solana.PublicKey
	Token1Vault        solana.PublicKey
	LpMint             solana.PublicKey
	Token0Mint         solana.PublicKey
	Token1Mint         solana.PublicKey
	Token0Program      solana.PublicKey
	Token1Program      solana.PublicKey
	ObservationKey     solana.PublicKey
	AuthBump           uint8
	Status             uint8
	LpMintDecimals     uint8
	Mint0Decimals      uint8
	Mint1Decimals      uint8
	LpSupply           uint64
	ProtocolFeesToken0 uint64
	ProtocolFeesToken1 uint64
	FundFeesToken0     uint64
	FundFeesToken1     uint64
	OpenTime           uint64
	RecentEpoch        uint64
}

func (p *CPMMPool) Decode(data []byte) error {
	if len(data) < CPMMPoolStateSize {
		return fmt.Errorf("%w: cpmm pool expected %d bytes, got %d", pkg.ErrMalformedAccount, CPMMPoolStateSize, len(data))
	}
	if err := bin.NewBinDecoder(data[:CPMMPoolStateSize]).Decode(p); err != nil {
		return fmt.Errorf("%w: cpmm pool: %v", pkg.ErrMalformedAccount, err)
	}
	return nil
}

// SwapDisabled reports the status bit that halts swaps.
func (p *CPMMPool) SwapDisabled() bool {
	return p.Status&cpmmStatusSwapFlag != 0
}

// TradeableReserves subtracts fees owed to the protocol and fund from raw
// vault balances. A vault below its owed fees has no tradeable liquidity.
func (p *CPMMPool) TradeableReserves(vault0, vault1 uint64) pkg.Reserves {
	r0 := math.NewIntFromUint64(vault0).Sub(math.NewIntFromUint64(p.ProtocolFeesToken0)).Sub(math.NewIntFromUint64(p.FundFeesToken0))
	r1 := math.NewIntFromUint64(vault1).Sub(math.NewIntFromUint64(p.ProtocolFeesToken1)).Sub(math.NewIntFromUint64(p.FundFeesToken1))
	if r0.IsNegative() {
		r0 = math.ZeroInt()
	}
	if r1.IsNegative() {
		r1 = math.ZeroInt()
	}
	return pkg.Reserves{A: r0, B: r1}
}

// CPMMConfig is the head of a CP-Swap AMM config account.
type CPMMConfig struct {
	Discriminator     [8]uint8
	Bump              uint8
	DisableCreatePool bool
	Index             uint16
	TradeFeeRate      uint64
	ProtocolFeeRate   uint64
	FundFeeRate       uint64
	CreatePoolFee     uint64
}

func (c *CPMMConfig) Decode(data []byte) error {
	if len(data) < CPMMAmmConfigSize {
		return fmt.Errorf("%w: cpmm config expected %d bytes, got %d", pkg.ErrMalformedAccount, CPMMAmmConfigSize, len(data))
	}
	if err := bin.NewBinDecoder(data[:CPMMAmmConfigSize]).Decode(c); err != nil {
		return fmt.Errorf("%w: cpmm config: %v", pkg.ErrMalformedAccount, err)
	}
	if c.TradeFeeRate >= FeeRateDenominator {
		return fmt.Errorf("%w: trade fee rate %d is invalid", pkg.ErrMalformedAccount, c.TradeFeeRate)
	}
	return nil
}

// SwapResult is a constant-product swap quote.
type SwapResult struct {
	Fee          math.Int
	AmountOut    math.Int
	MinAmountOut math.Int
	PriceImpact  decimal.Decimal
}

// SwapBaseIn prices amountIn with the trade fee rounded up and taken from
// the input, then out = reserveOut*net / (reserveIn+net), rounded down.
func SwapBaseIn(reserveIn, reserveOut, amountIn math.Int, tradeFeeRate uint64, slippagePercent int) (*SwapResult, error) {
	if !reserveIn.IsPositive() || !reserveOut.IsPositive() {
		return nil, fmt.Errorf("%w: reserves in=%s out=%s", pkg.ErrInsufficientLiquidity, reserveIn, reserveOut)
	}
	if amountIn.GT(pkg.MaxAmount) || reserveIn.GT(pkg.MaxAmount) || reserveOut.GT(pkg.MaxAmount) {
		return nil, fmt.Errorf("%w: amounts must fit in u64", pkg.ErrInvalidRequest)
	}
	fee := pkg.CeilFee(amountIn, tradeFeeRate, FeeRateDenominator)
	net := amountIn.Sub(fee)
	if !net.IsPositive() {
		return nil, fmt.Errorf("%w: amount becomes zero after trade fee", pkg.ErrInvalidRequest)
	}

	amountOut := reserveOut.Mul(net).Quo(reserveIn.Add(net))
	ratio := net.MulRaw(10000).Quo(reserveIn)
	return &SwapResult{
		Fee:          fee,
		AmountOut:    amountOut,
		MinAmountOut: pkg.ApplySlippage(amountOut, slippagePercent),
		PriceImpact:  decimal.NewFromBigInt(ratio.BigInt(), -2),
	}, nil
}
