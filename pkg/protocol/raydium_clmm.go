package protocol

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"poolquote/pkg"
	"poolquote/pkg/logging"
	"poolquote/pkg/pool/raydium"
	"poolquote/pkg/pool/spot"
)

// RaydiumCLMMProtocol quotes Raydium concentrated liquidity pools at spot price.
type RaydiumCLMMProtocol struct {
	logger *logrus.Logger
}

func NewRaydiumCLMM(logger *logrus.Logger) *RaydiumCLMMProtocol {
	return &RaydiumCLMMProtocol{logger: logging.OrDiscard(logger)}
}

func (p *RaydiumCLMMProtocol) ProtocolName() pkg.ProtocolName {
	return pkg.ProtocolNameRaydiumClmm
}

func (p *RaydiumCLMMProtocol) ProgramIDs() []solana.PublicKey {
	return []solana.PublicKey{raydium.RaydiumCLMMProgramID}
}

func (p *RaydiumCLMMProtocol) Quote(ctx context.Context, conn pkg.Connection, req pkg.QuoteRequest) (*pkg.QuoteResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	acc, err := fetchOwnedPool(ctx, conn, req.PoolAddress, p)
	if err != nil {
		return nil, err
	}
	var pool raydium.CLMMPool
	if err := pool.Decode(acc.Data); err != nil {
		return nil, err
	}
	aToB, err := pkg.MatchMints(req.InputMint, pool.TokenMint0, pool.TokenMint1)
	if err != nil {
		return nil, err
	}

	configAcc, reserves, err := fetchConfigAndVaults(ctx, conn, pool.AmmConfig, pool.TokenVault0, pool.TokenVault1, false)
	if err != nil {
		return nil, err
	}
	var config raydium.CLMMConfig
	if err := config.Decode(configAcc.Data); err != nil {
		return nil, err
	}

	if pool.Liquidity.IsZero() {
		return nil, errZeroLiquidity(req.PoolAddress)
	}
	fee := pkg.CeilFee(req.InputAmount, uint64(config.TradeFeeRate), raydium.FeeRateDenominator)
	net := req.InputAmount.Sub(fee)
	if !net.IsPositive() {
		return nil, errFeeConsumesInput()
	}
	out, err := spot.AmountOut(pool.SqrtPriceX64, net, aToB)
	if err != nil {
		return nil, err
	}
	p.logger.WithFields(logrus.Fields{
		"protocol":    p.ProtocolName(),
		"pool":        req.PoolAddress.String(),
		"tickCurrent": pool.TickCurrent,
	}).Debug("spot price quote")

	return &pkg.QuoteResponse{
		Protocol:              p.ProtocolName(),
		OutputMint:            otherMint(aToB, pool.TokenMint0, pool.TokenMint1).String(),
		EstimatedOutputAmount: out,
		MinOutputAmount:       pkg.ApplySlippage(out, req.SlippagePercent),
		PriceImpactPercent:    decimal.Zero,
		FeePaid:               fee,
		Reserves:              reserves,
	}, nil
}
