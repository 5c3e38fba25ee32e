package protocol

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"poolquote/pkg"
	"poolquote/pkg/logging"
	"poolquote/pkg/pool/raydium"
)

// RaydiumCPMMProtocol quotes Raydium CP-Swap pools with constant-product math.
type RaydiumCPMMProtocol struct {
	logger *logrus.Logger
}

func NewRaydiumCPMM(logger *logrus.Logger) *RaydiumCPMMProtocol {
	return &RaydiumCPMMProtocol{logger: logging.OrDiscard(logger)}
}

func (p *RaydiumCPMMProtocol) ProtocolName() pkg.ProtocolName {
	return pkg.ProtocolNameRaydiumCpmm
}

func (p *RaydiumCPMMProtocol) ProgramIDs() []solana.PublicKey {
	return []solana.PublicKey{raydium.RaydiumCPMMProgramID}
}

func (p *RaydiumCPMMProtocol) Quote(ctx context.Context, conn pkg.Connection, req pkg.QuoteRequest) (*pkg.QuoteResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	acc, err := fetchOwnedPool(ctx, conn, req.PoolAddress, p)
	if err != nil {
		return nil, err
	}
	var pool raydium.CPMMPool
	if err := pool.Decode(acc.Data); err != nil {
		return nil, err
	}
	if pool.SwapDisabled() {
		return nil, fmt.Errorf("%w: swaps are disabled on pool %s", pkg.ErrInsufficientLiquidity, req.PoolAddress)
	}
	aToB, err := pkg.MatchMints(req.InputMint, pool.Token0Mint, pool.Token1Mint)
	if err != nil {
		return nil, err
	}

	override := req.OverrideReserves != nil
	configAcc, vaults, err := fetchConfigAndVaults(ctx, conn, pool.AmmConfig, pool.Token0Vault, pool.Token1Vault, override)
	if err != nil {
		return nil, err
	}
	var config raydium.CPMMConfig
	if err := config.Decode(configAcc.Data); err != nil {
		return nil, err
	}

	var reserves pkg.Reserves
	if override {
		reserves = *req.OverrideReserves
	} else {
		v0, v1 := vaults.A.Uint64(), vaults.B.Uint64()
		reserves = pool.TradeableReserves(v0, v1)
	}
	reserveIn, reserveOut := orient(reserves, aToB)

	res, err := raydium.SwapBaseIn(reserveIn, reserveOut, req.InputAmount, config.TradeFeeRate, req.SlippagePercent)
	if err != nil {
		return nil, err
	}
	p.logger.WithFields(logrus.Fields{
		"protocol":     p.ProtocolName(),
		"pool":         req.PoolAddress.String(),
		"tradeFeeRate": config.TradeFeeRate,
	}).Debug("constant product quote")

	return &pkg.QuoteResponse{
		Protocol:              p.ProtocolName(),
		OutputMint:            otherMint(aToB, pool.Token0Mint, pool.Token1Mint).String(),
		EstimatedOutputAmount: res.AmountOut,
		MinOutputAmount:       res.MinAmountOut,
		PriceImpactPercent:    res.PriceImpact,
		FeePaid:               res.Fee,
		Reserves:              reserves,
	}, nil
}
