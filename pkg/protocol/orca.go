package protocol

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"poolquote/pkg"
	"poolquote/pkg/logging"
	"poolquote/pkg/pool/whirlpool"
)

// OrcaProtocol quotes Orca Whirlpools at the current sqrt price.
type OrcaProtocol struct {
	logger *logrus.Logger
}

func NewOrca(logger *logrus.Logger) *OrcaProtocol {
	return &OrcaProtocol{logger: logging.OrDiscard(logger)}
}

func (p *OrcaProtocol) ProtocolName() pkg.ProtocolName {
	return pkg.ProtocolNameOrcaWhirlpool
}

func (p *OrcaProtocol) ProgramIDs() []solana.PublicKey {
	return []solana.PublicKey{whirlpool.WhirlpoolProgramID}
}

func (p *OrcaProtocol) Quote(ctx context.Context, conn pkg.Connection, req pkg.QuoteRequest) (*pkg.QuoteResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	acc, err := fetchOwnedPool(ctx, conn, req.PoolAddress, p)
	if err != nil {
		return nil, err
	}
	var pool whirlpool.WhirlpoolPool
	if err := pool.Decode(acc.Data); err != nil {
		return nil, err
	}
	mintA, mintB := pool.GetTokens()
	aToB, err := pkg.MatchMints(req.InputMint, mintA, mintB)
	if err != nil {
		return nil, err
	}

	vaultA, vaultB := pool.GetVaults()
	reserves, err := vaultReserves(ctx, conn, vaultA, vaultB)
	if err != nil {
		return nil, err
	}

	q, err := pool.Quote(req.InputAmount, aToB)
	if err != nil {
		return nil, err
	}
	p.logger.WithFields(logrus.Fields{
		"protocol": p.ProtocolName(),
		"pool":     req.PoolAddress.String(),
		"feeRate":  pool.FeeRate,
		"tick":     pool.TickCurrentIndex,
	}).Debug("spot price quote")

	return &pkg.QuoteResponse{
		Protocol:              p.ProtocolName(),
		OutputMint:            otherMint(aToB, mintA, mintB).String(),
		EstimatedOutputAmount: q.AmountOut,
		MinOutputAmount:       pkg.ApplySlippage(q.AmountOut, req.SlippagePercent),
		PriceImpactPercent:    decimal.Zero,
		FeePaid:               q.Fee,
		Reserves:              reserves,
	}, nil
}
