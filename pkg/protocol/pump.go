package protocol

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"poolquote/pkg"
	"poolquote/pkg/logging"
	"poolquote/pkg/pool/pump"
)

// UnknownMint is reported as the output of a buy when the curve's token
// accounts do not reveal its mint.
const UnknownMint = "unknown"

// PumpProtocol quotes bonding curves of both pump deployments natively.
type PumpProtocol struct {
	logger *logrus.Logger
}

func NewPump(logger *logrus.Logger) *PumpProtocol {
	return &PumpProtocol{logger: logging.OrDiscard(logger)}
}

func (p *PumpProtocol) ProtocolName() pkg.ProtocolName {
	return pkg.ProtocolNamePump
}

func (p *PumpProtocol) ProgramIDs() []solana.PublicKey {
	return []solana.PublicKey{pump.PumpFunProgramID, pump.PumpAMMProgramID}
}

func (p *PumpProtocol) Quote(ctx context.Context, conn pkg.Connection, req pkg.QuoteRequest) (*pkg.QuoteResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	acc, err := fetchOwnedPool(ctx, conn, req.PoolAddress, p)
	if err != nil {
		return nil, err
	}
	curve, err := pump.DecodeBondingCurve(acc.Data)
	if err != nil {
		return nil, err
	}
	log := p.logger.WithFields(logrus.Fields{
		"protocol": p.ProtocolName(),
		"pool":     req.PoolAddress.String(),
	})
	if curve.Complete {
		log.Warn("bonding curve is complete, quoting anyway")
	}

	direction := pump.DirectionSell
	if req.InputMint.Equals(pkg.NativeMint) {
		direction = pump.DirectionBuy
	}

	tokenMint, err := p.curveMint(ctx, conn, req.PoolAddress)
	if err != nil {
		return nil, err
	}
	if direction == pump.DirectionSell && !tokenMint.IsZero() && !req.InputMint.Equals(tokenMint) {
		return nil, fmt.Errorf("%w: curve trades %s, got %s", pkg.ErrInputMintMismatch, tokenMint, req.InputMint)
	}

	// Virtual reserves price the trade; real reserves are only reported.
	pricing, reported := curve.VirtualReserves(), curve.RealReserves()
	if req.OverrideReserves != nil {
		pricing, reported = *req.OverrideReserves, *req.OverrideReserves
	}
	reserveIn, reserveOut := pump.Orient(pricing, direction)

	q, err := pump.ComputeQuote(reserveIn, reserveOut, req.InputAmount, curve.FeeBps(), req.SlippagePercent)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"direction": direction.String(),
		"feeBps":    curve.FeeBps(),
		"amountOut": q.AmountOut.String(),
	}).Debug("bonding curve quote")

	outputMint := pkg.NativeMint.String()
	if direction == pump.DirectionBuy {
		outputMint = UnknownMint
		if !tokenMint.IsZero() {
			outputMint = tokenMint.String()
		}
	}

	return &pkg.QuoteResponse{
		Protocol:              p.ProtocolName(),
		OutputMint:            outputMint,
		EstimatedOutputAmount: q.AmountOut,
		MinOutputAmount:       q.MinAmountOut,
		PriceImpactPercent:    q.PriceImpact,
		FeePaid:               q.Fee,
		Reserves:              reported,
	}, nil
}

// curveMint discovers the traded token from the curve's token accounts: the
// first one whose mint is not native. Zero means none was found.
func (p *PumpProtocol) curveMint(ctx context.Context, conn pkg.Connection, curve solana.PublicKey) (solana.PublicKey, error) {
	accounts, err := conn.TokenAccountsByOwner(ctx, curve)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to discover curve token: %w", err)
	}
	for _, ta := range accounts {
		if !ta.Mint.Equals(pkg.NativeMint) {
			return ta.Mint, nil
		}
	}
	return solana.PublicKey{}, nil
}
