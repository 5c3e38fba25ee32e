package protocol

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"poolquote/pkg"
	"poolquote/pkg/logging"
	"poolquote/pkg/pool/meteora"
)

// MeteoraProtocol decodes a Meteora pool's token pair and delegates pricing
// to a VendorQuoter. Vendor failures come back as *pkg.AdapterError.
type MeteoraProtocol struct {
	name      pkg.ProtocolName
	programID solana.PublicKey
	decode    func([]byte) (*meteora.Pair, error)
	vendor    VendorQuoter
	logger    *logrus.Logger
}

func NewMeteoraDLMM(vendor VendorQuoter, logger *logrus.Logger) *MeteoraProtocol {
	return &MeteoraProtocol{
		name:      pkg.ProtocolNameMeteoraDlmm,
		programID: meteora.MeteoraDLMMProgramID,
		decode:    meteora.DecodeDLMM,
		vendor:    vendor,
		logger:    logging.OrDiscard(logger),
	}
}

func NewMeteoraDAMM(vendor VendorQuoter, logger *logrus.Logger) *MeteoraProtocol {
	return &MeteoraProtocol{
		name:      pkg.ProtocolNameMeteoraDamm,
		programID: meteora.MeteoraDAMMProgramID,
		decode:    meteora.DecodeDAMM,
		vendor:    vendor,
		logger:    logging.OrDiscard(logger),
	}
}

func (p *MeteoraProtocol) ProtocolName() pkg.ProtocolName {
	return p.name
}

func (p *MeteoraProtocol) ProgramIDs() []solana.PublicKey {
	return []solana.PublicKey{p.programID}
}

func (p *MeteoraProtocol) Quote(ctx context.Context, conn pkg.Connection, req pkg.QuoteRequest) (*pkg.QuoteResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	acc, err := fetchOwnedPool(ctx, conn, req.PoolAddress, p)
	if err != nil {
		return nil, err
	}
	pair, err := p.decode(acc.Data)
	if err != nil {
		return nil, err
	}
	aToB, err := pkg.MatchMints(req.InputMint, pair.MintA, pair.MintB)
	if err != nil {
		return nil, err
	}
	outputMint := otherMint(aToB, pair.MintA, pair.MintB)

	if p.vendor == nil {
		return nil, &pkg.AdapterError{Protocol: p.name, Err: errNoVendor}
	}
	vq, err := p.vendor.Quote(ctx, VendorRequest{
		Protocol:        p.name,
		Pool:            req.PoolAddress,
		InputMint:       req.InputMint,
		OutputMint:      outputMint,
		Amount:          req.InputAmount,
		SlippagePercent: req.SlippagePercent,
	})
	if err != nil {
		p.logger.WithError(err).WithField("protocol", p.name).Debug("vendor quote failed")
		return nil, &pkg.AdapterError{Protocol: p.name, Err: err}
	}

	reserves, err := vaultReserves(ctx, conn, pair.VaultA, pair.VaultB)
	if err != nil {
		return nil, err
	}

	return &pkg.QuoteResponse{
		Protocol:              p.name,
		OutputMint:            outputMint.String(),
		EstimatedOutputAmount: vq.OutputAmount,
		MinOutputAmount:       vq.MinOutputAmount,
		PriceImpactPercent:    vq.PriceImpactPercent,
		FeePaid:               vq.Fee,
		Reserves:              reserves,
	}, nil
}
