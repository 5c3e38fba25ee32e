package protocol

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"poolquote/pkg"
	"poolquote/pkg/jupiter"
)

// VendorRequest is what an adapter asks a vendor to price.
type VendorRequest struct {
	Protocol        pkg.ProtocolName
	Pool            solana.PublicKey
	InputMint       solana.PublicKey
	OutputMint      solana.PublicKey
	Amount          math.Int
	SlippagePercent int
}

// VendorQuote is a vendor result already normalized to the quote contract.
type VendorQuote struct {
	OutputAmount       math.Int
	MinOutputAmount    math.Int
	Fee                math.Int
	PriceImpactPercent decimal.Decimal
}

// VendorQuoter prices pools whose math lives in a third-party service.
type VendorQuoter interface {
	Quote(ctx context.Context, req VendorRequest) (*VendorQuote, error)
}

var errNoVendor = errors.New("no vendor quoter configured")

// jupiterLabels maps protocols to the Jupiter dex labels that route them.
var jupiterLabels = map[pkg.ProtocolName]string{
	pkg.ProtocolNameMeteoraDlmm: "Meteora DLMM",
	pkg.ProtocolNameMeteoraDamm: "Meteora DAMM v2",
}

// JupiterVendor prices a single pool through the Jupiter quote API,
// restricted to the pool's dex and direct routes.
type JupiterVendor struct {
	Client *jupiter.Client
}

func NewJupiterVendor(client *jupiter.Client) *JupiterVendor {
	return &JupiterVendor{Client: client}
}

func (v *JupiterVendor) Quote(ctx context.Context, req VendorRequest) (*VendorQuote, error) {
	label, ok := jupiterLabels[req.Protocol]
	if !ok {
		return nil, fmt.Errorf("no jupiter dex label for %s", req.Protocol)
	}
	slippageBps := uint16(req.SlippagePercent * 100)
	direct := true
	res, err := v.Client.Quote(ctx, jupiter.QuoteRequest{
		InputMint:        req.InputMint.String(),
		OutputMint:       req.OutputMint.String(),
		Amount:           req.Amount.String(),
		SlippageBps:      &slippageBps,
		SwapMode:         "ExactIn",
		Dexes:            []string{label},
		OnlyDirectRoutes: &direct,
	})
	if err != nil {
		return nil, err
	}
	return normalizeJupiter(res, req.Pool)
}

// normalizeJupiter turns a direct single-hop route through pool into a VendorQuote.
func normalizeJupiter(res *jupiter.QuoteResponse, pool solana.PublicKey) (*VendorQuote, error) {
	if len(res.RoutePlan) != 1 {
		return nil, fmt.Errorf("expected a single-hop route, got %d hops", len(res.RoutePlan))
	}
	hop := res.RoutePlan[0].SwapInfo
	if hop.AmmKey != pool.String() {
		return nil, fmt.Errorf("route goes through %s, not pool %s", hop.AmmKey, pool)
	}

	out, err := parseAmount("outAmount", res.OutAmount)
	if err != nil {
		return nil, err
	}
	minOut, err := parseAmount("otherAmountThreshold", res.OtherAmountThreshold)
	if err != nil {
		return nil, err
	}
	fee := math.ZeroInt()
	if hop.FeeAmount != nil {
		if fee, err = parseAmount("feeAmount", *hop.FeeAmount); err != nil {
			return nil, err
		}
	}
	impact := decimal.Zero
	if res.PriceImpactPct != "" {
		pct, err := decimal.NewFromString(res.PriceImpactPct)
		if err != nil {
			return nil, fmt.Errorf("invalid priceImpactPct %q: %w", res.PriceImpactPct, err)
		}
		// Jupiter reports a fraction.
		impact = pct.Mul(decimal.NewFromInt(100))
	}
	return &VendorQuote{
		OutputAmount:       out,
		MinOutputAmount:    minOut,
		Fee:                fee,
		PriceImpactPercent: impact,
	}, nil
}

func parseAmount(field, s string) (math.Int, error) {
	v, ok := math.NewIntFromString(s)
	if !ok || v.IsNegative() {
		return math.Int{}, fmt.Errorf("invalid %s %s", field, strconv.Quote(s))
	}
	return v, nil
}
