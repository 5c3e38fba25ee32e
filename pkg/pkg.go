package pkg

import (
	"context"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

type ProtocolName string

const (
	ProtocolNamePump          ProtocolName = "pump"
	ProtocolNameRaydiumCpmm   ProtocolName = "raydium_cpmm"
	ProtocolNameRaydiumClmm   ProtocolName = "raydium_clmm"
	ProtocolNameOrcaWhirlpool ProtocolName = "orca_whirlpool"
	ProtocolNameMeteoraDlmm   ProtocolName = "meteora_dlmm"
	ProtocolNameMeteoraDamm   ProtocolName = "meteora_damm"
)

// NativeMint is the wrapped SOL mint. An input equal to it is a buy on a bonding curve.
var NativeMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

// Account is a point-in-time snapshot of an on-chain account.
type Account struct {
	Address solana.PublicKey
	Owner   solana.PublicKey
	Data    []byte
}

// TokenAccount is the decoded head of an SPL token account.
type TokenAccount struct {
	Address solana.PublicKey
	Mint    solana.PublicKey
	Owner   solana.PublicKey
	Amount  uint64
}

// Connection is the account data source every strategy reads from.
// Implementations must be safe for concurrent use.
type Connection interface {
	// GetAccount returns ErrAccountNotFound when nothing lives at addr.
	GetAccount(ctx context.Context, addr solana.PublicKey) (*Account, error)
	// GetMultipleAccounts returns one entry per address, nil where absent.
	GetMultipleAccounts(ctx context.Context, addrs []solana.PublicKey) ([]*Account, error)
	TokenAccountsByOwner(ctx context.Context, owner solana.PublicKey) ([]TokenAccount, error)
}

// Protocol quotes swaps against pools owned by one AMM model.
type Protocol interface {
	ProtocolName() ProtocolName
	ProgramIDs() []solana.PublicKey
	Quote(ctx context.Context, conn Connection, req QuoteRequest) (*QuoteResponse, error)
}

// Reserves is a two-sided reserve pair. On a bonding curve A is the SOL side
// and B the token side; on two-token pools A is token 0 (A, X).
type Reserves struct {
	A math.Int `json:"reserveA"`
	B math.Int `json:"reserveB"`
}

func NewReserves(a, b uint64) Reserves {
	return Reserves{A: math.NewIntFromUint64(a), B: math.NewIntFromUint64(b)}
}

type QuoteRequest struct {
	PoolAddress     solana.PublicKey
	InputMint       solana.PublicKey
	InputAmount     math.Int
	SlippagePercent int
	// OverrideReserves forces a hypothetical reserve state. Strategies that
	// cannot use it ignore it.
	OverrideReserves *Reserves
}

type QuoteResponse struct {
	Protocol              ProtocolName    `json:"protocol"`
	OutputMint            string          `json:"outputMint"`
	EstimatedOutputAmount math.Int        `json:"estimatedOutputAmount"`
	MinOutputAmount       math.Int        `json:"minOutputAmount"`
	PriceImpactPercent    decimal.Decimal `json:"priceImpactPercent"`
	FeePaid               math.Int        `json:"feePaid"`
	Reserves              Reserves        `json:"reserves"`
}
