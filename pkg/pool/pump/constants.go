package pump

import "github.com/gagliardetto/solana-go"

// Pump program IDs. Both deployments share the bonding curve account layout.
const (
	PUMP_FUN_PROGRAM_ID = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"
	PUMP_AMM_PROGRAM_ID = "pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA"
)

var (
	PumpFunProgramID = solana.MustPublicKeyFromBase58(PUMP_FUN_PROGRAM_ID)
	PumpAMMProgramID = solana.MustPublicKeyFromBase58(PUMP_AMM_PROGRAM_ID)
)

const (
	// BondingCurveSize is the standard account size: 8-byte discriminator,
	// five u64 reserves and a one-byte complete flag.
	BondingCurveSize = 8 + 5*8 + 1

	// ExtendedFeeSize is the trailing fee override carried by extended layouts.
	ExtendedFeeSize = 8

	// DefaultFeeBasisPoints is used when the account carries no fee override (1%).
	DefaultFeeBasisPoints uint64 = 100

	FeeDenominator = 10000
)
