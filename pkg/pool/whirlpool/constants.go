package whirlpool

import "github.com/gagliardetto/solana-go"

// Whirlpool (Orca) program IDs
const (
	// WHIRLPOOL_PROGRAM_ID is the Orca Whirlpool CLMM program
	WHIRLPOOL_PROGRAM_ID = "whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc"
)

var (
	WhirlpoolProgramID = solana.MustPublicKeyFromBase58(WHIRLPOOL_PROGRAM_ID)
)

// WhirlpoolSize is the decoded head of a whirlpool account, up to and
// including FeeGrowthGlobalB. Reward infos that follow are never read.
const WhirlpoolSize = 261

// Fee rates are hundredths of a basis point.
const FeeRateDenominator = 1_000_000

// Fee tiers (hundredths of a basis point)
const (
	FEE_RATE_0_01 = 100   // 0.01%
	FEE_RATE_0_05 = 500   // 0.05%
	FEE_RATE_0_30 = 3000  // 0.30%
	FEE_RATE_1_00 = 10000 // 1.00%
)
