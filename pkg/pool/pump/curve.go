package pump

import (
	"encoding/binary"
	"fmt"

	"cosmossdk.io/math"
	bin "github.com/gagliardetto/binary"
	"poolquote/pkg"
)

// BondingCurve is a decoded bonding curve snapshot. Virtual reserves drive
// pricing; real reserves are the custodied balances and are only reported.
type BondingCurve struct {
	Discriminator        [8]uint8
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TokenTotalSupply     uint64
	Complete             bool

	// FeeBasisPoints is set only by extended layouts.
	FeeBasisPoints *uint64
}

// DecodeBondingCurve parses a raw account. Only the 49-byte prefix and an
// optional trailing u64 fee are interpreted; a partial trailer is ignored.
func DecodeBondingCurve(data []byte) (*BondingCurve, error) {
	curve := &BondingCurve{}
	if err := curve.Decode(data); err != nil {
		return nil, err
	}
	return curve, nil
}

func (c *BondingCurve) Decode(data []byte) error {
	if len(data) < BondingCurveSize {
		return fmt.Errorf("%w: bonding curve expected at least %d bytes, got %d",
			pkg.ErrMalformedAccount, BondingCurveSize, len(data))
	}

	dec := bin.NewBinDecoder(data[:BondingCurveSize])
	if err := dec.Decode(&c.Discriminator); err != nil {
		return fmt.Errorf("%w: discriminator: %v", pkg.ErrMalformedAccount, err)
	}
	for _, field := range []*uint64{
		&c.VirtualTokenReserves,
		&c.VirtualSolReserves,
		&c.RealTokenReserves,
		&c.RealSolReserves,
		&c.TokenTotalSupply,
	} {
		v, err := dec.ReadUint64(binary.LittleEndian)
		if err != nil {
			return fmt.Errorf("%w: %v", pkg.ErrMalformedAccount, err)
		}
		*field = v
	}
	complete, err := dec.ReadUint8()
	if err != nil {
		return fmt.Errorf("%w: complete flag: %v", pkg.ErrMalformedAccount, err)
	}
	c.Complete = complete != 0

	c.FeeBasisPoints = nil
	if trailer := data[BondingCurveSize:]; len(trailer) >= ExtendedFeeSize {
		fee := binary.LittleEndian.Uint64(trailer[:ExtendedFeeSize])
		c.FeeBasisPoints = &fee
	}
	return nil
}

// FeeBps returns the account's fee override or the default fee.
func (c *BondingCurve) FeeBps() uint64 {
	if c.FeeBasisPoints != nil {
		return *c.FeeBasisPoints
	}
	return DefaultFeeBasisPoints
}

// VirtualReserves returns the pricing reserves as (sol, token).
func (c *BondingCurve) VirtualReserves() pkg.Reserves {
	return pkg.NewReserves(c.VirtualSolReserves, c.VirtualTokenReserves)
}

// RealReserves returns the custodied reserves as (sol, token).
func (c *BondingCurve) RealReserves() pkg.Reserves {
	return pkg.NewReserves(c.RealSolReserves, c.RealTokenReserves)
}

// Direction of a trade against the curve.
type Direction uint8

const (
	DirectionBuy  Direction = iota // SOL in, token out
	DirectionSell                  // token in, SOL out
)

func (d Direction) String() string {
	if d == DirectionBuy {
		return "buy"
	}
	return "sell"
}

// Orient maps a (sol, token) pair to (reserveIn, reserveOut) for d.
func Orient(r pkg.Reserves, d Direction) (reserveIn, reserveOut math.Int) {
	if d == DirectionBuy {
		return r.A, r.B
	}
	return r.B, r.A
}
