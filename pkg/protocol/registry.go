package protocol

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"poolquote/pkg"
	"poolquote/pkg/logging"
)

// Registry maps owning programs to the protocol that quotes their pools.
// It is built once and read-only afterwards, so it is safe for concurrent use.
type Registry struct {
	protocols []pkg.Protocol
	byProgram map[solana.PublicKey]pkg.Protocol
	logger    *logrus.Logger
}

// NewRegistry fails if two protocols claim the same program.
func NewRegistry(logger *logrus.Logger, protocols ...pkg.Protocol) (*Registry, error) {
	r := &Registry{
		protocols: protocols,
		byProgram: make(map[solana.PublicKey]pkg.Protocol),
		logger:    logging.OrDiscard(logger),
	}
	for _, p := range protocols {
		for _, id := range p.ProgramIDs() {
			if prev, ok := r.byProgram[id]; ok {
				return nil, fmt.Errorf("program %s claimed by both %s and %s", id, prev.ProtocolName(), p.ProtocolName())
			}
			r.byProgram[id] = p
		}
	}
	return r, nil
}

// DefaultProtocols returns every supported protocol. vendor may be nil, in
// which case the vendor-backed protocols fail with an adapter error.
func DefaultProtocols(vendor VendorQuoter, logger *logrus.Logger) []pkg.Protocol {
	return []pkg.Protocol{
		NewPump(logger),
		NewRaydiumCPMM(logger),
		NewRaydiumCLMM(logger),
		NewOrca(logger),
		NewMeteoraDLMM(vendor, logger),
		NewMeteoraDAMM(vendor, logger),
	}
}

// NewDefaultRegistry builds a registry over DefaultProtocols.
func NewDefaultRegistry(vendor VendorQuoter, logger *logrus.Logger) (*Registry, error) {
	return NewRegistry(logger, DefaultProtocols(vendor, logger)...)
}

func (r *Registry) Protocols() []pkg.Protocol {
	return append([]pkg.Protocol(nil), r.protocols...)
}

// Resolve returns the protocol owning program, or ErrUnknownProtocol.
func (r *Registry) Resolve(program solana.PublicKey) (pkg.Protocol, error) {
	p, ok := r.byProgram[program]
	if !ok {
		return nil, fmt.Errorf("%w: owner %s", pkg.ErrUnknownProtocol, program)
	}
	return p, nil
}

// Quote reads the pool account once, picks the protocol from its owner and
// delegates. The selected protocol sees the same account snapshot.
func (r *Registry) Quote(ctx context.Context, conn pkg.Connection, req pkg.QuoteRequest) (*pkg.QuoteResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	acc, err := fetchPool(ctx, conn, req.PoolAddress)
	if err != nil {
		return nil, err
	}
	p, err := r.Resolve(acc.Owner)
	if err != nil {
		return nil, err
	}
	r.logger.WithFields(logrus.Fields{
		"pool":     req.PoolAddress.String(),
		"protocol": p.ProtocolName(),
	}).Debug("detected protocol")

	return p.Quote(ctx, &snapshotConn{Connection: conn, pool: acc}, req)
}
