package router

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"poolquote/pkg"
	"poolquote/pkg/logging"
)

// DefaultMaxConcurrency bounds in-flight quotes in a batch.
const DefaultMaxConcurrency = 8

// ErrQuotePanicked marks a batch entry whose strategy panicked.
var ErrQuotePanicked = errors.New("quote panicked")

// Quoter is satisfied by *protocol.Registry.
type Quoter interface {
	Quote(ctx context.Context, conn pkg.Connection, req pkg.QuoteRequest) (*pkg.QuoteResponse, error)
}

// Result is the outcome of one request in a batch.
type Result struct {
	Request  pkg.QuoteRequest
	Response *pkg.QuoteResponse
	Err      error
	Elapsed  time.Duration
}

// BatchQuoter fans independent quote requests out concurrently. It never
// compares results across pools; each request stands alone.
type BatchQuoter struct {
	Quoter         Quoter
	MaxConcurrency int
	logger         *logrus.Logger
}

func NewBatchQuoter(quoter Quoter, maxConcurrency int, logger *logrus.Logger) *BatchQuoter {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	return &BatchQuoter{
		Quoter:         quoter,
		MaxConcurrency: maxConcurrency,
		logger:         logging.OrDiscard(logger),
	}
}

// QuoteAll returns one Result per request, in request order. A failed quote
// does not cancel the others.
func (b *BatchQuoter) QuoteAll(ctx context.Context, conn pkg.Connection, reqs []pkg.QuoteRequest) []Result {
	results := make([]Result, len(reqs))

	var g errgroup.Group
	g.SetLimit(b.MaxConcurrency)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			start := time.Now()
			res, err := b.quoteOne(ctx, conn, req)
			results[i] = Result{Request: req, Response: res, Err: err, Elapsed: time.Since(start)}
			if err != nil {
				b.logger.WithError(err).WithField("pool", req.PoolAddress.String()).Debug("quote failed")
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// quoteOne turns a panic in a strategy into that request's error. Batch
// quotes run off the caller's goroutine, where nothing else would recover it.
func (b *BatchQuoter) quoteOne(ctx context.Context, conn pkg.Connection, req pkg.QuoteRequest) (res *pkg.QuoteResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.WithField("pool", req.PoolAddress.String()).
				WithField("panic", fmt.Sprint(r)).
				Error("quote panicked")
			res, err = nil, fmt.Errorf("%w: %v", ErrQuotePanicked, r)
		}
	}()
	return b.Quoter.Quote(ctx, conn, req)
}
