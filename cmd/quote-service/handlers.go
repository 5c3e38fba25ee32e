package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"poolquote/pkg"
	"poolquote/pkg/router"
)

const defaultSlippage = "1"

// maxBatchSize caps the number of quotes in one POST /v1/quotes.
const maxBatchSize = 50

// Handlers holds everything the endpoints need. Every quote reads fresh
// account state through Conn; nothing is cached between requests.
type Handlers struct {
	Quoter    router.Quoter
	Batch     *router.BatchQuoter
	Conn      pkg.Connection
	Protocols []pkg.ProtocolName
	Timeout   time.Duration
	Logger    *logrus.Logger
	Started   time.Time
}

func (h *Handlers) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	d := h.Timeout
	if d <= 0 {
		d = 15 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		OK:        true,
		Protocols: h.Protocols,
		Uptime:    time.Since(h.Started).Round(time.Second).String(),
	})
}

// Quote handles GET /v1/quote?pool=&inputMint=&amount=&slippage=&reserveA=&reserveB=
func (h *Handlers) Quote(c echo.Context) error {
	var params QuoteParams
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &params); err != nil {
		return h.fail(c, fmt.Errorf("%w: %v", pkg.ErrInvalidRequest, err))
	}
	req, err := params.request()
	if err != nil {
		return h.fail(c, err)
	}

	ctx, cancel := h.withTimeout(c.Request().Context())
	defer cancel()

	start := time.Now()
	res, err := h.Quoter.Quote(ctx, h.Conn, req)
	if err != nil {
		return h.fail(c, err)
	}
	h.Logger.WithFields(logrus.Fields{
		"pool":     req.PoolAddress.String(),
		"protocol": res.Protocol,
		"elapsed":  time.Since(start).String(),
	}).Debug("quoted")
	return c.JSON(http.StatusOK, res)
}

// Quotes handles POST /v1/quotes. Entries are quoted independently; a failed
// entry carries its own error and does not fail the batch.
func (h *Handlers) Quotes(c echo.Context) error {
	var body BatchRequest
	if err := c.Bind(&body); err != nil {
		return h.fail(c, fmt.Errorf("%w: invalid json", pkg.ErrInvalidRequest))
	}
	if len(body.Quotes) == 0 {
		return h.fail(c, fmt.Errorf("%w: quotes must not be empty", pkg.ErrInvalidRequest))
	}
	if len(body.Quotes) > maxBatchSize {
		return h.fail(c, fmt.Errorf("%w: at most %d quotes per batch", pkg.ErrInvalidRequest, maxBatchSize))
	}

	items := make([]BatchItem, len(body.Quotes))
	reqs := make([]pkg.QuoteRequest, 0, len(body.Quotes))
	slots := make([]int, 0, len(body.Quotes))
	for i, p := range body.Quotes {
		items[i].Pool = p.Pool
		req, err := p.request()
		if err != nil {
			items[i].Error = errorBody(err)
			continue
		}
		reqs = append(reqs, req)
		slots = append(slots, i)
	}

	ctx, cancel := h.withTimeout(c.Request().Context())
	defer cancel()

	for j, r := range h.Batch.QuoteAll(ctx, h.Conn, reqs) {
		item := &items[slots[j]]
		item.ElapsedMs = r.Elapsed.Milliseconds()
		if r.Err != nil {
			item.Error = errorBody(r.Err)
			continue
		}
		item.Quote = r.Response
	}
	return c.JSON(http.StatusOK, BatchResponse{Results: items})
}

func (h *Handlers) fail(c echo.Context, err error) error {
	body := errorBody(err)
	if body.Code >= http.StatusInternalServerError {
		h.Logger.WithError(err).Warn("quote failed")
	}
	return c.JSON(body.Code, body)
}

// statusFor maps the quote error taxonomy onto HTTP statuses.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, pkg.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, pkg.ErrInputMintMismatch):
		return http.StatusBadRequest, "input_mint_mismatch"
	case errors.Is(err, pkg.ErrPoolNotFound):
		return http.StatusNotFound, "pool_not_found"
	case errors.Is(err, pkg.ErrUnknownProtocol):
		return http.StatusUnprocessableEntity, "unknown_protocol"
	case errors.Is(err, pkg.ErrMalformedAccount):
		return http.StatusUnprocessableEntity, "malformed_account"
	case errors.Is(err, pkg.ErrInsufficientLiquidity):
		return http.StatusUnprocessableEntity, "insufficient_liquidity"
	case errors.Is(err, pkg.ErrAdapterFailure):
		return http.StatusBadGateway, "adapter_failure"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func errorBody(err error) *ErrorResponse {
	code, kind := statusFor(err)
	return &ErrorResponse{Error: err.Error(), Kind: kind, Code: code}
}
