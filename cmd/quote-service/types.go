package main

import (
	"poolquote/pkg"
)

// QuoteParams is one quote request in text form. The same fields are read
// from the query string of GET /v1/quote and from each item of POST /v1/quotes.
type QuoteParams struct {
	Pool      string `json:"pool" query:"pool"`
	InputMint string `json:"inputMint" query:"inputMint"`
	Amount    string `json:"amount" query:"amount"`
	Slippage  string `json:"slippage" query:"slippage"`
	ReserveA  string `json:"reserveA,omitempty" query:"reserveA"`
	ReserveB  string `json:"reserveB,omitempty" query:"reserveB"`
}

func (p QuoteParams) request() (pkg.QuoteRequest, error) {
	slippage := p.Slippage
	if slippage == "" {
		slippage = defaultSlippage
	}
	return pkg.ParseQuoteRequest(p.Pool, p.InputMint, p.Amount, slippage, p.ReserveA, p.ReserveB)
}

type BatchRequest struct {
	Quotes []QuoteParams `json:"quotes"`
}

// BatchItem carries either a quote or the error for one batch entry.
type BatchItem struct {
	Pool      string             `json:"pool"`
	Quote     *pkg.QuoteResponse `json:"quote,omitempty"`
	Error     *ErrorResponse     `json:"error,omitempty"`
	ElapsedMs int64              `json:"elapsedMs"`
}

type BatchResponse struct {
	Results []BatchItem `json:"results"`
}

// ErrorResponse is the body of every failed response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Code  int    `json:"code"`
}

type HealthResponse struct {
	OK        bool               `json:"ok"`
	Protocols []pkg.ProtocolName `json:"protocols"`
	Uptime    string             `json:"uptime"`
}
