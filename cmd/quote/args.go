package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"poolquote/pkg"
)

const (
	defaultPool      = "Bd3snQsjrRmrKfEkoQk6wcm5QkZ9Hy8UCQfecZYFxd6i"
	defaultInputMint = "So11111111111111111111111111111111111111112"
	defaultAmount    = "10000000"
	defaultSlippage  = "1"
)

// quoteArgs are the raw positional inputs: pool [inputMint] [amount] [slippage] [reserveA] [reserveB].
type quoteArgs struct {
	Pool      string
	InputMint string
	Amount    string
	Slippage  string
	ReserveA  string
	ReserveB  string
}

func argsFromPositional(args []string) quoteArgs {
	get := func(i int, def string) string {
		if i < len(args) && strings.TrimSpace(args[i]) != "" {
			return strings.TrimSpace(args[i])
		}
		return def
	}
	return quoteArgs{
		Pool:      get(0, ""),
		InputMint: get(1, defaultInputMint),
		Amount:    get(2, defaultAmount),
		Slippage:  get(3, defaultSlippage),
		ReserveA:  get(4, ""),
		ReserveB:  get(5, ""),
	}
}

// argsFromPrompt asks for every input on out, reading answers from in.
// An empty answer takes the default shown in brackets.
func argsFromPrompt(in io.Reader, out io.Writer) (quoteArgs, error) {
	reader := bufio.NewReader(in)
	ask := func(query, def string) (string, error) {
		fmt.Fprintf(out, "%s [%s]: ", query, def)
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		if answer := strings.TrimSpace(line); answer != "" {
			return answer, nil
		}
		return def, nil
	}

	var a quoteArgs
	var err error
	if a.Pool, err = ask("Enter Pool Address", defaultPool); err != nil {
		return a, err
	}
	if a.InputMint, err = ask("Enter Input Mint Address", defaultInputMint); err != nil {
		return a, err
	}
	if a.Amount, err = ask("Enter Input Amount", defaultAmount); err != nil {
		return a, err
	}
	if a.Slippage, err = ask("Enter Slippage %", defaultSlippage); err != nil {
		return a, err
	}
	override, err := ask("Override Reserves? (y/N)", "n")
	if err != nil {
		return a, err
	}
	if strings.EqualFold(override, "y") {
		if a.ReserveA, err = ask("Enter Reserve A (SOL / TokenA)", "0"); err != nil {
			return a, err
		}
		if a.ReserveB, err = ask("Enter Reserve B (Token / TokenB)", "0"); err != nil {
			return a, err
		}
	}
	return a, nil
}

func (a quoteArgs) request() (pkg.QuoteRequest, error) {
	return pkg.ParseQuoteRequest(a.Pool, a.InputMint, a.Amount, a.Slippage, a.ReserveA, a.ReserveB)
}
