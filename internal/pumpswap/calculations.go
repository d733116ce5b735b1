package pumpswap

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const bpsDenominator = 10_000

// QuoteBuy returns the quote amount a buyer must pay for baseOut tokens
// against the current reserves, fees included. Constant product with the
// fee charged on the quote side, rounded up so the quote never
// understates the cost.
func QuoteBuy(baseReserves, quoteReserves, baseOut, lpFeeBps, protocolFeeBps uint64) (uint64, error) {
	if baseOut == 0 {
		return 0, fmt.Errorf("base amount must be greater than zero")
	}
	if baseOut >= baseReserves {
		return 0, fmt.Errorf("base amount %d exceeds pool reserves %d", baseOut, baseReserves)
	}

	x := decimal.NewFromUint64(baseReserves)
	y := decimal.NewFromUint64(quoteReserves)
	out := decimal.NewFromUint64(baseOut)

	// quoteIn = y * out / (x - out), before fees
	quoteIn := y.Mul(out).Div(x.Sub(out))

	feeBps := decimal.NewFromUint64(lpFeeBps + protocolFeeBps)
	withFees := quoteIn.Mul(decimal.NewFromInt(bpsDenominator).Add(feeBps)).
		Div(decimal.NewFromInt(bpsDenominator))

	return uint64(withFees.Ceil().IntPart()), nil
}

// QuoteSell returns the quote amount a seller receives for baseIn tokens,
// fees deducted, rounded down.
func QuoteSell(baseReserves, quoteReserves, baseIn, lpFeeBps, protocolFeeBps uint64) (uint64, error) {
	if baseIn == 0 {
		return 0, fmt.Errorf("base amount must be greater than zero")
	}

	x := decimal.NewFromUint64(baseReserves)
	y := decimal.NewFromUint64(quoteReserves)
	in := decimal.NewFromUint64(baseIn)

	// quoteOut = y * in / (x + in), before fees
	quoteOut := y.Mul(in).Div(x.Add(in))

	feeBps := decimal.NewFromUint64(lpFeeBps + protocolFeeBps)
	afterFees := quoteOut.Mul(decimal.NewFromInt(bpsDenominator).Sub(feeBps)).
		Div(decimal.NewFromInt(bpsDenominator))

	return uint64(afterFees.Floor().IntPart()), nil
}

// applySlippageUp widens an amount by slippageBps (ceiling guard for buy).
func applySlippageUp(amount, slippageBps uint64) uint64 {
	return amount * (bpsDenominator + slippageBps) / bpsDenominator
}

// applySlippageDown narrows an amount by slippageBps (floor guard for
// sell). Capped at 100% so the unsigned subtraction cannot wrap.
func applySlippageDown(amount, slippageBps uint64) uint64 {
	if slippageBps >= bpsDenominator {
		return 0
	}
	return amount * (bpsDenominator - slippageBps) / bpsDenominator
}
