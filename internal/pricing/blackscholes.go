// Package pricing implements Black-Scholes option valuation.
package pricing

import (
	"fmt"
	"math"

	"options-signals/internal/errors"
	"options-signals/internal/models"
)

// Pricer values a single option leg.
type Pricer interface {
	// Price returns the theoretical option price. S is the spot price, K the
	// strike, T the time to expiration in years, r the annual risk-free rate
	// and sigma the implied volatility.
	Price(S, K, T, r, sigma float64, typ models.OptionType) (float64, error)
}

// BlackScholes is a stateless Black-Scholes pricer.
type BlackScholes struct{}

// NewBlackScholes creates a new Black-Scholes pricer.
func NewBlackScholes() *BlackScholes {
	return &BlackScholes{}
}

// normCDF is the standard normal cumulative distribution function,
// computed through the Gauss error function.
func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// Price computes the Black-Scholes price of a European option.
//
// T <= 0 is a terminal boundary, not an error: the option is valued at its
// intrinsic value regardless of sigma. All other malformed inputs return a
// ParameterError so NaN never reaches signal arithmetic.
func (bs *BlackScholes) Price(S, K, T, r, sigma float64, typ models.OptionType) (float64, error) {
	switch {
	case math.IsNaN(S) || math.IsInf(S, 0) || S <= 0:
		return 0, errors.NewParameterError("spot", S, "must be a positive finite number")
	case math.IsNaN(K) || math.IsInf(K, 0) || K <= 0:
		return 0, errors.NewParameterError("strike", K, "must be a positive finite number")
	case math.IsNaN(T) || math.IsInf(T, 0):
		return 0, errors.NewParameterError("expiry", T, "must be finite")
	case math.IsNaN(r) || math.IsInf(r, 0):
		return 0, errors.NewParameterError("rate", r, "must be finite")
	}

	if T <= 0 {
		return intrinsicValue(S, K, typ)
	}

	if math.IsNaN(sigma) || math.IsInf(sigma, 0) || sigma <= 0 {
		return 0, errors.NewParameterError("sigma", sigma, "must be a positive finite number")
	}

	sqrtT := math.Sqrt(T)
	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT

	var price float64
	switch typ {
	case models.OptionCall:
		price = S*normCDF(d1) - K*math.Exp(-r*T)*normCDF(d2)
	case models.OptionPut:
		price = K*math.Exp(-r*T)*normCDF(-d2) - S*normCDF(-d1)
	default:
		return 0, errors.NewParameterError("option_type", 0, fmt.Sprintf("unknown option type %q", typ))
	}

	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, errors.NewParameterError("price", price, "valuation produced a non-finite result")
	}
	// Clamp tiny negative values from floating point cancellation.
	if price < 0 {
		price = 0
	}
	return price, nil
}

// intrinsicValue returns the exercise value of an expired option.
func intrinsicValue(S, K float64, typ models.OptionType) (float64, error) {
	switch typ {
	case models.OptionCall:
		return math.Max(S-K, 0), nil
	case models.OptionPut:
		return math.Max(K-S, 0), nil
	default:
		return 0, errors.NewParameterError("option_type", 0, fmt.Sprintf("unknown option type %q", typ))
	}
}
