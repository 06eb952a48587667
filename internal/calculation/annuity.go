package calculation

import "math"

// growthFactor returns (1 + rate)^periods.
func growthFactor(rate float64, periods int) float64 {
	if rate == 0 || periods == 0 {
		return 1
	}
	return math.Pow(1+rate, float64(periods))
}

// growthFactorMinusOne returns (1 + rate)^periods - 1 without cancellation for rates near zero.
func growthFactorMinusOne(rate float64, periods int) float64 {
	return math.Expm1(float64(periods) * math.Log1p(rate))
}

// FutureValueLumpSum grows a single amount for the given number of periods.
func FutureValueLumpSum(presentValue, rate float64, periods int) float64 {
	return presentValue * growthFactor(rate, periods)
}

// FutureValueAnnuity is the future value of an ordinary annuity: payment deposited at the end of
// each of periods periods. With a zero rate the value is payment * periods exactly.
func FutureValueAnnuity(payment, rate float64, periods int) float64 {
	if periods <= 0 {
		return 0
	}
	if rate == 0 {
		return payment * float64(periods)
	}
	return payment * growthFactorMinusOne(rate, periods) / rate
}

// PresentValueGrowingAnnuity is the value today of periods payments, the first paid now and each
// later one grown by growth and discounted by rate:
//
//	sum_{m=0}^{periods-1} payment * (1+growth)^m / (1+rate)^m
//
// evaluated as a geometric series with ratio 1 + d, d = (growth - rate) / (1 + rate).
func PresentValueGrowingAnnuity(payment, rate, growth float64, periods int) float64 {
	if periods <= 0 {
		return 0
	}
	d := (growth - rate) / (1 + rate)
	if d == 0 {
		return payment * float64(periods)
	}
	return payment * growthFactorMinusOne(d, periods) / d
}

// SinkingFundPayment is the level end-of-period payment that accumulates to futureValue after
// periods periods.
func SinkingFundPayment(futureValue, rate float64, periods int) float64 {
	if periods <= 0 {
		return 0
	}
	if rate == 0 {
		return futureValue / float64(periods)
	}
	return futureValue * rate / growthFactorMinusOne(rate, periods)
}
