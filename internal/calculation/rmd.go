package calculation

import "github.com/shopspring/decimal"

// rmdStartAge is the uniform-lifetime-table distribution start age,
// per spec.md §4.3.
const rmdStartAge = 73

// uniformLifetimeDivisors is the IRS Uniform Lifetime Table, keyed by age.
// Ages above the table's maximum fall back to terminalDivisor.
var uniformLifetimeDivisors = map[int]decimal.Decimal{
	73:  decimal.NewFromFloat(26.5),
	74:  decimal.NewFromFloat(25.5),
	75:  decimal.NewFromFloat(24.6),
	76:  decimal.NewFromFloat(23.7),
	77:  decimal.NewFromFloat(22.9),
	78:  decimal.NewFromFloat(22.0),
	79:  decimal.NewFromFloat(21.1),
	80:  decimal.NewFromFloat(20.2),
	81:  decimal.NewFromFloat(19.4),
	82:  decimal.NewFromFloat(18.5),
	83:  decimal.NewFromFloat(17.7),
	84:  decimal.NewFromFloat(16.8),
	85:  decimal.NewFromFloat(16.0),
	86:  decimal.NewFromFloat(15.2),
	87:  decimal.NewFromFloat(14.4),
	88:  decimal.NewFromFloat(13.7),
	89:  decimal.NewFromFloat(12.9),
	90:  decimal.NewFromFloat(12.2),
	91:  decimal.NewFromFloat(11.5),
	92:  decimal.NewFromFloat(10.8),
	93:  decimal.NewFromFloat(10.1),
	94:  decimal.NewFromFloat(9.5),
	95:  decimal.NewFromFloat(8.9),
	96:  decimal.NewFromFloat(8.4),
	97:  decimal.NewFromFloat(7.8),
	98:  decimal.NewFromFloat(7.3),
	99:  decimal.NewFromFloat(6.8),
	100: decimal.NewFromFloat(6.4),
}

// terminalDivisor covers ages past the table's maximum entry.
var terminalDivisor = decimal.NewFromFloat(6.0)

// UniformLifetimeDivisor returns the divisor for age, or the terminal
// divisor if age exceeds the table.
func UniformLifetimeDivisor(age int) decimal.Decimal {
	if d, ok := uniformLifetimeDivisors[age]; ok {
		return d
	}
	if age > 100 {
		return terminalDivisor
	}
	return decimal.Zero
}

// RequiredDistribution returns the required minimum distribution for a
// traditional account of balance b at age, per spec.md §4.3: zero below
// rmdStartAge, otherwise balance/divisor(age) capped at the balance.
func RequiredDistribution(balance decimal.Decimal, age int) decimal.Decimal {
	if age < rmdStartAge || balance.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	divisor := UniformLifetimeDivisor(age)
	if divisor.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	rmd := balance.Div(divisor)
	if rmd.GreaterThan(balance) {
		return balance
	}
	return rmd
}
