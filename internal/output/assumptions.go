package output

// DefaultAssumptions lists key modeling assumptions rendered when a report carries none.
var DefaultAssumptions = []string{
	"Investment return is compounded monthly at the effective monthly rate",
	"Inflation: 2.0% annually unless inflation adjustment is enabled",
	"Contributions are made at the end of each month until retirement",
	"Withdrawals start at retirement and grow with inflation",
}

func assumptionsFor(a []string) []string {
	if len(a) == 0 {
		return DefaultAssumptions
	}
	return a
}
