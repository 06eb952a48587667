package calculation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulationSchedule(t *testing.T) {
	in := baselineInput()
	points := AccumulationSchedule(in)
	require.Len(t, points, 35)
	assert.Equal(t, 1, points[0].Year)
	assertMoney(t, "1389535.89", points[34].Balance, "last point is the projected total")

	for i := 1; i < len(points); i++ {
		assert.True(t, points[i].Balance.GreaterThan(points[i-1].Balance), "year %d", points[i].Year)
	}
}

func TestAccumulationSchedulePartialYear(t *testing.T) {
	in := baselineInput()
	in.RetirementAge = dec(31.5)
	in.AnnualReturnRate = dec(0)

	points := AccumulationSchedule(in)
	require.Len(t, points, 2)
	assertMoney(t, "56000.00", points[0].Balance)
	assertMoney(t, "59000.00", points[1].Balance)
}

func TestAccumulationScheduleRetiringNow(t *testing.T) {
	in := baselineInput()
	in.RetirementAge = in.CurrentAge
	assert.Empty(t, AccumulationSchedule(in))
}
