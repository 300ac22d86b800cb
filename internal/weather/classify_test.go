package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func reading(temp int, dewpointC float64, pop float64) Period {
	return Period{
		Temperature:                temp,
		Dewpoint:                   pct(dewpointC),
		ProbabilityOfPrecipitation: pct(pop),
	}
}

func TestModeRain(t *testing.T) {
	assert.True(t, ModeRain.Matches(reading(60, 10, 34)))
	assert.False(t, ModeRain.Matches(reading(60, 10, 33)), "threshold is exclusive")

	// Null probability counts as 0.
	assert.False(t, ModeRain.Matches(Period{Temperature: 60}))
}

func TestModeWarm(t *testing.T) {
	assert.True(t, ModeWarm.Matches(reading(68, 10, 0)))
	assert.False(t, ModeWarm.Matches(reading(67, 10, 0)))
}

func TestModeCool(t *testing.T) {
	assert.True(t, ModeCool.Matches(reading(70, 10, 0)))
	assert.False(t, ModeCool.Matches(reading(73, 10, 0)), "temperature bound fails")
	assert.False(t, ModeCool.Matches(reading(70, 16, 0)), "dewpoint bound fails")
}

func TestModeComfortable(t *testing.T) {
	assert.True(t, ModeComfortable.Matches(reading(68, 10, 0)))
	assert.True(t, ModeComfortable.Matches(reading(72, 10, 0)))
	assert.False(t, ModeComfortable.Matches(reading(67, 10, 0)))
	assert.False(t, ModeComfortable.Matches(reading(73, 10, 0)))
}

func TestModesOverlapByDesign(t *testing.T) {
	p := reading(70, 10, 0)
	assert.True(t, ModeCool.Matches(p))
	assert.True(t, ModeComfortable.Matches(p))
	assert.True(t, ModeWarm.Matches(p))
}
