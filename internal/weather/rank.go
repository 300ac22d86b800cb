package weather

import "sort"

// DesirabilityKey is the composite sort key used to pick the best period of
// a day window. Lower compares as more desirable.
type DesirabilityKey struct {
	PrecipChance   int // floored at MinChanceRain so dry hours tie on rain
	TempDiscomfort int // °F distance from 70
	WindSpeed      int
}

// Less orders keys lexicographically.
func (k DesirabilityKey) Less(o DesirabilityKey) bool {
	if k.PrecipChance != o.PrecipChance {
		return k.PrecipChance < o.PrecipChance
	}
	if k.TempDiscomfort != o.TempDiscomfort {
		return k.TempDiscomfort < o.TempDiscomfort
	}
	return k.WindSpeed < o.WindSpeed
}

// Desirability derives the sort key for a period.
func Desirability(p Period) DesirabilityKey {
	pop := p.PrecipChance()
	if pop < MinChanceRain {
		pop = MinChanceRain
	}
	discomfort := 70 - p.Temperature
	if discomfort < 0 {
		discomfort = -discomfort
	}
	return DesirabilityKey{
		PrecipChance:   pop,
		TempDiscomfort: discomfort,
		WindSpeed:      p.WindSpeedMPH(),
	}
}

// BestPeriod returns the most desirable period of a non-empty day window.
// The sort is stable, so ties keep input order.
func BestPeriod(day []Period) Period {
	ranked := make([]Period, len(day))
	copy(ranked, day)
	sort.SliceStable(ranked, func(i, j int) bool {
		return Desirability(ranked[i]).Less(Desirability(ranked[j]))
	})
	return ranked[0]
}
