package weather

// Blocks groups an ordered period sequence into maximal contiguous runs of
// interesting periods under the given mode. Rain runs additionally require
// every member to share the first period's shortForecast text, so a rain
// block never spans a forecast-text change. Periods the mode rejects never
// appear in any block.
func Blocks(periods []Period, mode Mode) [][]Period {
	var blocks [][]Period
	var current []Period

	for _, p := range periods {
		if mode.Matches(p) {
			if len(current) > 0 && (mode != ModeRain || current[0].ShortForecast == p.ShortForecast) {
				current = append(current, p)
				continue
			}
			if len(current) > 0 {
				blocks = append(blocks, current)
			}
			current = []Period{p}
		} else if len(current) > 0 {
			blocks = append(blocks, current)
			current = nil
		}
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

// Days groups daytime periods by the calendar date of their start time.
// Input order is assumed non-decreasing; a date change closes the previous
// window. Windows are never empty: input with no daytime periods yields
// nothing.
func Days(periods []Period) [][]Period {
	var days [][]Period
	var current []Period
	currentDate := ""

	for _, p := range periods {
		if !p.IsDaytime {
			continue
		}
		date := p.StartDate()
		if date != currentDate {
			if len(current) > 0 {
				days = append(days, current)
			}
			current = []Period{p}
			currentDate = date
		} else {
			current = append(current, p)
		}
	}
	if len(current) > 0 {
		days = append(days, current)
	}
	return days
}
