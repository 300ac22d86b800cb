package weather

// Interest thresholds. Temperatures are °F, dewpoint is °C, precipitation
// probability is a percentage.
const (
	MinChanceRain    = 33
	MinWarmTemp      = 68
	MaxCoolTemp      = 72
	MaxCoolDewpointC = 15.5556
)

// Mode selects which interest predicate a calendar build applies. Builders
// and the block aggregator switch on the tag; exactly one mode is active
// per build.
type Mode int

const (
	ModeRain Mode = iota
	ModeWarm
	ModeCool
	ModeComfortable
)

func (m Mode) String() string {
	switch m {
	case ModeRain:
		return "rain"
	case ModeWarm:
		return "warm"
	case ModeCool:
		return "cool"
	case ModeComfortable:
		return "comfortable"
	}
	return "unknown"
}

// Matches reports whether the period is of interest under this mode.
// The cool/comfortable/warm ranges overlap on purpose; a 70°F hour with a
// low dewpoint is both cool and comfortable.
func (m Mode) Matches(p Period) bool {
	switch m {
	case ModeRain:
		return p.PrecipChance() > MinChanceRain
	case ModeWarm:
		return p.Temperature >= MinWarmTemp
	case ModeCool:
		return p.Temperature <= MaxCoolTemp && p.DewpointC() <= MaxCoolDewpointC
	case ModeComfortable:
		return p.Temperature >= MinWarmTemp && p.Temperature <= MaxCoolTemp
	}
	return false
}

// Label returns the fixed event name for the mode. Rain events are named
// after the block's shared shortForecast text instead.
func (m Mode) Label() string {
	switch m {
	case ModeWarm:
		return "Open 🪟 for ♨️"
	case ModeCool:
		return "Open 🪟 for 🆒"
	case ModeComfortable:
		return "Open 🪟"
	}
	return ""
}
