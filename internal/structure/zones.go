package structure

import (
	"sort"

	"trading-advisor/internal/market"
)

const (
	zoneBodyMultiple = 2.0 // body vs mean body of the preceding candles
	zoneLookback     = 5   // candles averaged on each side
	maxZonesPerSide  = 5
)

// DetectZones finds supply and demand zones: candles whose body is at least
// twice the mean body of the preceding five candles mark a zone bounded by
// their high/low. Zones are ranked by the ratio of body size to the following
// five-candle average body ("strength") and only the strongest five per side
// are retained.
func DetectZones(candles []market.Candle) (demand []Zone, supply []Zone) {
	if len(candles) < zoneLookback+1 {
		return nil, nil
	}

	for i := zoneLookback; i < len(candles); i++ {
		c := candles[i]
		body := c.Body()

		precedingAvg := averageBody(candles[i-zoneLookback : i])
		if precedingAvg <= 0 || body < precedingAvg*zoneBodyMultiple {
			continue
		}

		followingEnd := i + 1 + zoneLookback
		if followingEnd > len(candles) {
			followingEnd = len(candles)
		}
		followingAvg := averageBody(candles[i+1 : followingEnd])
		if followingAvg <= 0 {
			followingAvg = precedingAvg
		}

		zone := Zone{
			High:        c.High,
			Low:         c.Low,
			Strength:    body / followingAvg,
			CandleIndex: i,
		}

		if c.IsBullish() {
			demand = append(demand, zone)
		} else if c.IsBearish() {
			supply = append(supply, zone)
		}
	}

	demand = topZones(demand)
	supply = topZones(supply)
	return demand, supply
}

func averageBody(candles []market.Candle) float64 {
	if len(candles) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range candles {
		sum += c.Body()
	}
	return sum / float64(len(candles))
}

func topZones(zones []Zone) []Zone {
	sort.Slice(zones, func(i, j int) bool {
		return zones[i].Strength > zones[j].Strength
	})
	if len(zones) > maxZonesPerSide {
		zones = zones[:maxZonesPerSide]
	}
	return zones
}
