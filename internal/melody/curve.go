package melody

import (
	"crypto/md5"
	"encoding/binary"
	"math"
	"math/rand"
	"sync"
	"time"
)

// Backfill curve: when the archive holds tracks scraped before listener
// estimation existed, their counts are reconstructed from a simulated daily
// profile rather than the live estimator. Weekdays peak around 08:00 and
// 17:30 near 3000 listeners, weekends mid-afternoon near 2000, nights bottom
// out around 02:30. A deterministic jitter of roughly +/-8% keeps the series
// from looking synthetic.

const (
	curveNightMin    = 260.0
	curveFloor       = 200.0
	curveWeekdayPeak = 3000.0
	curveWeekendPeak = 2000.0
)

// EstimateFromCurve reconstructs a listener count for a track that aired at
// dt, keyed so re-runs produce identical values.
func EstimateFromCurve(dt time.Time, key string) int {
	base := expectedCount(dt)
	val := base * curveJitter(key, 0.07, 0.12)

	peak := curveWeekdayPeak
	if isWeekend(dt) {
		peak = curveWeekendPeak
	}
	val = math.Max(curveFloor, math.Min(peak, val))
	return int(math.Round(val))
}

func expectedCount(dt time.Time) float64 {
	local := dt.In(Timezone())
	h := float64(local.Hour()) + float64(local.Minute())/60.0
	weekend := isWeekend(dt)

	s01 := shape01(h, weekend)
	peak := curveWeekdayPeak
	if weekend {
		peak = curveWeekendPeak
	}
	return curveNightMin + s01*(peak-curveNightMin)
}

func shapeWeekday(h float64) float64 {
	return gauss(h, 7.8, 1.2, 0.9) +
		gauss(h, 12.5, 1.3, 0.45) +
		gauss(h, 17.3, 1.3, 0.85) +
		gauss(h, 20.5, 1.8, 0.35)
}

func shapeWeekend(h float64) float64 {
	return gauss(h, 10.0, 1.7, 0.35) +
		gauss(h, 14.0, 2.0, 0.95) +
		gauss(h, 19.5, 2.0, 0.55)
}

// nightMultiplier damps the shape toward a valley around 02:30, returning a
// multiplier in [0.75, 1.0].
func nightMultiplier(h float64) float64 {
	valley := math.Exp(-0.5 * math.Pow((h-2.5)/2.0, 2))
	return 1.0 - 0.25*valley
}

func gauss(x, mu, sigma, amp float64) float64 {
	return amp * math.Exp(-0.5*math.Pow((x-mu)/sigma, 2))
}

// shape01 evaluates the day shape normalized to [0,1] over a 5-minute grid.
// The grids are precomputed once per weekday/weekend variant.
var shapeOnce sync.Once
var shapeGrids [2][]float64

func shape01(h float64, weekend bool) float64 {
	shapeOnce.Do(func() {
		for variant := 0; variant < 2; variant++ {
			grid := make([]float64, 24*12+1)
			for i := range grid {
				x := float64(i) / 12.0
				if variant == 1 {
					grid[i] = shapeWeekend(x) * nightMultiplier(x)
				} else {
					grid[i] = shapeWeekday(x) * nightMultiplier(x)
				}
			}
			shapeGrids[variant] = normalize(grid)
		}
	})

	variant := 0
	if weekend {
		variant = 1
	}
	grid := shapeGrids[variant]

	idx := int(math.Round(h * 12.0))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(grid) {
		idx = len(grid) - 1
	}
	return grid[idx]
}

func normalize(arr []float64) []float64 {
	min, max := arr[0], arr[0]
	for _, v := range arr {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	out := make([]float64, len(arr))
	if max-min <= 0 {
		return out
	}
	for i, v := range arr {
		out[i] = (v - min) / (max - min)
	}
	return out
}

// curveJitter returns a multiplier 1+eps with eps drawn from a clipped
// zero-mean gaussian seeded by key. Box-Muller over the seeded source keeps
// the value stable across runs.
func curveJitter(key string, sigma, clip float64) float64 {
	sum := md5.Sum([]byte(key))
	seed := int64(binary.BigEndian.Uint64(sum[:8]))
	rng := rand.New(rand.NewSource(seed))

	u1 := math.Max(rng.Float64(), 1e-9)
	u2 := math.Max(rng.Float64(), 1e-9)
	z := math.Sqrt(-2.0*math.Log(u1)) * math.Cos(2.0*math.Pi*u2)

	eps := math.Max(-clip, math.Min(clip, sigma*z))
	return 1.0 + eps
}
