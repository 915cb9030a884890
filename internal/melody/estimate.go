package melody

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/joeshaw/envdecode"
)

// Params tune the listener estimator. Every field can be overridden through
// the environment, matching the knobs the deployment exposes.
type Params struct {
	SlowBucketSeconds int     `env:"SLOW_BUCKET_S,default=30"`
	WeekdayPeak       float64 `env:"WEEKDAY_PEAK,default=3200"`
	WeekendPeak       float64 `env:"WEEKEND_PEAK,default=2000"`
	NightMin          float64 `env:"NIGHT_MIN,default=180"`
	SlowSigma         float64 `env:"SLOW_SIGMA,default=0.04"`
	SlowClip          float64 `env:"SLOW_CLIP,default=0.08"`
	FastSigma         float64 `env:"FAST_SIGMA,default=0.02"`
	FastClip          float64 `env:"FAST_CLIP,default=0.04"`
}

// DefaultParams returns the estimator defaults.
func DefaultParams() Params {
	return Params{
		SlowBucketSeconds: 30,
		WeekdayPeak:       3200,
		WeekendPeak:       2000,
		NightMin:          180,
		SlowSigma:         0.04,
		SlowClip:          0.08,
		FastSigma:         0.02,
		FastClip:          0.04,
	}
}

// ParamsFromEnv decodes estimator parameters from the environment.
func ParamsFromEnv() (Params, error) {
	var p Params
	if err := envdecode.Decode(&p); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Estimator produces deterministic listener estimates: a smooth daily demand
// curve scaled between a night floor and a weekday/weekend peak, with a slow
// jitter tied to the track identity and a fast jitter tied to a wall-clock
// bucket so live readings tick without drifting.
type Estimator struct {
	p Params
}

// NewEstimator creates an estimator with the given parameters.
func NewEstimator(p Params) *Estimator {
	if p.SlowBucketSeconds <= 0 {
		p.SlowBucketSeconds = 30
	}
	return &Estimator{p: p}
}

// Estimate returns the listener estimate for a track airing at t.
// seedKey pins the slow jitter to the track; an empty key falls back to the
// timestamp. now drives the fast jitter bucket.
func (e *Estimator) Estimate(t time.Time, seedKey string, now time.Time) int {
	p := e.p

	peak := p.WeekdayPeak
	if isWeekend(t) {
		peak = p.WeekendPeak
	}

	baseRel := dayCurve(t)
	baseAbs := p.NightMin + (peak-p.NightMin)*baseRel

	if seedKey == "" {
		seedKey = t.Format(time.RFC3339)
	}
	slowEps := clippedGauss(rngFromKey("slow::"+seedKey), p.SlowSigma, p.SlowClip)

	bucket := now.Unix() / int64(p.SlowBucketSeconds)
	fastEps := clippedGauss(rngFromKey("fast::"+strconv.FormatInt(bucket, 10)), p.FastSigma, p.FastClip)

	val := baseAbs * (1.0 + slowEps + fastEps)
	if val < 0 {
		val = 0
	}
	return int(math.Round(val))
}

// dayCurve is the relative demand at the given local time, in [0,1].
// Two humps around 09:30 and 16:00, damped between midnight and 05:00.
func dayCurve(t time.Time) float64 {
	local := t.In(Timezone())
	h := float64(local.Hour()) + float64(local.Minute())/60.0

	m1 := math.Exp(-math.Pow((h-9.5)/2.2, 2))
	m2 := math.Exp(-math.Pow((h-16.0)/2.8, 2))
	base := math.Max(m1, m2)

	if h < 5 {
		base *= 0.25 + 0.15*(h/5.0)
	}
	return math.Max(0, math.Min(1, base))
}

func isWeekend(t time.Time) bool {
	wd := t.In(Timezone()).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// rngFromKey derives a deterministic source from a string key so identical
// inputs always yield identical jitter.
func rngFromKey(key string) *rand.Rand {
	sum := sha256.Sum256([]byte(key))
	seed := int64(binary.BigEndian.Uint64(sum[:8]))
	return rand.New(rand.NewSource(seed))
}

// clippedGauss samples a zero-mean gaussian with the given sigma, clipped to
// +/- clip.
func clippedGauss(rng *rand.Rand, sigma, clip float64) float64 {
	x := rng.NormFloat64() * sigma
	return math.Max(-clip, math.Min(clip, x))
}
