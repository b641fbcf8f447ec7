package workload

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pipeline-sim/pipeline-sim/sim"
)

// Sampler is a sim.DurationSampler that also knows its theoretical mean.
// The mean is used for validation and for the offered-load summary printed by the CLI.
type Sampler interface {
	sim.DurationSampler
	Mean() float64
}

// ConstantSampler always returns the same duration.
type ConstantSampler struct {
	value float64
}

func (s *ConstantSampler) Sample(_ *rand.Rand) sim.Duration {
	return sim.NewDuration(s.value)
}

func (s *ConstantSampler) Mean() float64 { return s.value }

// ExponentialSampler produces exponentially-distributed durations.
type ExponentialSampler struct {
	mean float64
}

func (s *ExponentialSampler) Sample(rng *rand.Rand) sim.Duration {
	return sim.NewDuration(rng.ExpFloat64() * s.mean)
}

func (s *ExponentialSampler) Mean() float64 { return s.mean }

// UniformSampler draws durations uniformly from [min, max).
type UniformSampler struct {
	min, max float64
}

func (s *UniformSampler) Sample(rng *rand.Rand) sim.Duration {
	if s.min == s.max {
		return sim.NewDuration(s.min)
	}
	return clampDuration(distuv.Uniform{Min: s.min, Max: s.max, Src: rng}.Rand())
}

func (s *UniformSampler) Mean() float64 { return (s.min + s.max) / 2 }

// GammaSampler draws Gamma-distributed durations parameterized by mean and CV.
// shape = 1/CV², rate = 1/(mean·CV²).
type GammaSampler struct {
	shape, rate float64
}

func (s *GammaSampler) Sample(rng *rand.Rand) sim.Duration {
	return clampDuration(distuv.Gamma{Alpha: s.shape, Beta: s.rate, Src: rng}.Rand())
}

func (s *GammaSampler) Mean() float64 { return s.shape / s.rate }

// WeibullSampler draws Weibull-distributed durations parameterized by mean and CV.
type WeibullSampler struct {
	shape float64 // Weibull k parameter
	scale float64 // Weibull λ parameter
}

func (s *WeibullSampler) Sample(rng *rand.Rand) sim.Duration {
	return clampDuration(distuv.Weibull{K: s.shape, Lambda: s.scale, Src: rng}.Rand())
}

func (s *WeibullSampler) Mean() float64 {
	return s.scale * math.Gamma(1.0+1.0/s.shape)
}

// LogNormalSampler draws durations as exp(mu + sigma·Z).
type LogNormalSampler struct {
	mu, sigma float64
}

func (s *LogNormalSampler) Sample(rng *rand.Rand) sim.Duration {
	return clampDuration(distuv.LogNormal{Mu: s.mu, Sigma: s.sigma, Src: rng}.Rand())
}

func (s *LogNormalSampler) Mean() float64 {
	return math.Exp(s.mu + s.sigma*s.sigma/2)
}

// clampDuration turns a raw sample into a Duration.
// Negative rounding noise and NaN collapse to zero.
func clampDuration(v float64) sim.Duration {
	if math.IsNaN(v) || v < 0 {
		return sim.Zero
	}
	return sim.NewDuration(v)
}

// distParams lists the required parameters of every supported distribution type.
var distParams = map[string][]string{
	"constant":    {"value"},
	"exponential": {"mean"},
	"uniform":     {"min", "max"},
	"gamma":       {"mean", "cv"},
	"weibull":     {"mean", "cv"},
	"lognormal":   {"mu", "sigma"},
}

// IsValidDistType reports whether name is a supported distribution type.
func IsValidDistType(name string) bool {
	_, ok := distParams[name]
	return ok
}

// ValidDistTypeNames returns the supported distribution types, sorted.
func ValidDistTypeNames() []string {
	names := make([]string, 0, len(distParams))
	for name := range distParams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
	}
	return nil
}

// NewDurationSampler creates a Sampler from a DistSpec.
// Parameters must be finite; every duration parameter must be non-negative.
func NewDurationSampler(spec DistSpec) (Sampler, error) {
	required, ok := distParams[spec.Type]
	if !ok {
		return nil, fmt.Errorf("unknown distribution type %q; valid: %s",
			spec.Type, strings.Join(ValidDistTypeNames(), ", "))
	}
	if err := requireParam(spec.Params, required...); err != nil {
		return nil, err
	}
	for name, val := range spec.Params {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, fmt.Errorf("params.%s must be a finite number, got %f", name, val)
		}
	}

	p := spec.Params
	switch spec.Type {
	case "constant":
		if p["value"] < 0 {
			return nil, fmt.Errorf("constant value must be non-negative, got %f", p["value"])
		}
		return &ConstantSampler{value: p["value"]}, nil

	case "exponential":
		if p["mean"] <= 0 {
			return nil, fmt.Errorf("exponential mean must be positive, got %f", p["mean"])
		}
		return &ExponentialSampler{mean: p["mean"]}, nil

	case "uniform":
		if p["min"] < 0 || p["max"] < p["min"] {
			return nil, fmt.Errorf("uniform requires 0 <= min <= max, got min=%f max=%f", p["min"], p["max"])
		}
		return &UniformSampler{min: p["min"], max: p["max"]}, nil

	case "gamma":
		mean, cv := p["mean"], p["cv"]
		if mean <= 0 || cv <= 0 {
			return nil, fmt.Errorf("gamma requires positive mean and cv, got mean=%f cv=%f", mean, cv)
		}
		shape := 1.0 / (cv * cv)
		if shape < 0.01 {
			logrus.Warnf("Gamma shape %.4f (CV=%.1f) is very small; falling back to exponential", shape, cv)
			return &ExponentialSampler{mean: mean}, nil
		}
		return &GammaSampler{shape: shape, rate: shape / mean}, nil

	case "weibull":
		mean, cv := p["mean"], p["cv"]
		if mean <= 0 {
			return nil, fmt.Errorf("weibull mean must be positive, got %f", mean)
		}
		if cv < 0.01 || cv > 10.4 {
			return nil, fmt.Errorf("weibull cv must be in [0.01, 10.4], got %f", cv)
		}
		k := weibullShapeFromCV(cv)
		return &WeibullSampler{shape: k, scale: mean / math.Gamma(1.0+1.0/k)}, nil

	default: // lognormal
		if p["sigma"] < 0 {
			return nil, fmt.Errorf("lognormal sigma must be non-negative, got %f", p["sigma"])
		}
		return &LogNormalSampler{mu: p["mu"], sigma: p["sigma"]}, nil
	}
}

// weibullShapeFromCV finds the Weibull shape k such that
// CV² = Γ(1+2/k)/Γ(1+1/k)² - 1, using bisection over k ∈ [0.1, 100].
func weibullShapeFromCV(targetCV float64) float64 {
	lo, hi := 0.1, 100.0
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2.0
		cv := weibullCV(mid)
		if math.Abs(cv-targetCV) < 0.001 {
			return mid
		}
		// CV is monotonically decreasing in k
		if cv > targetCV {
			lo = mid
		} else {
			hi = mid
		}
	}
	logrus.Warnf("weibullShapeFromCV: bisection did not converge for CV=%.3f; using k=%.3f", targetCV, (lo+hi)/2.0)
	return (lo + hi) / 2.0
}

func weibullCV(k float64) float64 {
	g1 := math.Gamma(1.0 + 1.0/k)
	g2 := math.Gamma(1.0 + 2.0/k)
	return math.Sqrt(g2/(g1*g1) - 1.0)
}
