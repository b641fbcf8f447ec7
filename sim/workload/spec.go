package workload

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pipeline-sim/pipeline-sim/sim"
	"github.com/pipeline-sim/pipeline-sim/sim/trace"
)

// ScenarioSpec is the top-level scenario configuration.
// Loaded from YAML via LoadScenarioSpec(path).
type ScenarioSpec struct {
	Version  string        `yaml:"version"`
	Seed     int64         `yaml:"seed"`
	Arrival  DistSpec      `yaml:"arrival"`
	Stages   []StageConfig `yaml:"stages"`
	Graph    GraphSpec     `yaml:"graph"`
	Accuracy AccuracySpec  `yaml:"accuracy"`
	Trace    string        `yaml:"trace,omitempty"` // "", "none", "rejections" or "admissions"
}

// StageConfig defines one service stage. Stages are listed head first.
type StageConfig struct {
	Name       string   `yaml:"name,omitempty"` // defaults to "stage_<index>"
	BufferSize int      `yaml:"buffer_size"`
	Service    DistSpec `yaml:"service"`
}

// GraphSpec configures the metric-vs-horizon sweep.
type GraphSpec struct {
	MaxHorizon   float64 `yaml:"max_horizon"`
	HorizonStep  float64 `yaml:"horizon_step"`
	FixedHorizon bool    `yaml:"fixed_horizon"`
}

// AccuracySpec configures the sequential-sampling convergence loop.
type AccuracySpec struct {
	InitialReplications float64 `yaml:"initial_replications"`
	Precision           float64 `yaml:"precision"`
	Quantile            float64 `yaml:"quantile"`
	MaxIterations       int     `yaml:"max_iterations,omitempty"` // 0 = unbounded
	Workers             int     `yaml:"workers,omitempty"`        // 0 = one per CPU
}

// DistSpec parameterizes a duration distribution.
type DistSpec struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// DefaultScenarioSpec returns the reference three-stage scenario:
// exponential arrivals with mean 0.4 feeding stages with buffer sizes 4, 2, 2
// and exponential service means 1.25, 0.5, 0.5.
func DefaultScenarioSpec() *ScenarioSpec {
	return &ScenarioSpec{
		Version: "1",
		Seed:    42,
		Arrival: exponential(0.4),
		Stages: []StageConfig{
			{Name: "stage_0", BufferSize: 4, Service: exponential(1.25)},
			{Name: "stage_1", BufferSize: 2, Service: exponential(0.5)},
			{Name: "stage_2", BufferSize: 2, Service: exponential(0.5)},
		},
		Graph: GraphSpec{MaxHorizon: 750, HorizonStep: 10},
		Accuracy: AccuracySpec{
			InitialReplications: 100,
			Precision:           0.2,
			Quantile:            1.95,
		},
	}
}

func exponential(mean float64) DistSpec {
	return DistSpec{Type: "exponential", Params: map[string]float64{"mean": mean}}
}

// LoadScenarioSpec reads and parses a YAML scenario file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadScenarioSpec(path string) (*ScenarioSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario spec: %w", err)
	}
	return ParseScenarioSpec(data)
}

// ParseScenarioSpec parses a YAML scenario document with strict key checking.
func ParseScenarioSpec(data []byte) (*ScenarioSpec, error) {
	var spec ScenarioSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing scenario spec: %w", err)
	}
	if spec.Version == "" {
		spec.Version = "1"
	}
	return &spec, nil
}

// Marshal renders the spec as YAML.
func (s *ScenarioSpec) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Validate checks that all fields in the spec are valid.
func (s *ScenarioSpec) Validate() error {
	if s.Version != "1" {
		return fmt.Errorf("unsupported version %q; valid: 1", s.Version)
	}
	arrival, err := NewDurationSampler(s.Arrival)
	if err != nil {
		return fmt.Errorf("arrival: %w", err)
	}
	// A zero mean gap would never advance the arrival clock.
	if arrival.Mean() <= 0 {
		return fmt.Errorf("arrival: mean inter-arrival time must be positive, got %f", arrival.Mean())
	}
	if len(s.Stages) == 0 {
		return fmt.Errorf("at least one stage required")
	}
	names := make(map[string]int, len(s.Stages))
	for i := range s.Stages {
		if err := validateStage(&s.Stages[i], i); err != nil {
			return err
		}
		name := s.Stages[i].stageName(i)
		if prev, dup := names[name]; dup {
			return fmt.Errorf("stage[%d]: name %q already used by stage[%d]", i, name, prev)
		}
		names[name] = i
	}
	if err := validateGraph(&s.Graph); err != nil {
		return err
	}
	if err := validateAccuracy(&s.Accuracy); err != nil {
		return err
	}
	if !trace.IsValidTraceLevel(s.Trace) {
		return fmt.Errorf("unknown trace level %q; valid: none, rejections, admissions", s.Trace)
	}
	return nil
}

func validateStage(c *StageConfig, idx int) error {
	prefix := fmt.Sprintf("stage[%d]", idx)
	if c.BufferSize < 1 {
		return fmt.Errorf("%s: buffer_size must be at least 1, got %d", prefix, c.BufferSize)
	}
	if _, err := NewDurationSampler(c.Service); err != nil {
		return fmt.Errorf("%s.service: %w", prefix, err)
	}
	return nil
}

// MaxGraphPoints caps the number of points one graph sweep may simulate.
const MaxGraphPoints = 1_000_000

func validateGraph(g *GraphSpec) error {
	if err := validateFinite("graph.max_horizon", g.MaxHorizon); err != nil {
		return err
	}
	if g.MaxHorizon < 0 {
		return fmt.Errorf("graph.max_horizon must be non-negative, got %f", g.MaxHorizon)
	}
	if err := validateFinitePositive("graph.horizon_step", g.HorizonStep); err != nil {
		return err
	}
	if points := g.MaxHorizon/g.HorizonStep + 1; points > MaxGraphPoints {
		return fmt.Errorf("graph: max_horizon/horizon_step gives %.3g points, limit is %d", points, MaxGraphPoints)
	}
	return nil
}

func validateAccuracy(a *AccuracySpec) error {
	if err := validateFinite("accuracy.initial_replications", a.InitialReplications); err != nil {
		return err
	}
	if a.InitialReplications < 0 {
		return fmt.Errorf("accuracy.initial_replications must be non-negative, got %f", a.InitialReplications)
	}
	if err := validateFinitePositive("accuracy.precision", a.Precision); err != nil {
		return err
	}
	if err := validateFinitePositive("accuracy.quantile", a.Quantile); err != nil {
		return err
	}
	if a.MaxIterations < 0 {
		return fmt.Errorf("accuracy.max_iterations must be non-negative, got %d", a.MaxIterations)
	}
	if a.Workers < 0 {
		return fmt.Errorf("accuracy.workers must be non-negative, got %d", a.Workers)
	}
	return nil
}

func validateFinite(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	return nil
}

func validateFinitePositive(name string, val float64) error {
	if err := validateFinite(name, val); err != nil {
		return err
	}
	if val <= 0 {
		return fmt.Errorf("%s must be positive, got %f", name, val)
	}
	return nil
}

func (c *StageConfig) stageName(idx int) string {
	if strings.TrimSpace(c.Name) == "" {
		return sim.SubsystemStage(idx)
	}
	return c.Name
}

// StageSpecs converts the stage list into sim.StageSpec values, head first.
func (s *ScenarioSpec) StageSpecs() ([]sim.StageSpec, error) {
	specs := make([]sim.StageSpec, 0, len(s.Stages))
	for i := range s.Stages {
		c := &s.Stages[i]
		sampler, err := NewDurationSampler(c.Service)
		if err != nil {
			return nil, fmt.Errorf("stage[%d].service: %w", i, err)
		}
		specs = append(specs, sim.ServiceSpec{
			Name:         c.stageName(i),
			BufferSize:   c.BufferSize,
			HandlingTime: sampler,
		})
	}
	return specs, nil
}

// NewPipeline validates the spec and builds a pipeline whose random streams derive from key.
// A non-empty trace level attaches a fresh admission trace.
func (s *ScenarioSpec) NewPipeline(key sim.SimulationKey) (*sim.Pipeline, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	arrival, err := NewDurationSampler(s.Arrival)
	if err != nil {
		return nil, fmt.Errorf("arrival: %w", err)
	}
	specs, err := s.StageSpecs()
	if err != nil {
		return nil, err
	}
	p := sim.PipelineBuilder{
		Arrival: arrival,
		RNG:     sim.NewPartitionedRNG(key),
	}.Build(specs)
	if level := trace.TraceLevel(s.Trace); level != "" && level != trace.TraceLevelNone {
		p.SetTrace(trace.NewSimulationTrace(trace.TraceConfig{Level: level}))
	}
	return p, nil
}

// OfferedLoad returns mean service time over mean inter-arrival time for every stage,
// head first. Values above 1 mean the stage saturates and will drop arrivals.
func (s *ScenarioSpec) OfferedLoad() ([]float64, error) {
	arrival, err := NewDurationSampler(s.Arrival)
	if err != nil {
		return nil, fmt.Errorf("arrival: %w", err)
	}
	loads := make([]float64, len(s.Stages))
	for i := range s.Stages {
		svc, err := NewDurationSampler(s.Stages[i].Service)
		if err != nil {
			return nil, fmt.Errorf("stage[%d].service: %w", i, err)
		}
		loads[i] = svc.Mean() / arrival.Mean()
	}
	return loads, nil
}
