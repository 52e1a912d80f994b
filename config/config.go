// Package config describes a recurrence analysis declaratively.
//
// A YAML document selects the matrix variant, the metric, the threshold
// policy and the post-processing; Load decodes and validates it:
//
//	mode: joint
//	metric: euclidean
//	threshold:
//	  kind: global_rate
//	  value: 0.05
//	metric_y: manhattan
//	threshold_y:
//	  kind: fixed_scaled
//	  value: 0.2
//	  scale: quantile
//	  quantile: 0.5
//	diagonal: exclude
//	skeletonize: true
//
// Fields left out keep the values of Default.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/katalvlaran/recurrence/metric"
	"github.com/katalvlaran/recurrence/rmatrix"
	"github.com/katalvlaran/recurrence/threshold"
	"gopkg.in/yaml.v3"
)

// Modes.
const (
	ModeSelf  = "self"
	ModeCross = "cross"
	ModeJoint = "joint"
)

// Threshold kinds.
const (
	KindFixed       = "fixed"
	KindFixedScaled = "fixed_scaled"
	KindGlobalRate  = "global_rate"
	KindLocalRate   = "local_rate"
)

// Scale statistics of fixed_scaled thresholds.
const (
	ScaleMean     = "mean"
	ScaleMax      = "max"
	ScaleQuantile = "quantile"
)

// ErrInvalidConfig is returned for documents that fail validation.
var ErrInvalidConfig = errors.New("config: invalid configuration")

var errScaleRequired = errors.New("scale is required for fixed_scaled")

// Config is one analysis.
type Config struct {
	// Mode is self, cross or joint.
	Mode string `yaml:"mode" validate:"oneof=self cross joint"`

	// Metric names the distance of the (first) trajectory; see metric.ByName.
	// "minkowski" takes its order from MinkowskiP.
	Metric     string  `yaml:"metric" validate:"required"`
	MinkowskiP float64 `yaml:"minkowski_p,omitempty" validate:"omitempty,gte=1"`

	Threshold Threshold `yaml:"threshold"`

	// MetricY and ThresholdY configure the second trajectory in joint mode.
	// They default to Metric and Threshold.
	MetricY    string     `yaml:"metric_y,omitempty"`
	ThresholdY *Threshold `yaml:"threshold_y,omitempty"`

	// Diagonal is natural, include or exclude; only self matrices use it.
	Diagonal string `yaml:"diagonal" validate:"oneof=natural include exclude"`

	// Workers bounds parallelism; 0 means GOMAXPROCS.
	Workers int `yaml:"workers" validate:"gte=0"`

	// Streaming computes distance rows on demand instead of materialising
	// the distance matrix.
	Streaming bool `yaml:"streaming"`

	// Skeletonize thins diagonal bands of the final matrix.
	Skeletonize bool `yaml:"skeletonize"`
}

// Threshold is the YAML form of a threshold.Spec. Value is ε for fixed,
// α for fixed_scaled and the rate for global_rate and local_rate.
type Threshold struct {
	Kind     string  `yaml:"kind" validate:"oneof=fixed fixed_scaled global_rate local_rate"`
	Value    float64 `yaml:"value" validate:"gte=0"`
	Scale    string  `yaml:"scale,omitempty" validate:"omitempty,oneof=mean max quantile"`
	Quantile float64 `yaml:"quantile,omitempty" validate:"gte=0,lte=1"`
}

// Default returns a self analysis with Euclidean distances, a 10 % global
// recurrence rate and the natural diagonal.
func Default() *Config {
	return &Config{
		Mode:      ModeSelf,
		Metric:    metric.NameEuclidean,
		Threshold: Threshold{Kind: KindGlobalRate, Value: 0.1},
		Diagonal:  rmatrix.DiagonalNatural.String(),
	}
}

// Load decodes a YAML document over Default and validates the result.
// Unknown fields are rejected. An empty document yields Default.
func Load(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads and validates the YAML file at path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	cfg, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks struct constraints, then that every metric name and
// threshold resolves.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, formatValidationError(err))
	}
	if _, _, err := c.Metrics(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, _, err := c.Thresholds(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.ToLower(e.Namespace())
		switch e.Tag() {
		case "required", "required_if":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, e.Param()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be >= %s", field, e.Param()))
		case "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be <= %s", field, e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}

// Metrics resolves the metrics of the first and second trajectory. The
// second defaults to the first.
func (c *Config) Metrics() (x, y metric.Metric, err error) {
	if x, err = c.resolveMetric(c.Metric); err != nil {
		return nil, nil, err
	}
	if c.MetricY == "" {
		return x, x, nil
	}
	if y, err = c.resolveMetric(c.MetricY); err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

func (c *Config) resolveMetric(name string) (metric.Metric, error) {
	if strings.EqualFold(strings.TrimSpace(name), metric.NameMinkowski) {
		m, err := metric.NewMinkowski(c.MinkowskiP)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return metric.ByName(name)
}

// Thresholds converts the threshold of the first and second trajectory.
// The second defaults to the first.
func (c *Config) Thresholds() (x, y threshold.Spec, err error) {
	if x, err = c.Threshold.Spec(); err != nil {
		return x, y, fmt.Errorf("threshold: %w", err)
	}
	if c.ThresholdY == nil {
		return x, x, nil
	}
	if y, err = c.ThresholdY.Spec(); err != nil {
		return x, y, fmt.Errorf("threshold_y: %w", err)
	}
	return x, y, nil
}

// DiagonalPolicy converts Diagonal; unknown values map to DiagonalNatural.
func (c *Config) DiagonalPolicy() rmatrix.DiagonalPolicy {
	switch c.Diagonal {
	case rmatrix.DiagonalInclude.String():
		return rmatrix.DiagonalInclude
	case rmatrix.DiagonalExclude.String():
		return rmatrix.DiagonalExclude
	}
	return rmatrix.DiagonalNatural
}

// Spec converts t and validates it.
func (t Threshold) Spec() (threshold.Spec, error) {
	var s threshold.Spec
	switch t.Kind {
	case KindFixed:
		s = threshold.Fixed(t.Value)
	case KindFixedScaled:
		if t.Scale == "" {
			return threshold.Spec{}, errScaleRequired
		}
		var sc threshold.Scale
		switch t.Scale {
		case ScaleMean:
			sc = threshold.ScaleMean()
		case ScaleMax:
			sc = threshold.ScaleMax()
		case ScaleQuantile:
			sc = threshold.ScaleQuantile(t.Quantile)
		}
		s = threshold.FixedScaled(t.Value, sc)
	case KindGlobalRate:
		s = threshold.GlobalRate(t.Value)
	case KindLocalRate:
		s = threshold.LocalRate(t.Value)
	}
	if err := s.Validate(); err != nil {
		return threshold.Spec{}, err
	}
	return s, nil
}
