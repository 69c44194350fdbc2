// Package config holds the tunables of the grouping engine and loads them
// from YAML files.
package config

import (
	"math"
	"os"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config collects every threshold and weight used by feature extraction,
// clustering and rendering.
type Config struct {
	// Eps is the DBSCAN neighbourhood radius in normalized feature space.
	Eps float64 `yaml:"eps"`
	// MinSamples is the neighbourhood size (counting the point itself) a point
	// needs to be a core point.
	MinSamples int `yaml:"min_samples"`
	// ColorWeight scales the three Lab channel means.
	ColorWeight float64 `yaml:"color_weight"`
	// PositionWeight scales the vertical center coordinate.
	PositionWeight float64 `yaml:"position_weight"`
	// CanonicalSize is the side length crops are resized to before averaging.
	CanonicalSize int `yaml:"canonical_size"`
	// StdEpsilon is added to every standard deviation during normalization.
	StdEpsilon float64 `yaml:"std_epsilon"`

	// OverlayOpacity is the weight of the group color over the image.
	OverlayOpacity float64 `yaml:"overlay_opacity"`
	// FontSize is the tag text size in pixels.
	FontSize float64 `yaml:"font_size"`
	// TagPadding is the space between the tag text baseline and the region.
	TagPadding int `yaml:"tag_padding"`
	// OutputPrefix is prepended to the input file name for the rendered image.
	OutputPrefix string `yaml:"output_prefix"`

	// MinConfidence drops detections scoring below it. Zero keeps all.
	MinConfidence float64 `yaml:"min_confidence"`
	// MaxDetections keeps only the first N detections. Zero keeps all.
	MaxDetections int `yaml:"max_detections"`
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		Eps:            0.3,
		MinSamples:     2,
		ColorWeight:    0.7,
		PositionWeight: 0.3,
		CanonicalSize:  64,
		StdEpsilon:     1e-8,
		OverlayOpacity: 0.5,
		FontSize:       14,
		TagPadding:     5,
		OutputPrefix:   "detected_",
	}
}

// Load reads a YAML file, expanding ${VAR} references from the environment,
// and overlays it on Default. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); err != nil {
		return cfg, errors.Wrap(err, "failed to read config")
	}
	data, err := envsubst.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "failed to expand config %s", path)
	}
	return Parse(data)
}

// Parse decodes YAML bytes on top of Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "failed to parse config")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values the engine cannot work with.
func (c Config) Validate() error {
	switch {
	case c.Eps <= 0:
		return errors.Errorf("eps must be positive, got %v", c.Eps)
	case c.MinSamples < 1:
		return errors.Errorf("min_samples must be at least 1, got %d", c.MinSamples)
	case !validWeight(c.ColorWeight):
		return errors.Errorf("color_weight must be a non-negative number, got %v", c.ColorWeight)
	case !validWeight(c.PositionWeight):
		return errors.Errorf("position_weight must be a non-negative number, got %v", c.PositionWeight)
	case c.CanonicalSize < 1:
		return errors.Errorf("canonical_size must be at least 1, got %d", c.CanonicalSize)
	case c.StdEpsilon <= 0:
		return errors.Errorf("std_epsilon must be positive, got %v", c.StdEpsilon)
	case c.OverlayOpacity < 0 || c.OverlayOpacity > 1:
		return errors.Errorf("overlay_opacity must be within [0,1], got %v", c.OverlayOpacity)
	case c.FontSize <= 0:
		return errors.Errorf("font_size must be positive, got %v", c.FontSize)
	case c.TagPadding < 0:
		return errors.Errorf("tag_padding must not be negative, got %d", c.TagPadding)
	case c.MinConfidence < 0 || c.MinConfidence > 1:
		return errors.Errorf("min_confidence must be within [0,1], got %v", c.MinConfidence)
	case c.MaxDetections < 0:
		return errors.Errorf("max_detections must not be negative, got %d", c.MaxDetections)
	}
	return nil
}

func validWeight(w float64) bool {
	return w >= 0 && !math.IsInf(w, 0)
}
