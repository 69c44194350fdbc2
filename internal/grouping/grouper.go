package grouping

import (
	"image"

	"go.uber.org/zap"

	"github.com/ironsheep/shelfgroup/internal/config"
	"github.com/ironsheep/shelfgroup/internal/detection"
)

// Status describes how a grouping call ended.
type Status int

const (
	// StatusGrouped means clustering ran and every extractable detection
	// carries a group and color.
	StatusGrouped Status = iota
	// StatusEmpty means the input had no detections.
	StatusEmpty
	// StatusNoFeatures means no detection had an extractable region, so the
	// input is returned unchanged.
	StatusNoFeatures
	// StatusDegraded means clustering failed and the input is returned
	// unchanged. Result.Err holds the cause.
	StatusDegraded
)

func (s Status) String() string {
	switch s {
	case StatusGrouped:
		return "grouped"
	case StatusEmpty:
		return "empty"
	case StatusNoFeatures:
		return "no_features"
	case StatusDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// MarshalText renders the status name in JSON output.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is the outcome of Grouper.Group.
type Result struct {
	// Detections is the input list in its original order. Detections that
	// took part in clustering carry a group and color; the rest are untouched.
	Detections []detection.Detection
	Status     Status
	// Err is set when Status is StatusDegraded.
	Err error
	// Skipped counts detections whose region was not extractable.
	Skipped int
	// Clusters counts distinct non-noise labels.
	Clusters int
}

// Grouper clusters the detections of one image by appearance and shelf row.
//
// A Grouper holds only read-only configuration after construction and can be
// shared by concurrent requests.
type Grouper struct {
	extractor  *Extractor
	normalizer Normalizer
	clusterer  DBSCAN
	palette    Palette
	logger     *zap.SugaredLogger
}

// Option configures a Grouper.
type Option func(*Grouper)

// WithLogger sets the logger used for grouping diagnostics.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(g *Grouper) {
		g.logger = logger
	}
}

// WithPalette replaces the default palette.
func WithPalette(p Palette) Option {
	return func(g *Grouper) {
		g.palette = p
	}
}

// New builds a Grouper from cfg.
func New(cfg config.Config, opts ...Option) *Grouper {
	g := &Grouper{
		extractor:  NewExtractor(cfg.CanonicalSize, cfg.ColorWeight, cfg.PositionWeight),
		normalizer: Normalizer{Epsilon: cfg.StdEpsilon},
		clusterer:  DBSCAN{Eps: cfg.Eps, MinSamples: cfg.MinSamples},
		palette:    DefaultPalette(),
		logger:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Palette returns the palette used to color groups.
func (g *Grouper) Palette() Palette {
	return g.palette
}

// Features extracts the feature vector of every extractable detection. It
// returns the indices of those detections into dets alongside their vectors.
func (g *Grouper) Features(img image.Image, dets []detection.Detection) ([]int, [][]float64) {
	var (
		indices  []int
		features [][]float64
	)
	for i, d := range dets {
		vec, ok := g.extractor.Extract(img, d.Region())
		if !ok {
			g.logger.Debugw("skipping detection with unextractable region", "index", i, "region", d.Region().String())
			continue
		}
		indices = append(indices, i)
		features = append(features, vec)
	}
	return indices, features
}

// Normalize rescales a feature batch the same way Group does before
// clustering.
func (g *Grouper) Normalize(features [][]float64) ([][]float64, error) {
	return g.normalizer.Normalize(features)
}

// cluster normalizes features and labels them.
func (g *Grouper) cluster(features [][]float64) ([]int, error) {
	normalized, err := g.Normalize(features)
	if err != nil {
		return nil, err
	}
	return g.clusterer.Fit(normalized)
}

// Group assigns a group label and color to every detection of img whose
// region can be extracted. dets is not modified.
func (g *Grouper) Group(img image.Image, dets []detection.Detection) Result {
	if len(dets) == 0 {
		return Result{Detections: []detection.Detection{}, Status: StatusEmpty}
	}

	out := detection.Clone(dets)
	indices, features := g.Features(img, dets)
	skipped := len(dets) - len(indices)
	if len(features) == 0 {
		g.logger.Infow("no extractable regions, returning detections ungrouped", "detections", len(dets))
		return Result{Detections: out, Status: StatusNoFeatures, Skipped: skipped}
	}

	labels, err := g.cluster(features)
	if err != nil {
		g.logger.Errorw("grouping failed, returning detections ungrouped", "error", err)
		return Result{Detections: out, Status: StatusDegraded, Err: err, Skipped: skipped}
	}

	clusters := make(map[int]struct{})
	for k, idx := range indices {
		label := labels[k]
		if label != detection.Noise {
			clusters[label] = struct{}{}
		}
		out[idx] = out[idx].WithGroup(label, g.palette.Color(label))
	}

	g.logger.Infow("grouped detections",
		"detections", len(dets),
		"clusters", len(clusters),
		"skipped", skipped,
	)
	return Result{
		Detections: out,
		Status:     StatusGrouped,
		Skipped:    skipped,
		Clusters:   len(clusters),
	}
}
