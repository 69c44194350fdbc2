// Package pipeline runs the full grouping flow for one image: load, filter,
// group, render, write.
package pipeline

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/shelfgroup/internal/config"
	"github.com/ironsheep/shelfgroup/internal/detection"
	"github.com/ironsheep/shelfgroup/internal/grouping"
	"github.com/ironsheep/shelfgroup/internal/imaging"
	"github.com/ironsheep/shelfgroup/internal/visualize"
)

// ErrMissingImagePath is returned for jobs without an image path.
var ErrMissingImagePath = errors.New("image_path is required")

// Job is one grouping request.
type Job struct {
	ImagePath  string                `json:"image_path"`
	Detections []detection.Detection `json:"detections"`
	// OutputPath overrides where the visualization is written. By default it
	// goes next to the image with the configured prefix.
	OutputPath string `json:"output_path,omitempty"`
}

// GroupCount is the number of detections carrying one label.
type GroupCount struct {
	Group int    `json:"group"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

// Report is the outcome of a job.
type Report struct {
	ImagePath  string                `json:"image_path"`
	OutputPath string                `json:"output_path,omitempty"`
	Detections []detection.Detection `json:"grouped_detections"`
	Status     grouping.Status       `json:"status"`
	Clusters   int                   `json:"clusters"`
	Skipped    int                   `json:"skipped"`
	Summary    []GroupCount          `json:"summary"`
	Rendered   bool                  `json:"rendered"`

	GroupingError      string `json:"grouping_error,omitempty"`
	VisualizationError string `json:"visualization_error,omitempty"`
}

// Runner executes jobs. It is safe for concurrent use.
type Runner struct {
	cfg        config.Config
	grouper    *grouping.Grouper
	visualizer *visualize.Visualizer
	logger     *zap.SugaredLogger
}

// NewRunner builds a Runner with a grouper and visualizer configured from cfg.
func NewRunner(cfg config.Config, logger *zap.SugaredLogger) *Runner {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	grouper := grouping.New(cfg, grouping.WithLogger(logger.Named("grouping")))
	return &Runner{
		cfg:        cfg,
		grouper:    grouper,
		visualizer: visualize.New(cfg, grouper.Palette(), visualize.WithLogger(logger.Named("visualize"))),
		logger:     logger,
	}
}

// Grouper returns the grouper used by the runner.
func (r *Runner) Grouper() *grouping.Grouper {
	return r.grouper
}

// Run executes one job. Only request-level problems are returned as errors:
// a missing path or an image that cannot be loaded. Grouping and rendering
// failures degrade into the report.
//
// ctx is checked between stages; a cancelled job returns ctx.Err() and
// writes nothing.
func (r *Runner) Run(ctx context.Context, job Job) (*Report, error) {
	if job.ImagePath == "" {
		return nil, ErrMissingImagePath
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := imaging.Load(job.ImagePath)
	if err != nil {
		return nil, errors.Wrapf(err, "image %s", job.ImagePath)
	}
	bounds := img.Bounds()
	r.logger.Infow("processing image",
		"path", job.ImagePath,
		"width", bounds.Dx(),
		"height", bounds.Dy(),
		"detections", len(job.Detections),
	)

	dets := r.Filter(job.Detections)
	grouped := r.grouper.Group(img, dets)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := job.OutputPath
	if out == "" {
		out = imaging.OutputPath(job.ImagePath, r.cfg.OutputPrefix)
	}
	vis := r.visualizer.Visualize(img, grouped.Detections, out)

	report := &Report{
		ImagePath:  job.ImagePath,
		OutputPath: vis.Path,
		Detections: grouped.Detections,
		Status:     grouped.Status,
		Clusters:   grouped.Clusters,
		Skipped:    grouped.Skipped,
		Summary:    Summarize(grouped.Detections, r.grouper.Palette()),
		Rendered:   vis.Rendered,
	}
	if grouped.Err != nil {
		report.GroupingError = grouped.Err.Error()
	}
	if vis.Err != nil {
		report.VisualizationError = vis.Err.Error()
	}
	return report, nil
}

// RunBatch runs independent jobs with at most workers in flight. Every job
// gets its own image buffer. Reports are returned in job order; a failed job
// leaves a nil report and contributes to the combined error.
func (r *Runner) RunBatch(ctx context.Context, jobs []Job, workers int) ([]*Report, error) {
	if workers < 1 {
		workers = 1
	}
	reports := make([]*Report, len(jobs))
	errs := make([]error, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			rep, err := r.Run(gctx, job)
			if err != nil {
				errs[i] = errors.Wrapf(err, "job %d (%s)", i, job.ImagePath)
				return nil
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return reports, err
	}
	return reports, multierr.Combine(errs...)
}

// Filter applies the configured min_confidence and max_detections limits.
func (r *Runner) Filter(dets []detection.Detection) []detection.Detection {
	return Filter(dets, r.cfg.MinConfidence, r.cfg.MaxDetections)
}

// Filter drops detections scoring below minConfidence and keeps at most
// maxDetections of the rest. Zero disables either limit. The input order is
// preserved.
func Filter(dets []detection.Detection, minConfidence float64, maxDetections int) []detection.Detection {
	out := make([]detection.Detection, 0, len(dets))
	for _, d := range dets {
		if d.Confidence < minConfidence {
			continue
		}
		out = append(out, d)
		if maxDetections > 0 && len(out) == maxDetections {
			break
		}
	}
	return out
}

// Summarize counts grouped detections per label, lowest label first.
// Detections without a group are not counted.
func Summarize(dets []detection.Detection, palette grouping.Palette) []GroupCount {
	counts := make(map[int]int)
	for _, d := range dets {
		if d.Grouped() {
			counts[d.Label()]++
		}
	}
	summary := make([]GroupCount, 0, len(counts))
	for label, n := range counts {
		summary = append(summary, GroupCount{Group: label, Count: n, Color: palette.Color(label).Hex()})
	}
	sort.Slice(summary, func(i, j int) bool {
		return summary[i].Group < summary[j].Group
	})
	return summary
}
