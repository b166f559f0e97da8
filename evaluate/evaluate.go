// Package evaluate matches scenes and accumulates metrics over them using a
// pool of workers.
package evaluate

import (
	"context"
	"fmt"
	"sync"

	"github.com/swdee/go-posemetrics"
	"github.com/swdee/go-posemetrics/geometry"
	"github.com/swdee/go-posemetrics/matcher"
	"github.com/swdee/go-posemetrics/metrics"
	"golang.org/x/sync/errgroup"
)

// ProgressFunc is called once for every finished scene with the number of
// scenes done so far and the total
type ProgressFunc func(done, total int)

// Params configures the Evaluator
type Params struct {
	// Workers is the number of scenes evaluated in parallel, values below 1
	// evaluate sequentially
	Workers int
	// Matcher aligns the predictions of each scene to its ground truth
	Matcher matcher.Params
	// Progress is optional
	Progress ProgressFunc
	// CheckBoxes logs a warning for every scene with visible ground truth
	// keypoints outside their own box
	CheckBoxes bool
}

// Report is the outcome of an evaluation
type Report struct {
	// Results are the merged metric results by name
	Results map[string]float64
	// Names are the result names in the metric's order
	Names []string
	// Scenes is the number of scenes evaluated
	Scenes         int
	TruePositives  int
	FalseNegatives int
	FalsePositives int
}

// Evaluator runs matching and metric accumulation over a set of scenes
type Evaluator struct {
	Params  Params
	create  CreateFunc
	matcher *matcher.Matcher
}

// NewEvaluator returns an Evaluator that accumulates metrics built by create
func NewEvaluator(create CreateFunc, p Params) (*Evaluator, error) {

	if create == nil {
		return nil, fmt.Errorf("%w: metric constructor is required", posemetrics.ErrConfig)
	}

	if p.Workers < 1 {
		p.Workers = 1
	}

	m, err := matcher.NewMatcher(p.Matcher)

	if err != nil {
		return nil, fmt.Errorf("failed to create matcher: %w", err)
	}

	return &Evaluator{
		Params:  p,
		create:  create,
		matcher: m,
	}, nil
}

// counts are the running object totals shared by all workers
type counts struct {
	sync.Mutex
	done int
	tp   int
	fn   int
	fp   int
}

// Evaluate matches every scene and accumulates the metric over all of them.
// The first error cancels the remaining work.
func (e *Evaluator) Evaluate(ctx context.Context, scenes []posemetrics.Scene) (*Report, error) {

	workers := min(e.Params.Workers, max(len(scenes), 1))

	pool, err := NewPool(workers, e.create)

	if err != nil {
		return nil, err
	}

	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan int)
	totals := &counts{}

	g.Go(func() error {
		defer close(jobs)

		for i := range scenes {
			if err := ctx.Err(); err != nil {
				return err
			}

			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			m := pool.Get()
			defer pool.Return(m)

			for i := range jobs {
				if err := e.evaluateScene(m, scenes[i], i, totals, len(scenes)); err != nil {
					return err
				}
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		pool.Close()
		return nil, err
	}

	total, err := pool.Merged()

	if err != nil {
		return nil, err
	}

	report := &Report{
		Results:        total.Result(),
		Names:          total.Names(),
		Scenes:         len(scenes),
		TruePositives:  totals.tp,
		FalseNegatives: totals.fn,
		FalsePositives: totals.fp,
	}

	Logf("evaluated %d scenes: %d matched, %d missed, %d false positives",
		report.Scenes, report.TruePositives, report.FalseNegatives, report.FalsePositives)

	return report, nil
}

// evaluateScene matches one scene and adds it to m
func (e *Evaluator) evaluateScene(m metrics.Metric, scene posemetrics.Scene, idx int,
	totals *counts, numScenes int) error {

	res, err := e.matcher.Match(scene.GroundTruth, scene.Prediction)

	if err != nil {
		return fmt.Errorf("failed to match scene %d %q: %w", idx, scene.ID, err)
	}

	if e.Params.CheckBoxes {
		if n := outsideBox(scene.GroundTruth); n > 0 {
			Logf("scene %d %q has %d visible ground truth keypoints outside their box",
				idx, scene.ID, n)
		}
	}

	if res.Len() > 0 {
		in := metrics.Inputs{
			GroundTruth: res.GroundTruth.Keypoints,
			Prediction:  res.Prediction.Keypoints,
			Box:         res.GroundTruth.Box,
		}

		if err := m.Update(in, nil); err != nil {
			return fmt.Errorf("failed to update metric for scene %d %q: %w", idx, scene.ID, err)
		}
	}

	tp, fn, fp := res.Counts()

	totals.Lock()
	totals.tp += tp
	totals.fn += fn
	totals.fp += fp
	totals.done++
	done := totals.done

	if e.Params.Progress != nil {
		e.Params.Progress(done, numScenes)
	}

	totals.Unlock()

	return nil
}

// outsideBox counts the visible keypoints that lie outside the box of their
// own object.  Keypoints with a different number of axes than the box are
// skipped.
func outsideBox(p posemetrics.PoseEstimations) int {

	if p.Box == nil {
		return 0
	}

	n := 0

	for i, obj := range p.Keypoints.Location {
		box := geometry.BoxAt(p.Box, i)

		for j, pt := range obj {
			if !p.Keypoints.Visibility[i][j].IsVisible() || len(pt) != len(box.Center) {
				continue
			}

			if !geometry.Contains(pt, box) {
				n++
			}
		}
	}

	return n
}
