package matcher

import (
	"fmt"

	"github.com/swdee/go-posemetrics"
	"github.com/swdee/go-posemetrics/geometry"
)

// Strategy selects how ground truth and predicted objects are paired
type Strategy int

const (
	// Greedy pairs the highest overlap first, ties broken by lowest ground
	// truth then prediction index
	Greedy Strategy = iota
	// Hungarian finds the assignment that maximises the total overlap
	Hungarian
)

// String returns the name of the strategy
func (s Strategy) String() string {
	switch s {
	case Greedy:
		return "greedy"
	case Hungarian:
		return "hungarian"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// Params configures the Matcher
type Params struct {
	// Strategy used to pair objects
	Strategy Strategy
	// MinOverlap is the IoU a pair must exceed to be matched.  The default 0
	// accepts any strictly positive overlap.
	MinOverlap float64
	// MinLength pads the output with all zero rows on both sides until it
	// has at least this many rows
	MinLength int
}

// DefaultParams returns greedy matching of any overlapping pair
func DefaultParams() Params {
	return Params{
		Strategy:   Greedy,
		MinOverlap: 0,
		MinLength:  0,
	}
}

// Result holds the aligned ground truth and predictions.  Row i of
// GroundTruth corresponds to row i of Prediction.
type Result struct {
	GroundTruth posemetrics.PoseEstimations
	Prediction  posemetrics.PoseEstimations
	// GroundTruthIndex is the source ground truth index of each row, -1 for
	// padding
	GroundTruthIndex []int
	// PredictionIndex is the source prediction index of each row, -1 for
	// padding
	PredictionIndex []int
	// SceneIndex is the position of the scene each row came from
	SceneIndex []int
}

// Len returns the number of aligned rows
func (r *Result) Len() int {
	return len(r.GroundTruthIndex)
}

// Counts returns the number of true positive, false negative and false
// positive rows.  Rows padded on both sides are not counted.
func (r *Result) Counts() (tp, fn, fp int) {

	for i := range r.GroundTruthIndex {
		g, p := r.GroundTruthIndex[i], r.PredictionIndex[i]

		switch {
		case g >= 0 && p >= 0:
			tp++
		case g >= 0:
			fn++
		case p >= 0:
			fp++
		}
	}

	return tp, fn, fp
}

// Matcher aligns predicted objects to ground truth objects one scene at a
// time
type Matcher struct {
	params Params
}

// NewMatcher returns a Matcher for the given parameters
func NewMatcher(p Params) (*Matcher, error) {

	if p.Strategy != Greedy && p.Strategy != Hungarian {
		return nil, fmt.Errorf("%w: unknown matching strategy %d", posemetrics.ErrConfig, int(p.Strategy))
	}

	if p.MinOverlap < 0 || p.MinOverlap >= 1 {
		return nil, fmt.Errorf("%w: minimum overlap must be in [0, 1), got %v",
			posemetrics.ErrConfig, p.MinOverlap)
	}

	if p.MinLength < 0 {
		return nil, fmt.Errorf("%w: minimum length must not be negative, got %d",
			posemetrics.ErrConfig, p.MinLength)
	}

	return &Matcher{params: p}, nil
}

// Params returns the parameters the Matcher was created with
func (m *Matcher) Params() Params {
	return m.params
}

// Match aligns gt and pr using DefaultParams
func Match(gt, pr posemetrics.PoseEstimations) (*Result, error) {
	m, _ := NewMatcher(DefaultParams())
	return m.Match(gt, pr)
}

// Match pairs the objects of a single scene.  The output holds the matched
// pairs ordered by ground truth index, then unmatched ground truth with a
// padded prediction, then unmatched predictions with a padded ground truth.
func (m *Matcher) Match(gt, pr posemetrics.PoseEstimations) (*Result, error) {

	if err := checkInputs(gt, pr); err != nil {
		return nil, err
	}

	var pairs [][2]int

	if gt.Len() > 0 && pr.Len() > 0 {

		ious, err := geometry.OverlapMatrix(gt.Box, pr.Box)

		if err != nil {
			return nil, fmt.Errorf("failed to compute overlap: %w", err)
		}

		switch m.params.Strategy {
		case Hungarian:
			pairs, err = hungarianPairs(ious, m.params.MinOverlap)
			if err != nil {
				return nil, fmt.Errorf("fatal error in linear assignment: %w", err)
			}
		default:
			pairs = greedyPairs(ious, m.params.MinOverlap)
		}
	}

	res := m.assemble(gt, pr, pairs)

	if err := checkComplete(res, gt.Len(), pr.Len()); err != nil {
		return nil, err
	}

	return res, nil
}

// MatchScenes matches every scene independently and concatenates the results
// in scene order
func (m *Matcher) MatchScenes(scenes []posemetrics.Scene) (*Result, error) {

	parts := make([]*Result, 0, len(scenes))

	for i, scene := range scenes {
		res, err := m.Match(scene.GroundTruth, scene.Prediction)

		if err != nil {
			return nil, fmt.Errorf("failed to match scene %d %q: %w", i, scene.ID, err)
		}

		for r := range res.SceneIndex {
			res.SceneIndex[r] = i
		}

		parts = append(parts, res)
	}

	return concatResults(parts), nil
}

// checkInputs validates both sides and checks they can be compared
func checkInputs(gt, pr posemetrics.PoseEstimations) error {

	if err := gt.Validate(); err != nil {
		return fmt.Errorf("invalid ground truth: %w", err)
	}

	if err := pr.Validate(); err != nil {
		return fmt.Errorf("invalid prediction: %w", err)
	}

	if gt.Len() > 0 && gt.Box == nil {
		return fmt.Errorf("%w: matching requires ground truth boxes", posemetrics.ErrConfig)
	}

	if pr.Len() > 0 && pr.Box == nil {
		return fmt.Errorf("%w: matching requires prediction boxes", posemetrics.ErrConfig)
	}

	if gt.Len() == 0 || pr.Len() == 0 {
		return nil
	}

	if gt.Keypoints.NumTypes() != pr.Keypoints.NumTypes() {
		return fmt.Errorf("%w: ground truth has %d keypoint types but prediction has %d",
			posemetrics.ErrShape, gt.Keypoints.NumTypes(), pr.Keypoints.NumTypes())
	}

	if gt.Keypoints.Dims() != pr.Keypoints.Dims() {
		return fmt.Errorf("%w: ground truth keypoints have %d axes but prediction has %d",
			posemetrics.ErrShape, gt.Keypoints.Dims(), pr.Keypoints.Dims())
	}

	return nil
}

// layout describes the geometry of padding rows for one side
type layout struct {
	numTypes    int
	dims        int
	boxDims     int
	withHeading bool
}

// layoutOf returns the padding layout of own, borrowing from other when own
// has no objects to take it from
func layoutOf(own, other posemetrics.PoseEstimations) layout {

	src := own

	if own.Len() == 0 {
		src = other
	}

	return layout{
		numTypes:    src.Keypoints.NumTypes(),
		dims:        src.Keypoints.Dims(),
		boxDims:     src.Box.Dims(),
		withHeading: src.Box.Rotated(),
	}
}

func (l layout) zero(n int) posemetrics.PoseEstimations {
	return posemetrics.ZeroPoseEstimations(n, l.numTypes, l.dims, l.boxDims, l.withHeading)
}

// assemble builds the aligned output from the matched pairs, which must be
// ordered by ground truth index
func (m *Matcher) assemble(gt, pr posemetrics.PoseEstimations, pairs [][2]int) *Result {

	if gt.Len() == 0 && pr.Len() == 0 {
		return &Result{}
	}

	usedGT := make([]bool, gt.Len())
	usedPR := make([]bool, pr.Len())

	gtIdx := make([]int, 0, gt.Len()+pr.Len())
	prMatched := make([]int, 0, len(pairs))

	for _, p := range pairs {
		usedGT[p[0]] = true
		usedPR[p[1]] = true
		gtIdx = append(gtIdx, p[0])
		prMatched = append(prMatched, p[1])
	}

	var fnIdx, fpIdx []int

	for i, used := range usedGT {
		if !used {
			fnIdx = append(fnIdx, i)
		}
	}

	for j, used := range usedPR {
		if !used {
			fpIdx = append(fpIdx, j)
		}
	}

	natural := len(pairs) + len(fnIdx) + len(fpIdx)
	extra := 0

	if m.params.MinLength > natural {
		extra = m.params.MinLength - natural
	}

	gtLayout := layoutOf(gt, pr)
	prLayout := layoutOf(pr, gt)

	gtIdx = append(gtIdx, fnIdx...)

	gtOut := posemetrics.ConcatPoseEstimations(
		gt.Gather(gtIdx),
		gtLayout.zero(len(fpIdx)+extra),
	)

	prOut := posemetrics.ConcatPoseEstimations(
		pr.Gather(prMatched),
		prLayout.zero(len(fnIdx)),
		pr.Gather(fpIdx),
		prLayout.zero(extra),
	)

	res := &Result{
		GroundTruth:      gtOut,
		Prediction:       prOut,
		GroundTruthIndex: make([]int, 0, natural+extra),
		PredictionIndex:  make([]int, 0, natural+extra),
		SceneIndex:       make([]int, natural+extra),
	}

	res.GroundTruthIndex = append(res.GroundTruthIndex, gtIdx...)
	res.GroundTruthIndex = append(res.GroundTruthIndex, padding(len(fpIdx)+extra)...)

	res.PredictionIndex = append(res.PredictionIndex, prMatched...)
	res.PredictionIndex = append(res.PredictionIndex, padding(len(fnIdx))...)
	res.PredictionIndex = append(res.PredictionIndex, fpIdx...)
	res.PredictionIndex = append(res.PredictionIndex, padding(extra)...)

	return res
}

func padding(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = -1
	}
	return out
}

// checkComplete verifies every source object appears exactly once on its side
// and both sides have the same length
func checkComplete(res *Result, numGT, numPR int) error {

	if res.GroundTruth.Len() != res.Prediction.Len() || res.GroundTruth.Len() != res.Len() {
		return fmt.Errorf("%w: aligned lengths differ, %d ground truth and %d predictions",
			posemetrics.ErrIncompleteMatch, res.GroundTruth.Len(), res.Prediction.Len())
	}

	if missing := MissingIDs(res.GroundTruthIndex, numGT); len(missing) > 0 {
		return fmt.Errorf("%w: ground truth objects %v have no row",
			posemetrics.ErrIncompleteMatch, missing)
	}

	if missing := MissingIDs(res.PredictionIndex, numPR); len(missing) > 0 {
		return fmt.Errorf("%w: predicted objects %v have no row",
			posemetrics.ErrIncompleteMatch, missing)
	}

	if n := countSource(res.GroundTruthIndex); n != numGT {
		return fmt.Errorf("%w: %d ground truth rows for %d objects",
			posemetrics.ErrIncompleteMatch, n, numGT)
	}

	if n := countSource(res.PredictionIndex); n != numPR {
		return fmt.Errorf("%w: %d prediction rows for %d objects",
			posemetrics.ErrIncompleteMatch, n, numPR)
	}

	return nil
}

func countSource(ids []int) int {
	n := 0
	for _, id := range ids {
		if id >= 0 {
			n++
		}
	}
	return n
}

// concatResults joins per scene results preserving their order
func concatResults(parts []*Result) *Result {

	gts := make([]posemetrics.PoseEstimations, 0, len(parts))
	prs := make([]posemetrics.PoseEstimations, 0, len(parts))
	out := &Result{}

	for _, p := range parts {
		if p.Len() == 0 {
			continue
		}

		gts = append(gts, p.GroundTruth)
		prs = append(prs, p.Prediction)
		out.GroundTruthIndex = append(out.GroundTruthIndex, p.GroundTruthIndex...)
		out.PredictionIndex = append(out.PredictionIndex, p.PredictionIndex...)
		out.SceneIndex = append(out.SceneIndex, p.SceneIndex...)
	}

	out.GroundTruth = posemetrics.ConcatPoseEstimations(gts...)
	out.Prediction = posemetrics.ConcatPoseEstimations(prs...)

	return out
}
