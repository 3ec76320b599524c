package svgdoc

import "github.com/benoitkugler/svgpaint/svgpath"

// recorder is a Canvas storing the operations it receives
type recorder struct {
	transform Matrix2D
	alpha     float64
	rule      FillRule

	ops []recordedOp
}

type recordedOp struct {
	stroke    bool
	path      svgpath.Path
	transform Matrix2D
	rule      FillRule
	paint     Paint
	options   StrokeOptions
}

func newRecorder() *recorder { return &recorder{transform: Identity, alpha: 1} }

func (r *recorder) Transform() Matrix2D { return r.transform }
func (r *recorder) SetTransform(m Matrix2D) { r.transform = m }
func (r *recorder) SetAlpha(alpha float64) { r.alpha = alpha }
func (r *recorder) SetFillRule(rule FillRule) { r.rule = rule }

func (r *recorder) Fill(path svgpath.Path, paint Paint) {
	r.ops = append(r.ops, recordedOp{path: path, transform: r.transform, rule: r.rule, paint: paint})
}

func (r *recorder) Stroke(path svgpath.Path, options StrokeOptions, paint Paint) {
	r.ops = append(r.ops, recordedOp{stroke: true, path: path, transform: r.transform, paint: paint, options: options})
}

// patternRecorder also supports gradients
type patternRecorder struct {
	*recorder
	specs    []PatternSpec
	patterns []*fakePattern
}

type fakePattern struct {
	spec     PatternSpec
	disposed int
}

func (p *fakePattern) Dispose() { p.disposed++ }

func (r *patternRecorder) CreatePattern(spec PatternSpec) Pattern {
	r.specs = append(r.specs, spec)
	p := &fakePattern{spec: spec}
	r.patterns = append(r.patterns, p)
	return p
}

// nilPatternRecorder advertises gradients but never supports them
type nilPatternRecorder struct {
	*recorder
	calls int
}

func (r *nilPatternRecorder) CreatePattern(PatternSpec) Pattern {
	r.calls++
	return nil
}

var (
	_ Canvas         = (*recorder)(nil)
	_ PatternCreator = (*patternRecorder)(nil)
	_ PatternCreator = (*nilPatternRecorder)(nil)
)
