package intent

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// classifier is a multinomial logistic regression: one weight row and one
// intercept per class, softmax over the class scores
type classifier struct {
	classes   []string
	coef      *mat.Dense
	intercept []float64
}

// fitResult reports how the optimizer finished
type fitResult struct {
	Iterations int
	Status     string
	Loss       float64
}

// softmaxObjective is the mean cross-entropy plus an L2 penalty of
// 1/(2·C·n)·‖W‖². Intercepts are not penalised. Func and Grad share one
// evaluation per point.
type softmaxObjective struct {
	x     *mat.Dense
	y     []int
	k, p  int
	alpha float64

	lastX    []float64
	lastLoss float64
	lastGrad []float64

	scores *mat.Dense
	resid  *mat.Dense
	gradW  *mat.Dense
}

func newSoftmaxObjective(x *mat.Dense, y []int, k int, c float64) *softmaxObjective {
	n, p := x.Dims()
	return &softmaxObjective{
		x:        x,
		y:        y,
		k:        k,
		p:        p,
		alpha:    1 / (c * float64(n)),
		lastGrad: make([]float64, k*p+k),
		scores:   mat.NewDense(n, k, nil),
		resid:    mat.NewDense(n, k, nil),
		gradW:    mat.NewDense(k, p, nil),
	}
}

func (o *softmaxObjective) eval(params []float64) {
	if o.lastX != nil && floats.Equal(o.lastX, params) {
		return
	}
	n, _ := o.x.Dims()
	w := mat.NewDense(o.k, o.p, params[:o.k*o.p])
	b := params[o.k*o.p:]

	o.scores.Mul(o.x, w.T())
	loss := 0.0
	for i := 0; i < n; i++ {
		row := o.scores.RawRowView(i)
		floats.Add(row, b)
		lse := logSumExp(row)
		loss += lse - row[o.y[i]]
		res := o.resid.RawRowView(i)
		for j := range row {
			res[j] = math.Exp(row[j] - lse)
		}
		res[o.y[i]] -= 1
	}
	inv := 1 / float64(n)
	loss *= inv

	o.gradW.Mul(o.resid.T(), o.x)
	o.gradW.Scale(inv, o.gradW)
	o.gradW.Add(o.gradW, scaled(o.alpha, w))
	wRaw := params[:o.k*o.p]
	loss += 0.5 * o.alpha * floats.Dot(wRaw, wRaw)

	grad := o.lastGrad
	for r := 0; r < o.k; r++ {
		copy(grad[r*o.p:(r+1)*o.p], o.gradW.RawRowView(r))
	}
	gb := grad[o.k*o.p:]
	for j := range gb {
		gb[j] = mat.Sum(o.resid.ColView(j)) * inv
	}

	o.lastX = append(o.lastX[:0], params...)
	o.lastLoss = loss
}

func (o *softmaxObjective) Func(params []float64) float64 {
	o.eval(params)
	return o.lastLoss
}

func (o *softmaxObjective) Grad(grad, params []float64) {
	o.eval(params)
	copy(grad, o.lastGrad)
}

func scaled(f float64, m mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Scale(f, m)
	return &out
}

// fitSoftmax minimises the regularised loss with L-BFGS for at most maxIter
// major iterations
func fitSoftmax(x *mat.Dense, y []int, classes []string, c float64, maxIter int) (*classifier, fitResult, error) {
	k := len(classes)
	_, p := x.Dims()
	obj := newSoftmaxObjective(x, y, k, c)

	problem := optimize.Problem{Func: obj.Func, Grad: obj.Grad}
	settings := &optimize.Settings{
		MajorIterations:   maxIter,
		GradientThreshold: 1e-6,
	}
	init := make([]float64, k*p+k)
	result, err := optimize.Minimize(problem, init, settings, &optimize.LBFGS{})
	if result == nil {
		return nil, fitResult{}, fmt.Errorf("optimizer failed: %w", err)
	}
	for _, v := range result.X {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fitResult{}, fmt.Errorf("optimizer diverged (status %v)", result.Status)
		}
	}

	fr := fitResult{Iterations: result.Stats.MajorIterations, Status: result.Status.String(), Loss: result.F}
	if err != nil {
		fr.Status = err.Error()
	}

	params := result.X
	return &classifier{
		classes:   classes,
		coef:      mat.NewDense(k, p, append([]float64(nil), params[:k*p]...)),
		intercept: append([]float64(nil), params[k*p:]...),
	}, fr, nil
}

// probabilities returns one row of class probabilities per row of x
func (c *classifier) probabilities(x *mat.Dense) *mat.Dense {
	n, _ := x.Dims()
	out := mat.NewDense(n, len(c.classes), nil)
	out.Mul(x, c.coef.T())
	for i := 0; i < n; i++ {
		softmaxInPlace(out.RawRowView(i), c.intercept)
	}
	return out
}

// predict returns the most probable class per row
func (c *classifier) predict(x *mat.Dense) []string {
	probs := c.probabilities(x)
	n, _ := probs.Dims()
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = c.classes[floats.MaxIdx(probs.RawRowView(i))]
	}
	return out
}

func softmaxInPlace(row, intercept []float64) {
	floats.Add(row, intercept)
	lse := logSumExp(row)
	for j := range row {
		row[j] = math.Exp(row[j] - lse)
	}
}

func logSumExp(row []float64) float64 {
	m := floats.Max(row)
	s := 0.0
	for _, v := range row {
		s += math.Exp(v - m)
	}
	return m + math.Log(s)
}
