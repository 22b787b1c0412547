package classifier

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// softmaxRegression is a multinomial logistic regression over sparse features.
type softmaxRegression struct {
	weights [][]float64 // [class][feature]
	bias    []float64
}

type fitParams struct {
	classes  int
	features int
	maxIter  int
	c        float64
}

// softmaxObjective is the regularized cross-entropy of a softmax model over a
// flat parameter vector: class k's weights live at [k*features, (k+1)*features)
// and the biases follow all weights.
type softmaxObjective struct {
	x        []sparseVector
	y        []int
	classes  int
	features int
	l2       float64
	probs    []float64
}

func (o *softmaxObjective) unpack(params []float64) *softmaxRegression {
	m := &softmaxRegression{
		weights: make([][]float64, o.classes),
		bias:    params[o.classes*o.features:],
	}
	for k := range m.weights {
		m.weights[k] = params[k*o.features : (k+1)*o.features]
	}
	return m
}

// eval returns the mean cross-entropy plus l2/2*||W||^2 at params.
// When grad is non-nil the gradient is written into it.
func (o *softmaxObjective) eval(params, grad []float64) float64 {
	m := o.unpack(params)
	nw := o.classes * o.features
	w := params[:nw]

	loss := 0.5 * o.l2 * floats.Dot(w, w)
	if grad != nil {
		floats.ScaleTo(grad[:nw], o.l2, w)
		for k := nw; k < len(grad); k++ {
			grad[k] = 0
		}
	}

	inv := 1 / float64(len(o.x))
	for i, vec := range o.x {
		m.probabilities(vec, o.probs)
		loss -= inv * math.Log(math.Max(o.probs[o.y[i]], 1e-300))
		if grad == nil {
			continue
		}
		for k := 0; k < o.classes; k++ {
			g := o.probs[k]
			if k == o.y[i] {
				g -= 1
			}
			g *= inv
			grad[nw+k] += g
			row := grad[k*o.features : (k+1)*o.features]
			for t, j := range vec.idx {
				row[j] += g * vec.val[t]
			}
		}
	}
	return loss
}

// fitSoftmax minimizes mean cross-entropy plus an L2 penalty of 1/(2*C*n)*||W||^2
// with L-BFGS, stopping after at most p.maxIter major iterations. Hitting the
// iteration cap is not an error; the last location reached is kept. It returns
// the fitted model and the number of iterations taken.
func fitSoftmax(x []sparseVector, y []int, p fitParams) (*softmaxRegression, int) {
	obj := &softmaxObjective{
		x:        x,
		y:        y,
		classes:  p.classes,
		features: p.features,
		probs:    make([]float64, p.classes),
	}
	params := make([]float64, p.classes*(p.features+1))

	n := len(x)
	if n == 0 || p.maxIter <= 0 {
		return obj.unpack(params), 0
	}
	obj.l2 = 1 / (p.c * float64(n))

	problem := optimize.Problem{
		Func: func(params []float64) float64 {
			return obj.eval(params, nil)
		},
		Grad: func(grad, params []float64) {
			obj.eval(params, grad)
		},
	}
	settings := &optimize.Settings{
		MajorIterations:   p.maxIter,
		GradientThreshold: 1e-6,
	}

	result, err := optimize.Minimize(problem, params, settings, &optimize.LBFGS{})
	if err != nil && result == nil {
		return obj.unpack(params), 0
	}
	return obj.unpack(result.X), result.Stats.MajorIterations
}

// probabilities writes the softmax class distribution for vec into out.
func (m *softmaxRegression) probabilities(vec sparseVector, out []float64) {
	for k := range m.weights {
		s := m.bias[k]
		for t, j := range vec.idx {
			s += m.weights[k][j] * vec.val[t]
		}
		out[k] = s
	}

	maxScore := floats.Max(out)
	for k := range out {
		out[k] = math.Exp(out[k] - maxScore)
	}
	floats.Scale(1/floats.Sum(out), out)
}

// predict returns the highest scoring class; ties go to the lowest index.
func (m *softmaxRegression) predict(vec sparseVector) int {
	best, bestScore := 0, math.Inf(-1)
	for k := range m.weights {
		s := m.bias[k]
		for t, j := range vec.idx {
			s += m.weights[k][j] * vec.val[t]
		}
		if s > bestScore {
			best, bestScore = k, s
		}
	}
	return best
}
