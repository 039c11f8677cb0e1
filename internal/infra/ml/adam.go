package ml

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-7
)

type moments struct {
	m, v []float64
}

type adam struct {
	lr      float64
	t       int
	weights []moments
	biases  []moments
}

func newAdam(lr float64, layers []*layer) *adam {
	o := &adam{lr: lr}
	for _, l := range layers {
		n := len(l.w.RawMatrix().Data)
		o.weights = append(o.weights, moments{m: make([]float64, n), v: make([]float64, n)})
		o.biases = append(o.biases, moments{m: make([]float64, len(l.b)), v: make([]float64, len(l.b))})
	}
	return o
}

func (o *adam) step(layers []*layer, g gradients) {
	o.t++
	c1 := 1 - math.Pow(adamBeta1, float64(o.t))
	c2 := 1 - math.Pow(adamBeta2, float64(o.t))
	for i, l := range layers {
		o.update(l.w.RawMatrix().Data, flatten(g.w[i]), o.weights[i], c1, c2)
		o.update(l.b, g.b[i], o.biases[i], c1, c2)
	}
}

func (o *adam) update(params, grads []float64, mo moments, c1, c2 float64) {
	for k := range params {
		gk := grads[k]
		mo.m[k] = adamBeta1*mo.m[k] + (1-adamBeta1)*gk
		mo.v[k] = adamBeta2*mo.v[k] + (1-adamBeta2)*gk*gk
		mHat := mo.m[k] / c1
		vHat := mo.v[k] / c2
		params[k] -= o.lr * mHat / (math.Sqrt(vHat) + adamEpsilon)
	}
}

func flatten(d *mat.Dense) []float64 {
	rows, cols := d.Dims()
	raw := d.RawMatrix()
	if raw.Stride == cols {
		return raw.Data[:rows*cols]
	}
	out := make([]float64, 0, rows*cols)
	for r := 0; r < rows; r++ {
		out = append(out, raw.Data[r*raw.Stride:r*raw.Stride+cols]...)
	}
	return out
}
