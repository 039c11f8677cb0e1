// Package ml implements the small dense regressor that learns sun hours from weather
// features.
package ml

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

type activation int

const (
	relu activation = iota
	sigmoid
)

func (a activation) apply(v float64) float64 {
	if a == relu {
		return math.Max(0, v)
	}
	return 1 / (1 + math.Exp(-v))
}

// derivative in terms of the pre-activation z and the activation output.
func (a activation) derivative(z, out float64) float64 {
	if a == relu {
		if z > 0 {
			return 1
		}
		return 0
	}
	return out * (1 - out)
}

type layer struct {
	w   *mat.Dense // in x out
	b   []float64
	act activation
}

func newLayer(in, out int, act activation, rng *rand.Rand) *layer {
	limit := math.Sqrt(6 / float64(in+out))
	data := make([]float64, in*out)
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * limit
	}
	return &layer{w: mat.NewDense(in, out, data), b: make([]float64, out), act: act}
}

func (l *layer) forward(x *mat.Dense) (z, a *mat.Dense) {
	z = &mat.Dense{}
	z.Mul(x, l.w)
	rows, cols := z.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			z.Set(i, j, z.At(i, j)+l.b[j])
		}
	}
	a = &mat.Dense{}
	a.Apply(func(_, _ int, v float64) float64 { return l.act.apply(v) }, z)
	return z, a
}

// pass keeps the intermediate values of one forward pass for backpropagation.
type pass struct {
	inputs []*mat.Dense
	zs     []*mat.Dense
	outs   []*mat.Dense
	mask   *mat.Dense
}

// Network is a feed-forward regressor: relu hidden layers, inverted dropout after the
// first hidden layer and a single sigmoid output.
type Network struct {
	layers  []*layer
	dropout float64
}

// NewNetwork initializes weights with Glorot-uniform values and zero biases.
func NewNetwork(inputs int, hidden []int, dropout float64, rng *rand.Rand) *Network {
	n := &Network{dropout: dropout}
	in := inputs
	for _, units := range hidden {
		n.layers = append(n.layers, newLayer(in, units, relu, rng))
		in = units
	}
	n.layers = append(n.layers, newLayer(in, 1, sigmoid, rng))
	return n
}

func (n *Network) forward(x *mat.Dense, rng *rand.Rand) (*mat.Dense, pass) {
	var p pass
	cur := x
	for i, l := range n.layers {
		z, a := l.forward(cur)
		p.inputs = append(p.inputs, cur)
		p.zs = append(p.zs, z)
		p.outs = append(p.outs, a)
		cur = a
		if i == 0 && rng != nil && n.dropout > 0 && len(n.layers) > 1 {
			p.mask = dropoutMask(a, n.dropout, rng)
			dropped := &mat.Dense{}
			dropped.MulElem(a, p.mask)
			cur = dropped
		}
	}
	return cur, p
}

func dropoutMask(like *mat.Dense, rate float64, rng *rand.Rand) *mat.Dense {
	rows, cols := like.Dims()
	keep := 1 - rate
	mask := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if rng.Float64() < keep {
				mask.Set(i, j, 1/keep)
			}
		}
	}
	return mask
}

type gradients struct {
	w []*mat.Dense
	b [][]float64
}

// backward propagates dOut (the loss gradient w.r.t. the network output).
func (n *Network) backward(p pass, dOut *mat.Dense) gradients {
	g := gradients{w: make([]*mat.Dense, len(n.layers)), b: make([][]float64, len(n.layers))}
	grad := dOut
	for i := len(n.layers) - 1; i >= 0; i-- {
		l := n.layers[i]
		z, out := p.zs[i], p.outs[i]
		if i == 0 && p.mask != nil {
			masked := &mat.Dense{}
			masked.MulElem(grad, p.mask)
			grad = masked
		}
		dz := &mat.Dense{}
		dz.Apply(func(r, c int, v float64) float64 {
			return v * l.act.derivative(z.At(r, c), out.At(r, c))
		}, grad)

		dw := &mat.Dense{}
		dw.Mul(p.inputs[i].T(), dz)
		g.w[i] = dw

		rows, cols := dz.Dims()
		db := make([]float64, cols)
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				db[c] += dz.At(r, c)
			}
		}
		g.b[i] = db

		if i > 0 {
			dx := &mat.Dense{}
			dx.Mul(dz, l.w.T())
			grad = dx
		}
	}
	return g
}

// PredictRaw runs inference on one input row.
func (n *Network) PredictRaw(input []float64) float64 {
	out, _ := n.forward(mat.NewDense(1, len(input), append([]float64(nil), input...)), nil)
	return out.At(0, 0)
}

// EpochStats is reported after every epoch.
type EpochStats struct {
	Epoch       int
	TotalEpochs int
	Loss        float64
	ValLoss     *float64
}

// FitConfig holds the optimizer settings.
type FitConfig struct {
	Epochs          int
	BatchSize       int
	LearningRate    float64
	ValidationSplit float64
}

// ErrTooFewSamples is returned when there is nothing to fit.
var ErrTooFewSamples = errors.New("at least 2 samples are required")

// Fit trains the network with Adam on mean squared error. The trailing
// ValidationSplit share of the samples is held out; the rest is shuffled every epoch.
func (n *Network) Fit(ctx context.Context, inputs [][]float64, targets []float64, cfg FitConfig, rng *rand.Rand, onEpoch func(EpochStats)) (EpochStats, error) {
	if len(inputs) != len(targets) {
		return EpochStats{}, fmt.Errorf("inputs and targets differ in length: %d != %d", len(inputs), len(targets))
	}
	if len(inputs) < 2 {
		return EpochStats{}, ErrTooFewSamples
	}
	if cfg.Epochs <= 0 || cfg.BatchSize <= 0 {
		return EpochStats{}, fmt.Errorf("epochs and batch size must be positive")
	}

	trainCount := int(float64(len(inputs)) * (1 - cfg.ValidationSplit))
	trainCount = max(1, min(trainCount, len(inputs)))
	valX, valY := inputs[trainCount:], targets[trainCount:]

	opt := newAdam(cfg.LearningRate, n.layers)
	order := make([]int, trainCount)
	for i := range order {
		order[i] = i
	}

	var last EpochStats
	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return last, err
		}
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		var sum float64
		for start := 0; start < trainCount; start += cfg.BatchSize {
			end := min(start+cfg.BatchSize, trainCount)
			x, y := batch(inputs, targets, order[start:end])
			out, p := n.forward(x, rng)
			loss, dOut := mse(out, y)
			sum += loss * float64(end-start)
			opt.step(n.layers, n.backward(p, dOut))
		}

		last = EpochStats{Epoch: epoch, TotalEpochs: cfg.Epochs, Loss: sum / float64(trainCount)}
		if len(valX) > 0 {
			idx := make([]int, len(valX))
			for i := range idx {
				idx[i] = i
			}
			x, y := batch(valX, valY, idx)
			out, _ := n.forward(x, nil)
			valLoss, _ := mse(out, y)
			last.ValLoss = &valLoss
		}
		if !finite(last.Loss) || (last.ValLoss != nil && !finite(*last.ValLoss)) {
			return last, fmt.Errorf("loss is not finite at epoch %d", epoch)
		}
		if onEpoch != nil {
			onEpoch(last)
		}
	}
	return last, nil
}

func batch(inputs [][]float64, targets []float64, idx []int) (*mat.Dense, []float64) {
	cols := len(inputs[idx[0]])
	x := mat.NewDense(len(idx), cols, nil)
	y := make([]float64, len(idx))
	for r, i := range idx {
		x.SetRow(r, inputs[i])
		y[r] = targets[i]
	}
	return x, y
}

// mse returns the mean squared error and its gradient w.r.t. out.
func mse(out *mat.Dense, y []float64) (float64, *mat.Dense) {
	rows := len(y)
	grad := mat.NewDense(rows, 1, nil)
	var sum float64
	for r := 0; r < rows; r++ {
		diff := out.At(r, 0) - y[r]
		sum += diff * diff
		grad.Set(r, 0, 2*diff/float64(rows))
	}
	return sum / float64(rows), grad
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
