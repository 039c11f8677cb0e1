package ml

import (
	"context"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/solarcast/internal/domain/features"
	"github.com/yanqian/solarcast/internal/domain/prediction"
)

func syntheticSamples(n int, seed uint64) []prediction.Sample {
	rng := rand.New(rand.NewPCG(seed, 1))
	samples := make([]prediction.Sample, 0, n)
	for i := 0; i < n; i++ {
		v := features.Vector{rng.Float64(), rng.Float64(), rng.Float64(), rng.Float64()}
		samples = append(samples, prediction.Sample{Input: v, Target: 0.1 + 0.6*(1-v[2])})
	}
	return samples
}

func newTestTrainer(cfg Config) *Trainer {
	return NewTrainer(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestTrainerReducesLossAndReportsEveryEpoch(t *testing.T) {
	trainer := newTestTrainer(Config{Seed: 7})

	var events []prediction.Progress
	trained, err := trainer.Train(context.Background(), syntheticSamples(240, 3), func(p prediction.Progress) {
		events = append(events, p)
	})
	require.NoError(t, err)
	require.Len(t, events, 100)
	for i, ev := range events {
		require.Equal(t, i+1, ev.Epoch)
		require.Equal(t, 100, ev.TotalEpochs)
		require.NotNil(t, ev.ValLoss)
	}
	require.Less(t, events[len(events)-1].Loss, events[0].Loss*0.75)
	require.Equal(t, 100, trained.Epochs)
	require.Equal(t, events[99].Loss, trained.Loss)

	sunny := trained.Model.Predict(features.Vector{0.5, 0.5, 0, 0.5})
	overcast := trained.Model.Predict(features.Vector{0.5, 0.5, 1, 0.5})
	require.Greater(t, sunny, overcast)
	require.Greater(t, sunny, 0.0)
	require.Less(t, sunny, 1.0)
}

func TestTrainerIsDeterministicWithSeed(t *testing.T) {
	samples := syntheticSamples(64, 11)
	cfg := Config{Seed: 42, Epochs: 5}

	a, err := newTestTrainer(cfg).Train(context.Background(), samples, nil)
	require.NoError(t, err)
	b, err := newTestTrainer(cfg).Train(context.Background(), samples, nil)
	require.NoError(t, err)

	v := features.Vector{0.2, 0.3, 0.4, 0.5}
	require.Equal(t, a.Model.Predict(v), b.Model.Predict(v))
	require.Equal(t, a.Loss, b.Loss)
}

func TestTrainerRejectsTooFewSamples(t *testing.T) {
	_, err := newTestTrainer(Config{Seed: 1}).Train(context.Background(), syntheticSamples(1, 1), nil)
	require.ErrorIs(t, err, ErrTooFewSamples)
}

func TestTrainerNoValidationSetLeavesValLossNil(t *testing.T) {
	trained, err := newTestTrainer(Config{Seed: 1, Epochs: 2, ValidationSplit: 0}).Train(context.Background(), syntheticSamples(4, 2), nil)
	require.NoError(t, err)
	require.Nil(t, trained.ValLoss)
}

func TestTrainerFailsOnNonFiniteLoss(t *testing.T) {
	samples := syntheticSamples(10, 5)
	samples[0].Target = math.NaN()
	_, err := newTestTrainer(Config{Seed: 1, Epochs: 3}).Train(context.Background(), samples, nil)
	require.ErrorContains(t, err, "not finite")
}

func TestTrainerHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestTrainer(Config{Seed: 1}).Train(ctx, syntheticSamples(20, 5), nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestTrainerDefaults(t *testing.T) {
	trainer := newTestTrainer(Config{})
	require.Equal(t, 100, trainer.cfg.Epochs)
	require.Equal(t, 32, trainer.cfg.BatchSize)
	require.Equal(t, 0.01, trainer.cfg.LearningRate)
	require.Equal(t, 0.2, newTestTrainer(Config{ValidationSplit: 1.5}).cfg.ValidationSplit)
	require.Equal(t, []int{16, 8}, trainer.cfg.HiddenUnits)
}

func TestBackwardMatchesNumericGradient(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	net := NewNetwork(4, []int{3}, 0, rng)
	inputs := [][]float64{{0.1, 0.9, 0.3, 0.5}, {0.7, 0.2, 0.8, 0.4}}
	targets := []float64{0.3, 0.6}
	x, y := batch(inputs, targets, []int{0, 1})

	out, p := net.forward(x, nil)
	_, dOut := mse(out, y)
	grads := net.backward(p, dOut)

	const h = 1e-6
	w := net.layers[0].w
	orig := w.At(1, 2)
	w.Set(1, 2, orig+h)
	up, _ := net.forward(x, nil)
	lossUp, _ := mse(up, y)
	w.Set(1, 2, orig-h)
	down, _ := net.forward(x, nil)
	lossDown, _ := mse(down, y)
	w.Set(1, 2, orig)

	numeric := (lossUp - lossDown) / (2 * h)
	require.InDelta(t, numeric, grads.w[0].At(1, 2), 1e-6)
}
