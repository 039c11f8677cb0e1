package ml

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/yanqian/solarcast/internal/domain/features"
	"github.com/yanqian/solarcast/internal/domain/prediction"
)

// Config describes the network shape and the optimizer.
type Config struct {
	Epochs          int
	BatchSize       int
	LearningRate    float64
	ValidationSplit float64
	Dropout         float64
	HiddenUnits     []int
	// Seed makes runs reproducible when non-zero.
	Seed uint64
}

// DefaultConfig is 4→16→8→1 trained for 100 epochs.
func DefaultConfig() Config {
	return Config{
		Epochs:          100,
		BatchSize:       32,
		LearningRate:    0.01,
		ValidationSplit: 0.2,
		Dropout:         0.2,
		HiddenUnits:     []int{16, 8},
	}
}

// Trainer fits a fresh Network per call.
type Trainer struct {
	cfg    Config
	logger *slog.Logger
	runs   atomic.Uint64
}

// NewTrainer builds a trainer. Missing sizes and out-of-range rates take DefaultConfig
// values; a zero ValidationSplit or Dropout disables that feature.
func NewTrainer(cfg Config, logger *slog.Logger) *Trainer {
	def := DefaultConfig()
	if cfg.Epochs <= 0 {
		cfg.Epochs = def.Epochs
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = def.LearningRate
	}
	if cfg.ValidationSplit < 0 || cfg.ValidationSplit >= 1 {
		cfg.ValidationSplit = def.ValidationSplit
	}
	if cfg.Dropout < 0 || cfg.Dropout >= 1 {
		cfg.Dropout = def.Dropout
	}
	if len(cfg.HiddenUnits) == 0 {
		cfg.HiddenUnits = def.HiddenUnits
	}
	return &Trainer{cfg: cfg, logger: logger.With("component", "ml.trainer")}
}

// Train implements prediction.Trainer.
func (t *Trainer) Train(ctx context.Context, samples []prediction.Sample, progress prediction.ProgressFunc) (prediction.TrainedModel, error) {
	inputs := make([][]float64, len(samples))
	targets := make([]float64, len(samples))
	for i, s := range samples {
		inputs[i] = s.Input.Slice()
		targets[i] = s.Target
	}

	rng := t.newRand()
	net := NewNetwork(len(features.Vector{}), t.cfg.HiddenUnits, t.cfg.Dropout, rng)
	fit := FitConfig{
		Epochs:          t.cfg.Epochs,
		BatchSize:       t.cfg.BatchSize,
		LearningRate:    t.cfg.LearningRate,
		ValidationSplit: t.cfg.ValidationSplit,
	}
	stats, err := net.Fit(ctx, inputs, targets, fit, rng, func(es EpochStats) {
		if progress != nil {
			progress(prediction.Progress{
				Epoch:       es.Epoch,
				TotalEpochs: es.TotalEpochs,
				Loss:        es.Loss,
				ValLoss:     es.ValLoss,
			})
		}
	})
	if err != nil {
		t.logger.Warn("training failed", "samples", len(samples), "error", err)
		return prediction.TrainedModel{}, err
	}
	t.logger.Debug("training complete", "samples", len(samples), "loss", stats.Loss)
	return prediction.TrainedModel{
		Model:   Model{net: net},
		Epochs:  stats.Epoch,
		Loss:    stats.Loss,
		ValLoss: stats.ValLoss,
	}, nil
}

func (t *Trainer) newRand() *rand.Rand {
	run := t.runs.Add(1)
	seed := t.cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
		return rand.New(rand.NewPCG(seed, run))
	}
	return rand.New(rand.NewPCG(seed, 0))
}

// Model adapts a trained Network to prediction.Model.
type Model struct {
	net *Network
}

// Predict returns the normalized sun-hours output in (0,1).
func (m Model) Predict(v features.Vector) float64 {
	return m.net.PredictRaw(v.Slice())
}

var _ prediction.Trainer = (*Trainer)(nil)
var _ prediction.Model = Model{}
