package ml

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// ErrModelUnavailable means the disease has no loaded classifier at all.
// This is not a prediction failure: the caller records a null result and
// must not fall back to the heuristic.
var ErrModelUnavailable = errors.New("model not loaded")

// Outcome sources, logged so operators can tell real model output from
// the rule-based fallback.
const (
	SourceModel     = "model"
	SourceHeuristic = "heuristic"
)

// Outcome is one disease's scored result.
type Outcome struct {
	Score  float64
	Source string
}

// Invoker turns a feature vector into a positive-class probability. When
// the classifier call fails (schema drift, shape mismatch, anything the
// ensemble throws) it degrades to the vector's deterministic heuristic
// score instead of propagating the error.
type Invoker struct {
	registry *Registry
	logger   *zap.Logger
}

func NewInvoker(registry *Registry, logger *zap.Logger) *Invoker {
	return &Invoker{registry: registry, logger: logger}
}

// Predict returns ErrModelUnavailable only when no classifier is loaded
// for the disease; every other failure degrades to the heuristic.
func (inv *Invoker) Predict(fv FeatureVector) (Outcome, error) {
	entry := inv.registry.Get(fv.Disease())
	if entry == nil {
		return Outcome{}, ErrModelUnavailable
	}

	score, err := invokeModel(entry, fv)
	if err != nil {
		score = fv.HeuristicScore()
		inv.logger.Warn("classifier call failed, using heuristic fallback",
			zap.String("disease", fv.Disease()),
			zap.String("source", SourceHeuristic),
			zap.Float64("score", score),
			zap.Error(err))
		return Outcome{Score: score, Source: SourceHeuristic}, nil
	}

	inv.logger.Debug("classifier prediction",
		zap.String("disease", fv.Disease()),
		zap.String("source", SourceModel),
		zap.Float64("score", score))
	return Outcome{Score: score, Source: SourceModel}, nil
}

func invokeModel(entry *Entry, fv FeatureVector) (score float64, err error) {
	// The ensemble indexes features positionally and may panic on
	// malformed input; a panic here must degrade, not crash the request.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("classifier panic: %v", r)
		}
	}()

	if !equalStrings(entry.Features, fv.Names()) {
		return 0, fmt.Errorf("feature schema mismatch for %s", fv.Disease())
	}
	vec := fv.Vector()
	if len(vec) < entry.Ensemble.NFeatures() {
		return 0, fmt.Errorf("model wants %d features, vector has %d",
			entry.Ensemble.NFeatures(), len(vec))
	}
	if entry.Scaler != nil {
		vec, err = entry.Scaler.Transform(vec)
		if err != nil {
			return 0, err
		}
	}

	groups := entry.Ensemble.NOutputGroups()
	var p float64
	if groups == 1 {
		// Binary ensemble with the sigmoid transform loaded: output is
		// P(class 1). The descriptor says which side is "disease present".
		p = entry.Ensemble.PredictSingle(vec, 0)
		if entry.PositiveIndex == 0 {
			p = 1 - p
		}
	} else {
		if entry.PositiveIndex < 0 || entry.PositiveIndex >= groups {
			return 0, fmt.Errorf("positive index %d out of range for %d output groups",
				entry.PositiveIndex, groups)
		}
		preds := make([]float64, groups)
		if err := entry.Ensemble.Predict(vec, 0, preds); err != nil {
			return 0, err
		}
		p = preds[entry.PositiveIndex]
	}

	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, fmt.Errorf("classifier returned non-finite probability")
	}
	return clamp01(p), nil
}
