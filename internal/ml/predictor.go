package ml

import (
	"fmt"
	"time"

	"gayabelajar-api/internal/features"

	"github.com/rs/zerolog/log"
)

// Result is the outcome of one prediction.
type Result struct {
	Label string
	// Probabilities is nil when the classifier cannot estimate them.
	Probabilities map[string]float64
}

// Predictor runs scaler then classifier over a feature vector. It is either
// ready or degraded for its whole lifetime and holds no mutable state, so it
// is safe for concurrent use.
type Predictor struct {
	artifacts *Artifacts
	loadErr   error
	metrics   MetricsInterface
}

// New loads the artifacts and returns a predictor. A load failure is logged
// and yields a degraded predictor rather than an error.
func New(modelPath, scalerPath string) *Predictor {
	return NewWithMetrics(modelPath, scalerPath, nil)
}

func NewWithMetrics(modelPath, scalerPath string, metrics MetricsInterface) *Predictor {
	log.Info().Str("model_path", modelPath).Str("scaler_path", scalerPath).Msg("loading model artifacts")

	artifacts, err := LoadArtifacts(modelPath, scalerPath)
	if err != nil {
		log.Error().
			Err(err).
			Str("model_path", modelPath).
			Str("scaler_path", scalerPath).
			Msg("model artifacts unavailable, predictions disabled")
	} else {
		log.Info().
			Str("model_kind", artifacts.ModelKind).
			Str("scaler_kind", artifacts.ScalerKind).
			Strs("classes", artifacts.Classifier.Classes()).
			Msg("model and scaler loaded successfully")
	}
	return NewFromArtifacts(artifacts, err, metrics)
}

// NewFromArtifacts builds a predictor from an already attempted load. The
// predictor is degraded when artifacts is nil or loadErr is non-nil.
func NewFromArtifacts(artifacts *Artifacts, loadErr error, metrics MetricsInterface) *Predictor {
	if artifacts == nil && loadErr == nil {
		loadErr = ErrModelUnavailable
	}
	if loadErr != nil {
		artifacts = nil
	}
	p := &Predictor{
		artifacts: artifacts,
		loadErr:   loadErr,
		metrics:   metrics,
	}

	if metrics != nil {
		metrics.MLModelAvailableSet(p.Available())
		if p.Available() && !artifacts.ModelTime.IsZero() {
			metrics.MLModelAgeSet(time.Since(artifacts.ModelTime).Seconds())
		}
	}
	return p
}

// Available reports whether the predictor is ready.
func (p *Predictor) Available() bool {
	return p != nil && p.artifacts != nil
}

// LoadError returns why the predictor is degraded, or nil.
func (p *Predictor) LoadError() error {
	if p == nil {
		return ErrModelUnavailable
	}
	return p.loadErr
}

// Artifacts returns the loaded artifacts, or nil when degraded.
func (p *Predictor) Artifacts() *Artifacts {
	if p == nil {
		return nil
	}
	return p.artifacts
}

// Predict classifies one feature vector. It returns ErrModelUnavailable when
// degraded; any other error, including a panic inside the model, is an
// inference failure.
func (p *Predictor) Predict(v features.Vector) (res Result, err error) {
	if !p.Available() {
		return Result{}, ErrModelUnavailable
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("inference panic: %v", r)
		}
		if p.metrics != nil {
			p.metrics.MLLatencyObserve(time.Since(start).Seconds())
			if err != nil {
				p.metrics.MLFailuresInc()
			} else {
				p.metrics.MLPredictionsInc(res.Label)
			}
		}
		if err != nil {
			log.Error().Err(err).Interface("features", v.Map()).Msg("prediction failed")
			res = Result{}
		}
	}()

	scaled, err := p.artifacts.Scaler.Transform(v.Slice())
	if err != nil {
		return Result{}, fmt.Errorf("scaler transform: %w", err)
	}

	label, err := p.artifacts.Classifier.Predict(scaled)
	if err != nil {
		return Result{}, fmt.Errorf("classifier predict: %w", err)
	}
	res = Result{Label: label}

	if pc, ok := p.artifacts.Classifier.(ProbabilisticClassifier); ok {
		probs, err := pc.PredictProba(scaled)
		if err != nil {
			return Result{}, fmt.Errorf("classifier predict_proba: %w", err)
		}
		classes := pc.Classes()
		if len(probs) != len(classes) {
			return Result{}, fmt.Errorf("classifier returned %d probabilities for %d classes", len(probs), len(classes))
		}
		res.Probabilities = make(map[string]float64, len(classes))
		var top float64
		for i, class := range classes {
			if !finite(probs[i]) {
				return Result{}, fmt.Errorf("classifier returned non-finite probability for %q", class)
			}
			res.Probabilities[class] = probs[i]
			if probs[i] > top {
				top = probs[i]
			}
		}
		if p.metrics != nil {
			p.metrics.MLPredictionScoresObserve(top)
		}
	}

	log.Debug().
		Interface("features", v.Map()).
		Str("label", res.Label).
		Interface("probabilities", res.Probabilities).
		Msg("prediction successful")

	return res, nil
}
