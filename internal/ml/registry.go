package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"medml-backend/internal/domain"

	"github.com/dmitryikh/leaves"
	"go.uber.org/zap"
)

// Descriptor sits next to each serialized model (<disease>.json) and pins
// the metadata the process must not guess: which file to load, how it was
// serialized, the exact training-time feature order, and which output
// index is the "disease present" class.
type Descriptor struct {
	ModelFile     string   `json:"model_file"`
	Format        string   `json:"format"` // "xgboost" or "lightgbm"
	Features      []string `json:"features"`
	PositiveIndex int      `json:"positive_index"`
	ScalerFile    string   `json:"scaler_file,omitempty"`
}

// Scaler is an optional standard-scaler transform applied before the
// classifier (only the heart model ships one). Absence means the raw
// vector goes to the classifier directly.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *Scaler) Transform(vec []float64) ([]float64, error) {
	if len(s.Mean) != len(vec) || len(s.Scale) != len(vec) {
		return nil, fmt.Errorf("scaler expects %d features, got %d", len(s.Mean), len(vec))
	}
	out := make([]float64, len(vec))
	for i, v := range vec {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out, nil
}

// Entry is one loaded classifier plus its descriptor metadata.
type Entry struct {
	Disease       string
	Ensemble      *leaves.Ensemble
	Features      []string
	PositiveIndex int
	Scaler        *Scaler
}

// Registry holds the loaded classifiers. It is populated once at startup
// and read-only afterwards, so concurrent reads need no locking.
type Registry struct {
	entries map[string]*Entry
	logger  *zap.Logger
}

// LoadRegistry loads every disease's model from dir. A missing or broken
// model is logged and stored as nil so the other diseases still load; it
// never fails the process.
func LoadRegistry(dir string, logger *zap.Logger) *Registry {
	r := &Registry{entries: map[string]*Entry{}, logger: logger}
	for _, disease := range domain.Diseases {
		entry, err := loadEntry(dir, disease)
		if err != nil {
			logger.Error("model load failed, predictions unavailable for disease",
				zap.String("disease", disease),
				zap.Error(err))
			r.entries[disease] = nil
			continue
		}
		// Feature order is logged once per process for auditability: a
		// drift between descriptor and training schema produces wrong but
		// plausible scores with no error.
		logger.Info("model loaded",
			zap.String("disease", disease),
			zap.Strings("features", entry.Features),
			zap.Int("positive_index", entry.PositiveIndex),
			zap.Bool("scaler", entry.Scaler != nil))
		r.entries[disease] = entry
	}
	return r
}

func loadEntry(dir, disease string) (*Entry, error) {
	raw, err := os.ReadFile(filepath.Join(dir, disease+".json"))
	if err != nil {
		return nil, fmt.Errorf("read descriptor: %w", err)
	}
	var desc Descriptor
	if err := json.Unmarshal(raw, &desc); err != nil {
		return nil, fmt.Errorf("parse descriptor: %w", err)
	}
	if len(desc.Features) == 0 {
		return nil, fmt.Errorf("descriptor for %s lists no features", disease)
	}
	if !equalStrings(desc.Features, FeatureNames(disease)) {
		return nil, fmt.Errorf("descriptor feature order does not match the %s mapper", disease)
	}

	modelPath := filepath.Join(dir, desc.ModelFile)
	var ensemble *leaves.Ensemble
	switch desc.Format {
	case "xgboost":
		ensemble, err = leaves.XGEnsembleFromFile(modelPath, true)
	case "lightgbm":
		ensemble, err = leaves.LGEnsembleFromFile(modelPath, true)
	default:
		return nil, fmt.Errorf("unknown model format %q", desc.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s ensemble: %w", desc.Format, err)
	}
	if ensemble.NFeatures() > len(desc.Features) {
		return nil, fmt.Errorf("model wants %d features but descriptor lists %d",
			ensemble.NFeatures(), len(desc.Features))
	}

	entry := &Entry{
		Disease:       disease,
		Ensemble:      ensemble,
		Features:      desc.Features,
		PositiveIndex: desc.PositiveIndex,
	}
	if desc.ScalerFile != "" {
		sraw, err := os.ReadFile(filepath.Join(dir, desc.ScalerFile))
		if err != nil {
			return nil, fmt.Errorf("read scaler: %w", err)
		}
		var scaler Scaler
		if err := json.Unmarshal(sraw, &scaler); err != nil {
			return nil, fmt.Errorf("parse scaler: %w", err)
		}
		entry.Scaler = &scaler
	}
	return entry, nil
}

// Get returns the entry for a disease key, or nil when the model failed to
// load. Callers treat nil as "prediction unavailable", distinct from a
// prediction that ran and failed.
func (r *Registry) Get(disease string) *Entry {
	return r.entries[disease]
}

// Loaded lists the disease keys with a usable classifier.
func (r *Registry) Loaded() []string {
	var keys []string
	for _, d := range domain.Diseases {
		if r.entries[d] != nil {
			keys = append(keys, d)
		}
	}
	return keys
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
