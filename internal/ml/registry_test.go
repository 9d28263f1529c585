package ml

import (
	"os"
	"path/filepath"
	"testing"

	"medml-backend/internal/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadRegistryMissingDir(t *testing.T) {
	r := LoadRegistry(filepath.Join(t.TempDir(), "nope"), zap.NewNop())
	require.Empty(t, r.Loaded())
	for _, d := range domain.Diseases {
		require.Nil(t, r.Get(d))
	}
}

func TestLoadRegistryBadDescriptorsAreIsolated(t *testing.T) {
	dir := t.TempDir()

	// diabetes: descriptor with the wrong feature order
	require.NoError(t, os.WriteFile(filepath.Join(dir, "diabetes.json"),
		[]byte(`{"model_file":"diabetes.model","format":"xgboost","features":["glucose","age"]}`), 0o644))

	// liver: descriptor pointing at a model file that does not exist
	require.NoError(t, os.WriteFile(filepath.Join(dir, "liver.json"),
		[]byte(`{"model_file":"missing.model","format":"lightgbm","features":["age","gender","total_bilirubin","direct_bilirubin","alkaline_phosphotase","alamine_aminotransferase","aspartate_aminotransferase","total_proteins","albumin","ag_ratio"]}`), 0o644))

	// heart: unparseable descriptor
	require.NoError(t, os.WriteFile(filepath.Join(dir, "heart.json"),
		[]byte(`{not json`), 0o644))

	r := LoadRegistry(dir, zap.NewNop())
	require.Empty(t, r.Loaded())
	for _, d := range domain.Diseases {
		require.Nil(t, r.Get(d))
	}
}

func TestScalerTransform(t *testing.T) {
	s := &Scaler{Mean: []float64{10, 0}, Scale: []float64{2, 0}}

	out, err := s.Transform([]float64{14, 3})
	require.NoError(t, err)
	require.Equal(t, []float64{2, 3}, out) // zero scale treated as 1

	_, err = s.Transform([]float64{1})
	require.Error(t, err)
}
