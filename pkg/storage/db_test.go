package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/helmcode/leafdoc/pkg/knowledge"
	"github.com/helmcode/leafdoc/pkg/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_SaveAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	first := &Prediction{CreatedAt: base, PlantName: "Tomato", PredictedDisease: "Late blight", Category: "Fungal", ConfidenceScore: "90.00%"}
	second := &Prediction{CreatedAt: base.Add(time.Minute), PlantName: "Apple", PredictedDisease: "healthy", Category: "Healthy", ConfidenceScore: "95.00%", Filename: "leaf.jpg"}
	require.NoError(t, s.Save(ctx, first))
	require.NoError(t, s.Save(ctx, second))
	assert.NotEmpty(t, first.ID)

	items, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Apple", items[0].PlantName)
	assert.Equal(t, "leaf.jpg", items[0].Filename)
	assert.Equal(t, second.CreatedAt, items[0].CreatedAt)
	assert.Equal(t, first.ID, items[1].ID)

	items, err = s.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestStore_Stats(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalPredictions)
	assert.Empty(t, stats.TopPlant)

	results := []model.DiagnosisResult{
		{PlantName: "Tomato", Category: knowledge.CategoryFungal, ReplyStatus: model.ReplyParsed},
		{PlantName: "Tomato", Category: knowledge.CategoryViral, ReplyStatus: model.ReplyParsed},
		{PlantName: "Apple", Category: knowledge.CategoryHealthy, ReplyStatus: model.ReplyNoJSON},
	}
	for i := range results {
		require.NoError(t, s.Save(ctx, NewPrediction(&results[i], Meta{Provider: "gemini"})))
	}

	stats, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalPredictions)
	assert.Equal(t, "Tomato", stats.TopPlant)
	assert.Equal(t, map[string]int{"Fungal": 1, "Viral": 1, "Healthy": 1}, stats.Categories)
	assert.Equal(t, 1, stats.Degraded)
}

func TestNewPrediction(t *testing.T) {
	r := &model.DiagnosisResult{
		PlantName:        "Grape",
		PredictedDisease: "Black rot",
		ConfidenceScore:  "77.00%",
		Category:         knowledge.CategoryFungal,
		Class:            "Grape___Black_rot",
		ReplyStatus:      model.ReplyParsed,
	}
	p := NewPrediction(r, Meta{Filename: "g.png", Provider: "openai", Model: "gpt-4o"})

	assert.Equal(t, "Grape___Black_rot", p.Class)
	assert.Equal(t, "Fungal", p.Category)
	assert.Equal(t, "parsed", p.ReplyStatus)
	assert.Equal(t, "gpt-4o", p.Model)
	assert.False(t, p.Simulated)
	assert.Empty(t, p.ID)
}

func TestStore_ConcurrentSaves(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	const workers, perWorker = 32, 10
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for i := 0; i < perWorker; i++ {
				p := &Prediction{
					PlantName:        fmt.Sprintf("Plant%d", w),
					PredictedDisease: "healthy",
					Category:         "Healthy",
					ConfidenceScore:  "95.00%",
				}
				if err := s.Save(ctx, p); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, workers*perWorker, stats.TotalPredictions)
}

func TestStore_SimulatedRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	r := &model.DiagnosisResult{
		PlantName:        "Apple",
		PredictedDisease: "Apple Scab",
		ConfidenceScore:  "98.50%",
		Category:         knowledge.CategoryFungal,
		ReplyStatus:      model.ReplySimulated,
	}
	require.NoError(t, s.Save(ctx, NewPrediction(r, Meta{Provider: "simulation"})))

	items, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Simulated)
	assert.Equal(t, "simulated", items[0].ReplyStatus)
}
