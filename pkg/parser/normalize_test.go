package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/helmcode/leafdoc/pkg/knowledge"
	"github.com/helmcode/leafdoc/pkg/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func normalize(raw string) model.DiagnosisResult {
	return Normalize(raw, knowledge.Default, knowledge.DefaultFallback)
}

func TestNormalize_RoundTrip(t *testing.T) {
	raw := `Here is my assessment:
{"predicted_class":"Tomato___healthy","confidence":0.97,"analysis":"A","recommendation":"B"}
Let me know if you need more.`

	got := normalize(raw)

	assert.Equal(t, "Tomato", got.PlantName)
	assert.Equal(t, "healthy", got.PredictedDisease)
	assert.Equal(t, "97.00%", got.ConfidenceScore)
	assert.Equal(t, knowledge.CategoryHealthy, got.Category)
	assert.Equal(t, "A", got.BiologicalExplanation)
	assert.Equal(t, "B", got.RecommendedAction)
	assert.Equal(t, model.ReplyParsed, got.ReplyStatus)
	assert.False(t, got.UsedFallback)
}

func TestNormalize_NoJSONFallsBackToDefaultClass(t *testing.T) {
	got := normalize("I cannot analyze this.")
	want := knowledge.Lookup(knowledge.DefaultFallback)

	assert.Equal(t, "Apple", got.PlantName)
	assert.Equal(t, "healthy", got.PredictedDisease)
	assert.Equal(t, "95.00%", got.ConfidenceScore)
	assert.Equal(t, want.Category, got.Category)
	assert.Equal(t, knowledge.CategoryHealthy, got.Category)
	assert.Equal(t, want.ScientificReason, got.BiologicalExplanation)
	assert.Equal(t, want.RecommendedAction, got.RecommendedAction)
	assert.Equal(t, model.ReplyNoJSON, got.ReplyStatus)
	assert.True(t, got.UsedFallback)
}

func TestNormalize_IsTotal(t *testing.T) {
	inputs := []string{
		"",
		"{}",
		"{",
		"}{",
		"not json at all",
		`{"predicted_class": 42, "confidence": "high", "analysis": null}`,
		"{broken json}",
		"```json\n{}\n```",
	}
	for _, raw := range inputs {
		t.Run(raw, func(t *testing.T) {
			got := normalize(raw)
			assert.NotEmpty(t, got.PlantName)
			assert.NotEmpty(t, got.PredictedDisease)
			assert.NotEmpty(t, got.ConfidenceScore)
			assert.NotEmpty(t, got.Category)
			assert.NotEmpty(t, got.BiologicalExplanation)
			assert.NotEmpty(t, got.RecommendedAction)
		})
	}
}

func TestNormalize_DegradedIsDistinguishableFromHealthy(t *testing.T) {
	healthy := normalize(`{"predicted_class":"Apple___healthy","confidence":0.9}`)
	broken := normalize(`{"predicted_class": "Apple___healthy",,}`)

	assert.Equal(t, healthy.Category, broken.Category)
	assert.Equal(t, model.ReplyParsed, healthy.ReplyStatus)
	assert.Equal(t, model.ReplyMalformed, broken.ReplyStatus)
	assert.True(t, broken.ReplyStatus.Degraded())
	assert.False(t, healthy.ReplyStatus.Degraded())
}

// An explicit zero confidence is reported as the 95% default. This mirrors
// the behaviour clients already depend on, even though it hides a real 0.
func TestNormalize_ZeroConfidenceUsesDefault(t *testing.T) {
	got := normalize(`{"predicted_class":"Potato___Late_blight","confidence":0}`)
	assert.Equal(t, "95.00%", got.ConfidenceScore)

	got = normalize(`{"predicted_class":"Potato___Late_blight"}`)
	assert.Equal(t, "95.00%", got.ConfidenceScore)
}

func TestNormalize_ConfidenceAsString(t *testing.T) {
	got := normalize(`{"predicted_class":"Potato___Late_blight","confidence":"0.8125"}`)
	assert.Equal(t, "81.25%", got.ConfidenceScore)
}

func TestNormalize_ClassWithoutSeparatorUsesFallback(t *testing.T) {
	got := normalize(`{"predicted_class":"Tomato","confidence":0.5,"analysis":"Spots everywhere"}`)

	assert.Equal(t, "Apple", got.PlantName)
	assert.Equal(t, "healthy", got.PredictedDisease)
	assert.Equal(t, knowledge.DefaultFallback, got.Class)
	assert.Equal(t, knowledge.CategoryHealthy, got.Category)
	assert.Equal(t, "50.00%", got.ConfidenceScore)
	assert.Equal(t, "Spots everywhere", got.BiologicalExplanation)
	assert.Equal(t, model.ReplyParsed, got.ReplyStatus)
	assert.True(t, got.UsedFallback)
}

func TestNormalize_UnknownClassKeepsNamesButUsesFallbackExplanation(t *testing.T) {
	got := normalize(`{"predicted_class":"Mango___Powdery_mildew","confidence":0.6}`)
	fallback := knowledge.Lookup(knowledge.DefaultFallback)

	assert.Equal(t, "Mango", got.PlantName)
	assert.Equal(t, "Powdery mildew", got.PredictedDisease)
	assert.Equal(t, fallback.Category, got.Category)
	assert.Equal(t, fallback.ScientificReason, got.BiologicalExplanation)
	assert.False(t, got.UsedFallback)
}

func TestNormalize_KnownClassFillsFromTable(t *testing.T) {
	got := normalize("```json\n{\"predicted_class\":\"Corn_(maize)___Common_rust_\",\"confidence\":0.88}\n```")
	rec := knowledge.Lookup("Corn_(maize)___Common_rust_")

	assert.Equal(t, "Corn (maize)", got.PlantName)
	assert.Equal(t, "Common rust ", got.PredictedDisease)
	assert.Equal(t, "88.00%", got.ConfidenceScore)
	assert.Equal(t, knowledge.CategoryFungal, got.Category)
	assert.Equal(t, rec.ScientificReason, got.BiologicalExplanation)
	assert.Equal(t, rec.RecommendedAction, got.RecommendedAction)
}

func TestNormalize_CustomFallback(t *testing.T) {
	got := Normalize("nothing here", knowledge.Default, "Tomato___Late_blight")
	assert.Equal(t, "Tomato", got.PlantName)
	assert.Equal(t, "Late blight", got.PredictedDisease)
	assert.Equal(t, knowledge.CategoryUndetermined, got.Category)
}

func TestFormatConfidence(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.97, "97.00%"},
		{1, "100.00%"},
		{0.123456, "12.35%"},
		{0, "95.00%"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, FormatConfidence(tt.in))
	}
}
