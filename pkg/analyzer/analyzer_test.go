package analyzer

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/helmcode/leafdoc/pkg/imaging"
	"github.com/helmcode/leafdoc/pkg/knowledge"
	"github.com/helmcode/leafdoc/pkg/llm"
	"github.com/helmcode/leafdoc/pkg/model"
)

type fakeLLM struct {
	reply  string
	err    error
	prompt string
	img    llm.Image
	wait   bool
}

func (f *fakeLLM) Analyze(ctx context.Context, prompt string, img llm.Image) (string, error) {
	f.prompt = prompt
	f.img = img
	if f.wait {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

func (f *fakeLLM) Name() string     { return "fake" }
func (f *fakeLLM) GetModel() string { return "fake-1" }

func pngLeaf(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func TestDiagnose(t *testing.T) {
	fake := &fakeLLM{reply: `{"predicted_class":"Potato___Late_blight","confidence":0.91,"analysis":"lesions"}`}
	a, err := NewWithLLM(fake)
	require.NoError(t, err)

	res, err := a.Diagnose(context.Background(), pngLeaf(t))
	require.NoError(t, err)

	assert.Equal(t, "Potato", res.PlantName)
	assert.Equal(t, "Late blight", res.PredictedDisease)
	assert.Equal(t, "91.00%", res.ConfidenceScore)
	assert.Equal(t, knowledge.CategoryFungal, res.Category)
	assert.Equal(t, "lesions", res.BiologicalExplanation)
	assert.Equal(t, knowledge.Lookup("Potato___Late_blight").RecommendedAction, res.RecommendedAction)

	assert.Equal(t, "image/png", fake.img.MIMEType)
	assert.Contains(t, fake.prompt, "Potato___Late_blight")
	assert.False(t, a.Simulated())
	assert.Equal(t, "fake", a.Provider())
	assert.Equal(t, "fake-1", a.Model())
}

func TestDiagnose_DegradedReplyIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	a, err := NewWithLLM(&fakeLLM{reply: "I cannot analyze this."}, WithLogger(zap.New(core)))
	require.NoError(t, err)

	res, err := a.Diagnose(context.Background(), pngLeaf(t))
	require.NoError(t, err)
	assert.Equal(t, model.ReplyNoJSON, res.ReplyStatus)
	assert.Equal(t, knowledge.CategoryHealthy, res.Category)

	entries := logs.FilterMessageSnippet("could not be parsed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "no_json", entries[0].ContextMap()["status"])
}

func TestDiagnose_ProviderError(t *testing.T) {
	a, err := NewWithLLM(&fakeLLM{err: errors.New("quota exceeded")})
	require.NoError(t, err)

	_, err = a.Diagnose(context.Background(), pngLeaf(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM analyze: quota exceeded")
}

func TestDiagnose_Timeout(t *testing.T) {
	a, err := NewWithLLM(&fakeLLM{wait: true}, WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	_, err = a.Diagnose(context.Background(), pngLeaf(t))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDiagnose_RejectsNonImage(t *testing.T) {
	fake := &fakeLLM{reply: "{}"}
	a, err := NewWithLLM(fake)
	require.NoError(t, err)

	_, err = a.Diagnose(context.Background(), []byte("hello"))
	assert.ErrorIs(t, err, imaging.ErrNotImage)
	assert.Empty(t, fake.prompt, "provider must not be called")
}

func TestDiagnose_CustomFallback(t *testing.T) {
	a, err := NewWithLLM(&fakeLLM{reply: "no json"}, WithFallback("Tomato___healthy"))
	require.NoError(t, err)

	res, err := a.Diagnose(context.Background(), pngLeaf(t))
	require.NoError(t, err)
	assert.Equal(t, "Tomato", res.PlantName)
}

func TestNewWithLLM_InvalidFallback(t *testing.T) {
	_, err := NewWithLLM(&fakeLLM{}, WithFallback("Tomato"))
	assert.Error(t, err)
}

func TestSimulated(t *testing.T) {
	a := NewSimulated("OPENAI_API_KEY")
	require.True(t, a.Simulated())
	assert.Equal(t, "simulation", a.Provider())

	res, err := a.Diagnose(context.Background(), pngLeaf(t))
	require.NoError(t, err)
	assert.Equal(t, "Apple", res.PlantName)
	assert.Equal(t, "Apple Scab", res.PredictedDisease)
	assert.Equal(t, "98.50%", res.ConfidenceScore)
	assert.Equal(t, knowledge.CategoryFungal, res.Category)
	assert.True(t, strings.HasPrefix(res.BiologicalExplanation, "Simulation Mode: OPENAI_API_KEY not configured"))
	assert.Equal(t, model.ReplySimulated, res.ReplyStatus)
}

func TestDiagnose_CustomTable(t *testing.T) {
	table := knowledge.NewTable([]knowledge.PlantClass{"Fig___healthy", "Fig___Rust"}, nil)
	fake := &fakeLLM{reply: `{"predicted_class":"Fig___Rust","confidence":0.5}`}
	a, err := NewWithLLM(fake, WithTable(table), WithFallback("Fig___healthy"))
	require.NoError(t, err)

	res, err := a.Diagnose(context.Background(), pngLeaf(t))
	require.NoError(t, err)
	assert.Equal(t, "Fig", res.PlantName)
	assert.Equal(t, "50.00%", res.ConfidenceScore)
	assert.Equal(t, knowledge.CategoryUndetermined, res.Category)
	assert.Contains(t, fake.prompt, "Fig___Rust")
	assert.NotContains(t, fake.prompt, "Apple___healthy")
}
