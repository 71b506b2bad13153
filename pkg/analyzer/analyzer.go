package analyzer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/helmcode/leafdoc/pkg/imaging"
	"github.com/helmcode/leafdoc/pkg/knowledge"
	"github.com/helmcode/leafdoc/pkg/llm"
	"github.com/helmcode/leafdoc/pkg/model"
	"github.com/helmcode/leafdoc/pkg/parser"
	"github.com/helmcode/leafdoc/pkg/prompts"
)

const DefaultTimeout = 60 * time.Second

type Analyzer struct {
	llm      llm.VisionLLM
	table    *knowledge.Table
	fallback knowledge.PlantClass
	timeout  time.Duration
	maxDim   uint
	logger   *zap.Logger

	// simulatedEnv is set when no provider is configured.
	simulatedEnv string
}

type Option func(*Analyzer)

func WithTable(t *knowledge.Table) Option {
	return func(a *Analyzer) { a.table = t }
}

func WithFallback(c knowledge.PlantClass) Option {
	return func(a *Analyzer) { a.fallback = c }
}

func WithTimeout(d time.Duration) Option {
	return func(a *Analyzer) { a.timeout = d }
}

// WithMaxDimension bounds the longest image side sent upstream; 0 disables resizing.
func WithMaxDimension(px uint) Option {
	return func(a *Analyzer) { a.maxDim = px }
}

func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

func newAnalyzer(opts []Option) *Analyzer {
	a := &Analyzer{
		table:    knowledge.Default,
		fallback: knowledge.DefaultFallback,
		timeout:  DefaultTimeout,
		maxDim:   imaging.DefaultMaxDimension,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewWithLLM builds an analyzer around an already created provider.
func NewWithLLM(l llm.VisionLLM, opts ...Option) (*Analyzer, error) {
	a := newAnalyzer(opts)
	a.llm = l
	if err := a.table.ValidateFallback(a.fallback); err != nil {
		return nil, err
	}
	return a, nil
}

// NewSimulated builds an analyzer that never calls a provider. envVar names
// the missing credential in the canned result.
func NewSimulated(envVar string, opts ...Option) *Analyzer {
	a := newAnalyzer(opts)
	a.simulatedEnv = envVar
	return a
}

func NewWithProvider(ctx context.Context, provider llm.Provider, s llm.Settings, opts ...Option) (*Analyzer, error) {
	l, err := llm.NewFactory().CreateLLM(ctx, provider, s)
	if err != nil {
		return nil, err
	}
	return NewWithLLM(l, opts...)
}

// Simulated reports whether the analyzer returns canned results.
func (a *Analyzer) Simulated() bool {
	return a.llm == nil
}

// Provider names the backing provider, or "simulation".
func (a *Analyzer) Provider() string {
	if a.llm == nil {
		return "simulation"
	}
	return a.llm.Name()
}

// Model names the backing model, empty in simulation mode.
func (a *Analyzer) Model() string {
	if a.llm == nil {
		return ""
	}
	return a.llm.GetModel()
}

// Diagnose sends the leaf image to the model and normalizes its reply.
// Errors come from image validation or the provider; a bad reply is never
// an error.
func (a *Analyzer) Diagnose(ctx context.Context, data []byte) (*model.DiagnosisResult, error) {
	img, err := imaging.Prepare(data, a.maxDim)
	if err != nil {
		return nil, fmt.Errorf("prepare image: %w", err)
	}

	if a.llm == nil {
		return simulatedResult(a.simulatedEnv), nil
	}

	prompt := prompts.BuildDiagnosisPrompt(a.table.Classes())

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	rawResp, err := a.llm.Analyze(callCtx, prompt, img)
	if err != nil {
		return nil, fmt.Errorf("LLM analyze: %w", err)
	}
	a.logger.Debug("Model replied",
		zap.String("provider", a.llm.Name()),
		zap.String("model", a.llm.GetModel()),
		zap.Int("image_bytes", len(img.Data)),
		zap.Duration("elapsed", time.Since(start)))

	result := parser.Normalize(rawResp, a.table, a.fallback)
	if result.ReplyStatus.Degraded() {
		a.logger.Warn("Model reply could not be parsed, using fallback class",
			zap.String("status", string(result.ReplyStatus)),
			zap.String("fallback", string(a.fallback)),
			zap.String("reply", truncate(rawResp, 500)))
	} else if result.UsedFallback {
		a.logger.Warn("Model reply had no usable class, using fallback class",
			zap.String("fallback", string(a.fallback)))
	} else if !a.table.Known(result.Class) {
		a.logger.Info("Model reported a class outside the enumeration",
			zap.String("class", string(result.Class)))
	}

	return &result, nil
}

func simulatedResult(envVar string) *model.DiagnosisResult {
	if envVar == "" {
		envVar = llm.APIKeyEnv(llm.ProviderGemini)
	}
	return &model.DiagnosisResult{
		PlantName:             "Apple",
		PredictedDisease:      "Apple Scab",
		ConfidenceScore:       "98.50%",
		Category:              knowledge.CategoryFungal,
		BiologicalExplanation: fmt.Sprintf("Simulation Mode: %s not configured. To enable real AI diagnosis, please add your key to the environment variables.", envVar),
		RecommendedAction:     fmt.Sprintf("Add %s to your .env or deployment settings.", envVar),
		Class:                 "Apple___Apple_scab",
		ReplyStatus:           model.ReplySimulated,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
