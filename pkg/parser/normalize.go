package parser

import (
	"fmt"

	"github.com/helmcode/leafdoc/pkg/knowledge"
	"github.com/helmcode/leafdoc/pkg/model"
)

// DefaultConfidence is reported when the model gives no usable confidence.
// An explicit 0 is treated the same as a missing value.
const DefaultConfidence = 0.95

// Lookuper is the read side of the knowledge table.
type Lookuper interface {
	Lookup(class knowledge.PlantClass) knowledge.Explanation
	Known(class knowledge.PlantClass) bool
}

// Normalize turns a raw model reply into the client-facing result, filling
// every gap from the knowledge table. fallback must split cleanly on the
// class separator.
func Normalize(raw string, table Lookuper, fallback knowledge.PlantClass) model.DiagnosisResult {
	reply, status := ExtractReply(raw)
	return NormalizeReply(reply, status, table, fallback)
}

// NormalizeReply is Normalize for an already extracted reply.
func NormalizeReply(reply model.ModelReply, status model.ReplyStatus, table Lookuper, fallback knowledge.PlantClass) model.DiagnosisResult {
	class := knowledge.PlantClass(reply.PredictedClass)
	usedFallback := false
	if class == "" {
		class = fallback
		usedFallback = true
	}

	// A class without a separator cannot produce a plant/disease pair.
	plant, condition, ok := class.Split()
	if !ok {
		class = fallback
		usedFallback = true
		plant, condition, _ = class.Split()
	}

	explanation := table.Lookup(fallback)
	if table.Known(class) {
		explanation = table.Lookup(class)
	}

	analysis := reply.Analysis
	if analysis == "" {
		analysis = explanation.ScientificReason
	}
	recommendation := reply.Recommendation
	if recommendation == "" {
		recommendation = explanation.RecommendedAction
	}

	return model.DiagnosisResult{
		PlantName:             knowledge.Humanize(plant),
		PredictedDisease:      knowledge.Humanize(condition),
		ConfidenceScore:       FormatConfidence(reply.Confidence),
		Category:              explanation.Category,
		BiologicalExplanation: analysis,
		RecommendedAction:     recommendation,
		Class:                 class,
		ReplyStatus:           status,
		UsedFallback:          usedFallback,
	}
}

// FormatConfidence renders a 0..1 confidence as a two-decimal percentage.
func FormatConfidence(confidence float64) string {
	if confidence == 0 {
		confidence = DefaultConfidence
	}
	return fmt.Sprintf("%.2f%%", confidence*100)
}
