package model

import "github.com/helmcode/leafdoc/pkg/knowledge"

// ReplyStatus records how much of the model reply could be used.
type ReplyStatus string

const (
	ReplyParsed    ReplyStatus = "parsed"
	ReplyNoJSON    ReplyStatus = "no_json"
	ReplyMalformed ReplyStatus = "malformed"
	ReplySimulated ReplyStatus = "simulated"
)

// Degraded is true when normalization ran on an empty reply.
func (s ReplyStatus) Degraded() bool {
	return s == ReplyNoJSON || s == ReplyMalformed
}

// ModelReply is the JSON object the prompt asks the model to return.
// Zero values mean the field was absent or unusable.
type ModelReply struct {
	PredictedClass string
	Confidence     float64
	Analysis       string
	Recommendation string
}

// DiagnosisResult is the payload returned to clients.
type DiagnosisResult struct {
	PlantName             string             `json:"plant_name" yaml:"plant_name"`
	PredictedDisease      string             `json:"predicted_disease" yaml:"predicted_disease"`
	ConfidenceScore       string             `json:"confidence_score" yaml:"confidence_score"`
	Category              knowledge.Category `json:"category" yaml:"category"`
	BiologicalExplanation string             `json:"biological_explanation" yaml:"biological_explanation"`
	RecommendedAction     string             `json:"recommended_action" yaml:"recommended_action"`

	// Class is the PlantClass the result was built from.
	Class        knowledge.PlantClass `json:"-" yaml:"-"`
	ReplyStatus  ReplyStatus          `json:"-" yaml:"-"`
	UsedFallback bool                 `json:"-" yaml:"-"`
}
