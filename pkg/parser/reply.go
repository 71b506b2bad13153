package parser

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/helmcode/leafdoc/pkg/model"
)

var (
	leadingFenceRe  = regexp.MustCompile("^```[a-zA-Z]*[ \t]*\n?")
	trailingFenceRe = regexp.MustCompile("\n?```$")
)

// ExtractReply pulls the embedded JSON object out of a free-form model reply.
// It never fails: when nothing usable is found the returned reply is empty
// and the status says why.
func ExtractReply(raw string) (model.ModelReply, model.ReplyStatus) {
	cleaned := stripFences(raw)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return model.ModelReply{}, model.ReplyNoJSON
	}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &fields); err != nil {
		return model.ModelReply{}, model.ReplyMalformed
	}

	return model.ModelReply{
		PredictedClass: strings.TrimSpace(textField(fields, "predicted_class")),
		Confidence:     numberField(fields, "confidence"),
		Analysis:       textField(fields, "analysis"),
		Recommendation: textField(fields, "recommendation"),
	}, model.ReplyParsed
}

// stripFences removes a markdown code fence wrapping the whole reply, such as
// ```json ... ```. Fences inside the text are left alone.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = leadingFenceRe.ReplaceAllString(text, "")
	text = trailingFenceRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// textField treats anything but a JSON string as absent.
func textField(fields map[string]interface{}, key string) string {
	s, _ := fields[key].(string)
	return s
}

// numberField accepts a JSON number or a numeric string.
func numberField(fields map[string]interface{}, key string) float64 {
	var f float64
	switch v := fields[key].(type) {
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
