package search

import (
	"encoding/json"

	"github.com/clipseek/clipseek/internal/core"
	"github.com/clipseek/clipseek/internal/logger"
)

// PayloadKeyFileURL is the payload key holding a clip's playable URL.
const PayloadKeyFileURL = "fileurl"

// FormatHitsAsJSON renders search hits as a JSON string for the callers
// (CLI output, bot replies). Presentation beyond this stays outside the
// core.
func FormatHitsAsJSON(hits []core.SearchHit) string {
	if len(hits) == 0 {
		return `{"results": [], "message": "No matching clips found."}`
	}

	type hitResult struct {
		ID      string       `json:"id"`
		Score   float32      `json:"score"`
		FileURL string       `json:"fileurl,omitempty"`
		Payload core.Payload `json:"payload,omitempty"`
	}

	results := make([]hitResult, 0, len(hits))
	for _, hit := range hits {
		fileURL := ""
		if hit.Payload != nil {
			if v, ok := hit.Payload[PayloadKeyFileURL].(string); ok {
				fileURL = v
			}
		}
		results = append(results, hitResult{
			ID:      hit.ID,
			Score:   hit.Score,
			FileURL: fileURL,
			Payload: hit.Payload,
		})
	}

	jsonData, err := json.Marshal(map[string]interface{}{"results": results})
	if err != nil {
		logger.Error("Failed to marshal search hits to JSON: %v", err)
		return `{"error": "Failed to format results as JSON"}`
	}

	return string(jsonData)
}
