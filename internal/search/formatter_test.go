package search

import (
	"encoding/json"
	"testing"

	"github.com/clipseek/clipseek/internal/core"
)

func TestFormatHitsAsJSON(t *testing.T) {
	hits := []core.SearchHit{
		{ID: "a", Score: 0.98, Payload: core.Payload{"fileurl": "a.mp4"}},
		{ID: "b", Score: 0.72, Payload: core.Payload{"duration": 12.5}},
	}

	var decoded struct {
		Results []struct {
			ID      string  `json:"id"`
			Score   float32 `json:"score"`
			FileURL string  `json:"fileurl"`
		} `json:"results"`
	}
	if err := json.Unmarshal([]byte(FormatHitsAsJSON(hits)), &decoded); err != nil {
		t.Fatalf("formatter produced invalid JSON: %v", err)
	}

	if len(decoded.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(decoded.Results))
	}
	if decoded.Results[0].ID != "a" || decoded.Results[0].FileURL != "a.mp4" {
		t.Fatalf("unexpected first result: %+v", decoded.Results[0])
	}
	// Missing fileurl renders as empty, not an error.
	if decoded.Results[1].FileURL != "" {
		t.Fatalf("expected empty fileurl for b, got %q", decoded.Results[1].FileURL)
	}
}

func TestFormatHitsAsJSONEmpty(t *testing.T) {
	var decoded struct {
		Results []interface{} `json:"results"`
		Message string        `json:"message"`
	}
	if err := json.Unmarshal([]byte(FormatHitsAsJSON(nil)), &decoded); err != nil {
		t.Fatalf("formatter produced invalid JSON: %v", err)
	}
	if len(decoded.Results) != 0 || decoded.Message == "" {
		t.Fatalf("unexpected empty rendering: %+v", decoded)
	}
}
