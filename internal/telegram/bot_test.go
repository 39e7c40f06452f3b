package telegram

import (
	"strings"
	"testing"

	"github.com/clipseek/clipseek/internal/core"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		wantQuery      string
		wantK          int
		wantCollection string
	}{
		{
			name:           "plain text",
			text:           "red sports car",
			wantQuery:      "red sports car",
			wantK:          defaultTopK,
			wantCollection: "feeds_clips_1000",
		},
		{
			name:           "search command",
			text:           "/search red sports car",
			wantQuery:      "red sports car",
			wantK:          defaultTopK,
			wantCollection: "feeds_clips_1000",
		},
		{
			name:           "with options",
			text:           "red sports car k=10 collection=feeds_clips_100",
			wantQuery:      "red sports car",
			wantK:          10,
			wantCollection: "feeds_clips_100",
		},
		{
			name:           "invalid k keeps default",
			text:           "red car k=zero",
			wantQuery:      "red car",
			wantK:          defaultTopK,
			wantCollection: "feeds_clips_1000",
		},
		{
			name:           "negative k keeps default",
			text:           "red car k=-3",
			wantQuery:      "red car",
			wantK:          defaultTopK,
			wantCollection: "feeds_clips_1000",
		},
		{
			name:           "unknown command yields no query",
			text:           "/start",
			wantQuery:      "",
			wantK:          defaultTopK,
			wantCollection: "feeds_clips_1000",
		},
		{
			name:           "empty message",
			text:           "",
			wantQuery:      "",
			wantK:          defaultTopK,
			wantCollection: "feeds_clips_1000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, k, collection := parseQuery(tt.text, "feeds_clips_1000")
			if query != tt.wantQuery {
				t.Errorf("query = %q, want %q", query, tt.wantQuery)
			}
			if k != tt.wantK {
				t.Errorf("k = %d, want %d", k, tt.wantK)
			}
			if collection != tt.wantCollection {
				t.Errorf("collection = %q, want %q", collection, tt.wantCollection)
			}
		})
	}
}

func TestIsAddCommand(t *testing.T) {
	if !isAddCommand("/add a.mp4 a red car") {
		t.Error("expected /add message to be recognized")
	}
	if isAddCommand("add a.mp4 a red car") || isAddCommand("") || isAddCommand("/search query") {
		t.Error("non-/add messages must not be recognized")
	}
}

func TestParseAdd(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		wantFileURL    string
		wantCaption    string
		wantCollection string
	}{
		{
			name:           "url and caption",
			text:           "/add https://cdn.example.com/a.mp4 a red sports car",
			wantFileURL:    "https://cdn.example.com/a.mp4",
			wantCaption:    "a red sports car",
			wantCollection: "feeds_clips_1000",
		},
		{
			name:           "with collection option",
			text:           "/add a.mp4 collection=feeds_clips_100 red car",
			wantFileURL:    "a.mp4",
			wantCaption:    "red car",
			wantCollection: "feeds_clips_100",
		},
		{
			name:           "missing caption",
			text:           "/add a.mp4",
			wantFileURL:    "a.mp4",
			wantCaption:    "",
			wantCollection: "feeds_clips_1000",
		},
		{
			name:           "bare command",
			text:           "/add",
			wantFileURL:    "",
			wantCaption:    "",
			wantCollection: "feeds_clips_1000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fileURL, caption, collection := parseAdd(tt.text, "feeds_clips_1000")
			if fileURL != tt.wantFileURL {
				t.Errorf("fileURL = %q, want %q", fileURL, tt.wantFileURL)
			}
			if caption != tt.wantCaption {
				t.Errorf("caption = %q, want %q", caption, tt.wantCaption)
			}
			if collection != tt.wantCollection {
				t.Errorf("collection = %q, want %q", collection, tt.wantCollection)
			}
		})
	}
}

func TestFormatReply(t *testing.T) {
	hits := []core.SearchHit{
		{ID: "a", Score: 0.9876, Payload: core.Payload{"fileurl": "https://cdn.example.com/a.mp4"}},
		{ID: "b", Score: 0.5, Payload: core.Payload{}},
	}

	reply := formatReply("demo", hits)

	if !strings.Contains(reply, "https://cdn.example.com/a.mp4") {
		t.Errorf("reply missing clip url: %q", reply)
	}
	if !strings.Contains(reply, "0.9876") {
		t.Errorf("reply missing score: %q", reply)
	}
	if !strings.Contains(reply, "(no file url)") {
		t.Errorf("reply should mark clips without a url: %q", reply)
	}
}

func TestFormatReplyEmpty(t *testing.T) {
	reply := formatReply("demo", nil)
	if !strings.Contains(reply, "No matching clips") {
		t.Errorf("unexpected empty reply: %q", reply)
	}
}
