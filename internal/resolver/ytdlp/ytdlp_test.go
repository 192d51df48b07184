package ytdlp

import (
	"strings"
	"testing"
	"time"
)

func TestParseOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		stdout   string
		wantErr  bool
		title    string
		stream   string
		web      string
		duration time.Duration
	}{
		{
			name:     "full output",
			stdout:   "Never Gonna Give You Up\nhttps://youtube.com/watch?v=x\n213.0\nhttps://cdn.example/audio.m4a\n",
			title:    "Never Gonna Give You Up",
			stream:   "https://cdn.example/audio.m4a",
			web:      "https://youtube.com/watch?v=x",
			duration: 213 * time.Second,
		},
		{
			name:   "missing duration",
			stdout: "Live Stream\nhttps://youtube.com/watch?v=y\nNA\nhttps://cdn.example/live.m3u8",
			title:  "Live Stream",
			stream: "https://cdn.example/live.m3u8",
			web:    "https://youtube.com/watch?v=y",
		},
		{
			name:   "missing title falls back",
			stdout: "NA\nNA\nNA\nhttps://cdn.example/a.opus",
			title:  "Unknown title",
			stream: "https://cdn.example/a.opus",
		},
		{
			name:    "empty output",
			stdout:  "\n",
			wantErr: true,
		},
		{
			name:    "no stream url",
			stdout:  "Title\nhttps://example.com\n10\nNA",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseOutput(tc.stdout, "query")
			if tc.wantErr {
				if err == nil {
					t.Fatal("parseOutput should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseOutput: %v", err)
			}
			if got.Title != tc.title {
				t.Errorf("Title = %q, want %q", got.Title, tc.title)
			}
			if got.StreamURL != tc.stream {
				t.Errorf("StreamURL = %q, want %q", got.StreamURL, tc.stream)
			}
			if got.WebURL != tc.web {
				t.Errorf("WebURL = %q, want %q", got.WebURL, tc.web)
			}
			if got.Duration != tc.duration {
				t.Errorf("Duration = %v, want %v", got.Duration, tc.duration)
			}
			if got.Query != "query" {
				t.Errorf("Query = %q, want %q", got.Query, "query")
			}
		})
	}
}

func TestParseOutput_ErrorMentionsQuery(t *testing.T) {
	t.Parallel()

	_, err := parseOutput("", "my song")
	if err == nil {
		t.Fatal("parseOutput should fail on empty output")
	}
	if !strings.Contains(err.Error(), "my song") {
		t.Errorf("error %q should name the failed query", err)
	}
}
