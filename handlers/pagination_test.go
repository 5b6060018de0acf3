package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/vishalmadargaon/Flight-delay-predictor/models"
)

type listResponse struct {
	Data       []models.PredictionRecord `json:"data"`
	NextCursor string                    `json:"next_cursor"`
	HasMore    bool                      `json:"has_more"`
}

func TestCursorRoundTrip(t *testing.T) {
	rec := models.PredictionRecord{ID: 42, CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC)}
	got, err := DecodeCursor(EncodeCursor(rec))
	if err != nil {
		t.Fatalf("DecodeCursor: %v", err)
	}
	if got.ID != 42 || !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Errorf("cursor = %+v, want id 42 at %v", got, rec.CreatedAt)
	}
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	enc := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }
	tests := []struct {
		name string
		raw  string
	}{
		{"not base64", "%%%"},
		{"bare timestamp", enc(time.Now().Format(time.RFC3339Nano))},
		{"bad time", enc("yesterday|3")},
		{"bad id", enc("2024-03-01T12:00:00Z|x")},
		{"zero id", enc("2024-03-01T12:00:00Z|0")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeCursor(tt.raw); err != ErrInvalidCursor {
				t.Errorf("err = %v, want ErrInvalidCursor", err)
			}
		})
	}
}

func TestListPredictionsPages(t *testing.T) {
	app := newTestApp(t, loadEngine(t))
	client := app.browser(t)
	registerAndLogin(t, app, client, "alice")

	for i := 0; i < 3; i++ {
		app.post(t, client, "/predict", sampleForm()).expect(t, http.StatusOK, "/predict")
	}

	seen := map[uint]bool{}
	path := "/api/predictions?limit=2"
	for pages := 0; ; pages++ {
		if pages > 3 {
			t.Fatal("pagination did not terminate")
		}
		p := app.get(t, client, path)
		p.expect(t, http.StatusOK, "/api/predictions")
		var resp listResponse
		if err := json.Unmarshal([]byte(p.body), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		for _, rec := range resp.Data {
			if seen[rec.ID] {
				t.Errorf("record %d returned twice", rec.ID)
			}
			seen[rec.ID] = true
		}
		if !resp.HasMore {
			if resp.NextCursor != "" {
				t.Errorf("last page has next_cursor %q", resp.NextCursor)
			}
			break
		}
		path = "/api/predictions?limit=2&before=" + url.QueryEscape(resp.NextCursor)
	}
	if len(seen) != 3 {
		t.Errorf("paged through %d records, want 3", len(seen))
	}
}

func TestListPredictionsRejectsBadCursor(t *testing.T) {
	app := newTestApp(t, loadEngine(t))
	client := app.browser(t)
	registerAndLogin(t, app, client, "alice")

	for _, before := range []string{"garbage!", "2024-03-01T12:00:00Z"} {
		app.get(t, client, "/api/predictions?before="+url.QueryEscape(before)).
			expect(t, http.StatusBadRequest, "/api/predictions", "invalid cursor")
	}
}
