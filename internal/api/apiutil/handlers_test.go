package apiutil

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

func TestDecodeJSONRejectsUnknownAndTrailing(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"name":"Ada"}`},
		{name: "unknown field", body: `{"name":"Ada","extra":1}`, wantErr: true},
		{name: "trailing value", body: `{"name":"Ada"}{"name":"Bob"}`, wantErr: true},
		{name: "malformed", body: `{"name":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst payload
			err := DecodeJSON(req, &dst)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsJSONRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if IsJSONRequest(req) {
		t.Fatal("plain request treated as JSON")
	}

	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	if !IsJSONRequest(req) {
		t.Fatal("JSON content type not detected")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/json")
	if !IsJSONRequest(req) {
		t.Fatal("JSON accept header not detected")
	}
}

func TestWriteHTMLFeedbackEscapes(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteHTMLFeedback(rec, http.StatusConflict, "<b>taken</b>")

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "&lt;b&gt;taken&lt;/b&gt;") {
		t.Fatalf("message not escaped: %s", body)
	}
	if !strings.Contains(body, "feedback-error") {
		t.Fatalf("expected error class: %s", body)
	}
}

func TestRenderHTMLComponent(t *testing.T) {
	ok := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>hello</p>")
		return err
	})
	rec := httptest.NewRecorder()
	if !RenderHTMLComponent(context.Background(), rec, ok, map[string]string{"HX-Trigger": "refreshSchedule"}, "log", "user") {
		t.Fatal("expected render to succeed")
	}
	if rec.Body.String() != "<p>hello</p>" {
		t.Fatalf("body = %q", rec.Body.String())
	}
	if rec.Header().Get("HX-Trigger") != "refreshSchedule" {
		t.Fatalf("missing header, got %v", rec.Header())
	}

	failing := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, "<p>partial")
		return errors.New("boom")
	})
	rec = httptest.NewRecorder()
	if RenderHTMLComponentStatus(context.Background(), rec, http.StatusOK, failing, nil, "log", "Failed to render") {
		t.Fatal("expected render failure")
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "partial") {
		t.Fatalf("partial output leaked: %q", rec.Body.String())
	}
}
