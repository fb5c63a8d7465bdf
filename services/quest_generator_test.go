package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeminiClientGenerate(t *testing.T) {
	t.Parallel()
	var gotPath, gotKey string
	var gotBody geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"  title: Dawn Run\nxp: END:40\n"}]}}]}`))
	}))
	defer srv.Close()

	client := NewGeminiClient("secret-key", "")
	client.BaseURL = srv.URL
	client.Client = srv.Client()

	req := QuestRequest{Focus: "fitness", RecentActivitySummary: "ran 5k twice", PreferredChallengeLevel: "hard"}
	text, err := client.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "title: Dawn Run\nxp: END:40" {
		t.Fatalf("unexpected text %q", text)
	}
	if gotPath != "/models/gemini-2.5-flash:generateContent" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotKey != "secret-key" {
		t.Fatalf("api key not sent, got %q", gotKey)
	}
	if len(gotBody.Contents) != 1 || !strings.Contains(gotBody.Contents[0].Parts[0].Text, "ran 5k twice") {
		t.Fatalf("user prompt missing activity: %+v", gotBody.Contents)
	}
	if !strings.Contains(gotBody.SystemInstruction.Parts[0].Text, "Quest Master") {
		t.Fatalf("system prompt missing")
	}
}

func TestGeminiClientErrors(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewGeminiClient("k", "gemini-test")
	client.BaseURL = srv.URL
	if _, err := client.Generate(context.Background(), QuestRequest{}); !errors.Is(err, ErrGeneratorUnavailable) {
		t.Fatalf("expected ErrGeneratorUnavailable, got %v", err)
	}

	noKey := NewGeminiClient("", "")
	if _, err := noKey.Generate(context.Background(), QuestRequest{}); !errors.Is(err, ErrGeneratorUnavailable) {
		t.Fatalf("expected ErrGeneratorUnavailable without key, got %v", err)
	}
}

func TestGeminiClientTruncatedBody(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Length", "500")
		_, _ = w.Write([]byte(`{"candidates":[`))
		w.(http.Flusher).Flush()
	}))
	defer srv.Close()

	client := NewGeminiClient("k", "gemini-test")
	client.BaseURL = srv.URL
	client.Client = srv.Client()
	_, err := client.Generate(context.Background(), QuestRequest{})
	if !errors.Is(err, ErrGeneratorUnavailable) {
		t.Fatalf("expected ErrGeneratorUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "read response") {
		t.Fatalf("expected read failure, got %v", err)
	}
}

func TestQuestRequestNormalize(t *testing.T) {
	t.Parallel()
	req := QuestRequest{PreferredChallengeLevel: " HARD "}
	if err := req.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if req.Focus != "fitness" || req.PreferredChallengeLevel != "hard" {
		t.Fatalf("unexpected normalized request %+v", req)
	}

	empty := QuestRequest{}
	if err := empty.Normalize(); err != nil || empty.PreferredChallengeLevel != "normal" {
		t.Fatalf("expected normal default, got %+v (%v)", empty, err)
	}

	bad := QuestRequest{PreferredChallengeLevel: "nightmare"}
	if err := bad.Normalize(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
