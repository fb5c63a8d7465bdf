package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"project-ascend/utils"
)

// Challenge levels a quest request may ask for.
const (
	ChallengeNormal   = "normal"
	ChallengeHard     = "hard"
	ChallengeHardcore = "hardcore"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel   = "gemini-2.5-flash"
)

var ErrGeneratorUnavailable = errors.New("quest generator unavailable")

// QuestRequest is what the player tells the quest master about themselves.
type QuestRequest struct {
	Focus                   string `json:"focus"`
	RecentActivitySummary   string `json:"recent_activity_summary"`
	PreferredChallengeLevel string `json:"preferred_challenge_level"`
}

// Normalize fills defaults and rejects unknown challenge levels.
func (r *QuestRequest) Normalize() error {
	r.Focus = strings.TrimSpace(r.Focus)
	if r.Focus == "" {
		r.Focus = DefaultQuestType
	}
	r.PreferredChallengeLevel = strings.ToLower(strings.TrimSpace(r.PreferredChallengeLevel))
	switch r.PreferredChallengeLevel {
	case "":
		r.PreferredChallengeLevel = ChallengeNormal
	case ChallengeNormal, ChallengeHard, ChallengeHardcore:
	default:
		return validationError("preferred_challenge_level must be one of normal, hard, hardcore")
	}
	return nil
}

// QuestGenerator produces free-form quest text. Its output is untrusted.
type QuestGenerator interface {
	Generate(ctx context.Context, req QuestRequest) (string, error)
}

const questMasterPrompt = `You are a Quest Master AI in a real-life gamified app. Your task is to create personalized daily quest for a user.

Also remember to use the user's focus area, recent activity, and preferred challenge level to tailor the quest.
The quest should be a mix of random from beginner to advance level
The quest title should be creative and engaging, and the description should be concise and explanatory.
The xp attributes are RPG-style attributes like STR, AGI, END, INT, CHA, etc.
The quest type can be one of: fitness, nutrition, learning, social.
The due date should be categorised as per the difficulty level of the quest.

You must format your response STRICTLY as follows, with no extra words, introductions, or explanations:
title: [A creative and engaging quest title under 25 letters]
description: [A concise and motivational description of the quest]
type: [One of: fitness, nutrition, learning, social]
xp: [A comma-separated list of attributes and XP, e.g., STR:100,END:50]
due: [The number of days from now the quest is due, e.g., 1]`

func questUserPrompt(req QuestRequest) string {
	return fmt.Sprintf("Here is the user's information:\n- Focus Area: %s\n- Recent Activity Summary: %s\n- Preferred Challenge Level: %s\n",
		req.Focus, req.RecentActivitySummary, req.PreferredChallengeLevel)
}

// GeminiClient calls the Gemini generateContent endpoint.
type GeminiClient struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

func NewGeminiClient(apiKey, model string) *GeminiClient {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiClient{
		BaseURL: DefaultGeminiBaseURL,
		APIKey:  apiKey,
		Model:   model,
		Client:  utils.NewHTTPClient(60 * time.Second),
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction geminiContent   `json:"systemInstruction"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate returns the model's raw text, trimmed.
func (c *GeminiClient) Generate(ctx context.Context, req QuestRequest) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("%w: no api key configured", ErrGeneratorUnavailable)
	}

	var body geminiRequest
	body.SystemInstruction = geminiContent{Parts: []geminiPart{{Text: questMasterPrompt}}}
	body.Contents = []geminiContent{{Role: "user", Parts: []geminiPart{{Text: questUserPrompt(req)}}}}
	body.GenerationConfig.Temperature = 0
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.BaseURL, "/"), url.PathEscape(c.Model), url.QueryEscape(c.APIKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneratorUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrGeneratorUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("[QUEST] gemini returned %d: %s", resp.StatusCode, string(raw))
		return "", fmt.Errorf("%w: status %d", ErrGeneratorUnavailable, resp.StatusCode)
	}

	var out geminiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrGeneratorUnavailable, err)
	}
	if len(out.Candidates) == 0 {
		return "", nil
	}
	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}
