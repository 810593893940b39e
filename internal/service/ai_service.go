package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"milestofund/config"
)

var (
	ErrAINotConfigured = errors.New("AI features not configured; set GEMINI_API_KEY")
	ErrAIInvalidKey    = errors.New("invalid Gemini API key")
	ErrAIQuota         = errors.New("Gemini API quota exceeded, try again in a minute")
	ErrAIUpstream      = errors.New("AI service returned an error")
	ErrAIUnknownTool   = errors.New("unknown AI tool")
)

const aiSystemInstruction = `You are an expert crowdfunding consultant and copywriter for Indian creators.
Help creators craft compelling campaigns that attract backers and clearly communicate their vision.
Always be specific, actionable, and encouraging.
When mentioning money, use Indian Rupees (₹).
IMPORTANT: Always give COMPLETE responses. Never stop in the middle.
Always finish every sentence, every list, every section fully before ending your response.`

// AIService proxies copywriting prompts to Gemini so the API key stays on the
// server. Calls are bounded by the configured timeout (hosting platforms cap
// requests at 60s, so we use 55s).
type AIService struct {
	cfg    *config.GeminiConfig
	client *http.Client
}

func NewAIService(cfg *config.GeminiConfig) *AIService {
	return &AIService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type geminiRequest struct {
	SystemInstruction geminiContent   `json:"system_instruction"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate runs the named copywriting tool over the given inputs and returns
// the generated text.
func (s *AIService) Generate(ctx context.Context, tool string, inputs map[string]string) (string, error) {
	prompt := buildPrompt(tool, inputs)
	if prompt == "" {
		return "", ErrAIUnknownTool
	}
	if s.cfg.APIKey == "" {
		return "", ErrAINotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(geminiRequest{
		SystemInstruction: geminiContent{Parts: []geminiPart{{Text: aiSystemInstruction}}},
		Contents:          []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenConfig{
			MaxOutputTokens: 8192,
			Temperature:     0.7,
			TopP:            0.95,
			TopK:            40,
		},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", s.cfg.BaseURL, s.cfg.Model, s.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAIUpstream, err)
	}
	defer resp.Body.Close()

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: malformed response", ErrAIUpstream)
	}

	if resp.StatusCode != http.StatusOK {
		msg := ""
		if out.Error != nil {
			msg = out.Error.Message
		}
		log.Printf("[ai] upstream error: status=%d msg=%s", resp.StatusCode, msg)
		switch {
		case strings.Contains(msg, "API_KEY_INVALID") || strings.Contains(msg, "API key not valid"):
			return "", ErrAIInvalidKey
		case strings.Contains(strings.ToUpper(msg), "QUOTA"):
			return "", ErrAIQuota
		default:
			return "", ErrAIUpstream
		}
	}

	if len(out.Candidates) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrAIUpstream)
	}
	cand := out.Candidates[0]
	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrAIUpstream)
	}
	if cand.FinishReason == "MAX_TOKENS" {
		text += "\n\n*(Response was long — showing first part. Try a more specific input for a shorter result.)*"
	}
	log.Printf("[ai] tool=%s finish=%s", tool, cand.FinishReason)
	return text, nil
}

func buildPrompt(tool string, in map[string]string) string {
	get := func(key, fallback string) string {
		if v := in[key]; v != "" {
			return v
		}
		return fallback
	}
	var p string
	switch tool {
	case "description":
		p = fmt.Sprintf(`Write a compelling crowdfunding campaign description.

Project Title: %s
Category: %s
One-line Summary: %s
Target Audience: %s
Key Features/Benefits: %s

Write 3-4 paragraphs that:
1. Open with an attention-grabbing hook about the problem being solved
2. Describe the solution and what makes it unique
3. Explain what backers will receive and why they should care
4. Close with an inspiring call to action

Keep it under 400 words. Be passionate and authentic. Use Indian context where relevant.`,
			in["title"], in["category"], in["summary"], get("audience", "general public"), in["features"])
	case "title":
		p = fmt.Sprintf(`Generate 5 compelling crowdfunding campaign titles.

Idea/Concept: %s
Category: %s
Target Audience: %s

Each title should be:
- Clear and memorable (under 8 words)
- Convey the core value proposition
- Create curiosity or excitement

Number each title and add a one-sentence explanation of why it works.`,
			in["concept"], in["category"], in["audience"])
	case "rewards":
		p = fmt.Sprintf(`Suggest 4 creative reward tiers for this crowdfunding campaign.

Project: %s
Category: %s
Funding Goal: ₹%s
Description: %s

For each tier provide:
- Creative tier name
- Pledge amount in INR (Indian Rupees ₹)
- Exactly what backers receive
- Estimated delivery timeframe

Make rewards feel personal and genuinely valuable. Range from entry tier (₹500-1000) to premium tier (₹10,000+).`,
			in["title"], in["category"], in["goal"], in["description"])
	case "pitch":
		p = fmt.Sprintf(`Improve this crowdfunding pitch to be more compelling and backer-friendly.

Original pitch:
%s

Provide:
1. An improved version (labeled "IMPROVED VERSION:")
2. A brief explanation of key changes (labeled "WHAT CHANGED:")

Focus on: stronger hook, clearer value proposition, emotional connection, and a strong call to action.`,
			in["pitch"])
	case "risks":
		p = fmt.Sprintf(`Identify risks and challenges for this crowdfunding project and provide mitigation strategies.

Project: %s
Category: %s
Description: %s

Provide:
- Top 4-5 specific risks for this type of project
- For each: the challenge and a concrete mitigation strategy
- A short reassuring closing statement for potential backers

Be honest but constructive. Format with clear headers for each risk.`,
			in["title"], in["category"], in["description"])
	default:
		return ""
	}
	return p + "\n\nIMPORTANT: Give a complete, full response. Do not stop midway."
}
