package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/yadavaman13/Fasal-Mitra/config"
)

const advisorSystemPrompt = `You are an agricultural advisor helping small-scale farmers.
You receive a confirmed leaf diagnosis: crop, condition, severity and location.
Write one short paragraph (at most 120 words) of practical, low-cost guidance the
farmer can act on this week. Plain language, no lists, no headings, no markdown.
Do not question the diagnosis and do not mention that you are an AI.`

// GeminiAdvisor 调用 Gemini 生成个性化防治建议
type GeminiAdvisor struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

func NewGeminiAdvisor(ctx context.Context, cfg *config.AdviceConfig) (*GeminiAdvisor, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini: api key is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return &GeminiAdvisor{
		client:    client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Generate 生成一段针对当前诊断的建议文本
func (g *GeminiAdvisor) Generate(ctx context.Context, actx AdviceContext) (string, error) {
	m := g.client.GenerativeModel(g.model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:     ptrFloat32(0),
		TopP:            ptrFloat32(1),
		TopK:            ptrInt32(1),
		MaxOutputTokens: ptrInt32(g.maxTokens),
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(advisorSystemPrompt)},
	}

	prompt := fmt.Sprintf(
		"Crop: %s\nCondition: %s\nSeverity: %s\nConfidence: %.1f%%\nCause: %s\nStandard treatment: %s\n",
		actx.Crop, actx.Condition, actx.Severity, actx.Confidence, actx.Cause, actx.Treatment)
	if actx.Location != "" {
		prompt += fmt.Sprintf("Farmer location: %s\n", actx.Location)
	}

	// 瞬时故障重试一次即可，建议本身是可选内容
	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		resp, err := m.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			lastErr = err
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * 300 * time.Millisecond):
			}
			continue
		}
		text := strings.TrimSpace(firstText(resp))
		if text == "" {
			return "", fmt.Errorf("gemini: empty response")
		}
		return text, nil
	}
	return "", lastErr
}

func (g *GeminiAdvisor) Close() error {
	return g.client.Close()
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
func ptrInt32(v int32) *int32       { return &v }
