package review

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"google.golang.org/genai"
)

const promptTemplate = `Generate a structured JSON review for the tech product %q. The response should be a valid JSON object with the following fields:
{
  "overview": "Brief introduction of the product.",
  "price": "Price of the product in INR",
  "key_features": ["Feature 1", "Feature 2", "Feature 3"],
  "performance": {"Criteria1": "Explanation1", "Criteria2": "Explanation2"},
  "pros": ["Pro 1", "Pro 2"],
  "cons": ["Con 1", "Con 2"],
  "final_rating": "rating of product (0-5)"
}
Return only the JSON object without any additional text or markdown formatting.`

var codeBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// Generator synthesizes a structured product review with Gemini instead of
// scraping. Models often wrap their JSON in markdown fences despite the
// prompt, so the response goes through an extraction fallback before parsing.
type Generator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

func NewGenerator(ctx context.Context, apiKey, model string, timeout time.Duration, logger *slog.Logger) (*Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Generator{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  logger.With("component", "review_generator"),
	}, nil
}

// GenerateReview asks the model for a structured review of the named product.
func (g *Generator) GenerateReview(ctx context.Context, productName string) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	prompt := fmt.Sprintf(promptTemplate, productName)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("empty response from gemini")
	}

	review, err := parseReviewJSON(text)
	if err != nil {
		g.logger.Warn("unparsable model response", "error", err)
		return nil, err
	}

	return review, nil
}

// parseReviewJSON parses the model output directly, then falls back to
// extracting a JSON payload from a markdown code block or from the first
// brace-delimited object in the text.
func parseReviewJSON(text string) (map[string]any, error) {
	var review map[string]any
	if err := json.Unmarshal([]byte(text), &review); err == nil {
		return review, nil
	}

	extracted := extractJSON(text)
	if extracted == "" {
		return nil, fmt.Errorf("no JSON object in model response")
	}

	if err := json.Unmarshal([]byte(extracted), &review); err != nil {
		return nil, fmt.Errorf("invalid JSON in model response: %w", err)
	}

	return review, nil
}

func extractJSON(text string) string {
	if m := codeBlockRe.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return strings.TrimSpace(text[start : end+1])
	}

	return ""
}
