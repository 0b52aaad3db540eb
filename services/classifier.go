package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"os"
	"regexp"
	"time"

	"github.com/civic-india/api-go/types"
)

// Classification is the vision verdict for an uploaded photo.
type Classification struct {
	IssueType    string  `json:"issueType"`
	Severity     float64 `json:"severity"`
	Confidence   float64 `json:"confidence"`
	Description  string  `json:"description"`
	AvgTimeToFix int     `json:"avgTimeToFix"`
}

// ClassifierResult tags whether the classification came from the vision
// service or the deterministic fallback, so callers can tell degraded mode
// apart from a genuine verdict.
type ClassifierResult struct {
	Classification
	Fallback       bool   `json:"fallback"`
	FallbackReason string `json:"fallbackReason,omitempty"`
}

type Classifier interface {
	Classify(ctx context.Context, image []byte, mimeType string) (*Classification, error)
}

const classifierTimeout = 20 * time.Second

const classifierPrompt = `Analyze this civic infrastructure image and identify any issues.
Respond with a JSON object only in this exact format:
{"issueType": "pothole|streetlight|garbage|water_leak|traffic_signal|road_damage|other|unknown", "severity": <number 1-10>, "confidence": <number 0-1>, "description": "<brief description>", "avgTimeToFix": <number of days, 0 if no issue>}
If severity is 1-2 (no significant issue), issueType MUST be "unknown" and avgTimeToFix 0.
Only return the JSON object, no other text.`

type GeminiClassifier struct {
	APIKey string
	Model  string
	Client *http.Client
}

func NewGeminiClassifier() *GeminiClassifier {
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiClassifier{
		APIKey: os.Getenv("GEMINI_API_KEY"),
		Model:  model,
		Client: &http.Client{Timeout: classifierTimeout},
	}
}

var jsonFenceRe = regexp.MustCompile("```(?:json)?\\s*(\\{[\\s\\S]*\\})\\s*```")

func (g *GeminiClassifier) Classify(ctx context.Context, image []byte, mimeType string) (*Classification, error) {
	if g.APIKey == "" {
		return nil, fmt.Errorf("classifier not configured")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s", g.Model, g.APIKey)

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{"text": classifierPrompt},
					{
						"inline_data": map[string]string{
							"mime_type": mimeType,
							"data":      base64.StdEncoding.EncodeToString(image),
						},
					},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var apiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, err
	}
	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("classifier returned no candidates")
	}

	text := apiResp.Candidates[0].Content.Parts[0].Text
	if m := jsonFenceRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	var result Classification
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("classifier returned unparseable verdict: %v", err)
	}

	return &result, nil
}

// ClassifyWithFallback normalizes the classifier output into a tagged result.
// On failure it substitutes the form-selected issue type with severity 7.5 and
// no repair estimate. Either way, a severity at or below 2 means "no real
// issue": the type is forced to unknown and the estimate to zero.
func ClassifyWithFallback(ctx context.Context, classifier Classifier, image []byte, mimeType, formIssueType string) ClassifierResult {
	fallback := ClassifierResult{
		Classification: Classification{
			IssueType:    types.MapFormIssueType(formIssueType),
			Severity:     7.5,
			AvgTimeToFix: 0,
		},
		Fallback: true,
	}

	if classifier == nil {
		fallback.FallbackReason = "classifier not configured"
		return fallback
	}

	raw, err := classifier.Classify(ctx, image, mimeType)
	if err != nil {
		fallback.FallbackReason = err.Error()
		return fallback
	}

	result := ClassifierResult{Classification: *raw}
	result.Severity = math.Min(10, math.Max(1, result.Severity))

	if result.AvgTimeToFix <= 0 && result.Severity > 2 {
		// Rough severity-based estimate when the verdict omits one.
		result.AvgTimeToFix = int(math.Max(1, math.Min(30, result.Severity*2)))
	}

	if result.Severity <= 2 {
		result.IssueType = types.IssueUnknown
		result.AvgTimeToFix = 0
	}

	return result
}
