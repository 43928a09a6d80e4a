package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

type VertexGemini struct {
	client *vertexgenai.Client
	model  *vertexgenai.GenerativeModel
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string, opts ...option.ClientOption) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location, opts...)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	m := c.GenerativeModel(modelName)
	return &VertexGemini{client: c, model: m}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := v.model.GenerateContent(ctx, vertexgenai.Text(prompt))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(vertexgenai.Text); ok {
				sb.WriteString(string(t))
			}
		}
	}

	out := sb.String()
	if out == "" {
		return "", errors.New("empty model response")
	}
	return out, nil
}

// stripFences removes markdown code fences the model tends to wrap JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func (v *VertexGemini) GenerateQuestions(ctx context.Context, jobDescription string) ([]GeneratedQuestion, error) {
	prompt := "You are a technical recruiter preparing a phone screening.\n" +
		"From the job description below, produce 5 to 7 interview questions.\n" +
		"Reply with a JSON array only. Each element: {\"question\": string, " +
		"\"category\": one of \"behavioral\"|\"technical\"|\"situational\"|\"general\", " +
		"\"criteria\": array of short evaluation criteria strings, \"order\": int starting at 0}.\n\n" +
		"Job description:\n" + jobDescription

	raw, err := v.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var out []GeneratedQuestion
	if err := json.Unmarshal([]byte(stripFences(raw)), &out); err != nil {
		return nil, fmt.Errorf("parse generated questions: %w", err)
	}
	return out, nil
}

func (v *VertexGemini) AnalyzeResponse(ctx context.Context, question, transcript string, criteria []string) (*ResponseAnalysis, error) {
	prompt := "You are scoring one answer from a phone screening interview.\n" +
		"Reply with a JSON object only: {\"score\": number 0-10, \"analysis\": string}.\n\n" +
		"Question: " + question + "\n" +
		"Evaluation criteria: " + strings.Join(criteria, "; ") + "\n" +
		"Candidate answer (speech transcript): " + transcript

	raw, err := v.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var out ResponseAnalysis
	if err := json.Unmarshal([]byte(stripFences(raw)), &out); err != nil {
		return nil, fmt.Errorf("parse response analysis: %w", err)
	}
	return &out, nil
}

func (v *VertexGemini) FinalAssessment(ctx context.Context, items []ResponseSummary) (*Assessment, error) {
	payload, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}

	prompt := "You are producing the final assessment of a phone screening interview.\n" +
		"Given the scored answers below, reply with a JSON object only: " +
		"{\"overall_score\": number 0-10, \"communication_score\": number 0-10, " +
		"\"technical_score\": number 0-10, \"recommendation\": \"hire\"|\"no_hire\"|\"maybe\", " +
		"\"summary\": string}.\n\nScored answers:\n" + string(payload)

	raw, err := v.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var out Assessment
	if err := json.Unmarshal([]byte(stripFences(raw)), &out); err != nil {
		return nil, fmt.Errorf("parse final assessment: %w", err)
	}
	return &out, nil
}
