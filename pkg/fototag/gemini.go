package fototag

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Gemini is a Describer backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini describer for the given model.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

// Describe sends the image to Gemini with the same prompt and JSON contract
// as the OpenAI-compatible client.
func (g *Gemini) Describe(ctx context.Context, path string) (*Description, error) {
	bs, err := prepareImage(ctx, path)
	if err != nil {
		return nil, &DescribeError{Path: path, Err: err}
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(bs, "image/jpeg"),
			genai.NewPartFromText(describePrompt),
		}, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, &DescribeError{Path: path, Err: err}
	}

	d, err := parseDescription(resp.Text())
	if err != nil {
		return nil, &DescribeError{Path: path, Err: err}
	}

	return d, nil
}
