package fototag

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const describePrompt = `Analyze this image. Respond in JSON format with the following elements:
5-10 tags in English language, with the same tags appended in German language to the list,
a headline for the image,
and a short abstract of the image.
Return a JSON object with the keys "tags", "headline" and "abstract".
Do not add any other text. Just respond with the JSON object.`

var descriptionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"tags": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"headline": map[string]any{"type": "string"},
		"abstract": map[string]any{"type": "string"},
	},
	"required": []string{"tags", "headline", "abstract"},
}

// Describer generates a description for a single image.
type Describer interface {
	Describe(ctx context.Context, path string) (*Description, error)
}

// Client talks to an OpenAI-compatible chat/vision endpoint. One attempt per
// image, no retries.
type Client struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

// NewClient returns a Client for serverURL with an explicit per-request
// timeout, so a stuck endpoint can't hang the batch on one file.
func NewClient(serverURL, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(serverURL, "/"),
		APIKey:     apiKey,
		Model:      model,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type responseFormat struct {
	Type       string     `json:"type"`
	JSONSchema jsonSchema `json:"json_schema"`
}

type jsonSchema struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Check probes the endpoint so an unreachable server fails the run before
// any file is touched.
func (c *Client) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	c.auth(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("reach %s: %w", c.BaseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s/models: HTTP %d", c.BaseURL, resp.StatusCode)
	}

	return nil
}

// Describe sends path to the endpoint with a fixed instruction prompt and
// parses the structured response.
func (c *Client) Describe(ctx context.Context, path string) (*Description, error) {
	bs, err := prepareImage(ctx, path)
	if err != nil {
		return nil, &DescribeError{Path: path, Err: err}
	}

	cr := chatRequest{
		Model: c.Model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: describePrompt},
				{Type: "image_url", ImageURL: &imageURL{
					URL:    "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(bs),
					Detail: "auto",
				}},
			},
		}},
		ResponseFormat: &responseFormat{
			Type:       "json_schema",
			JSONSchema: jsonSchema{Name: "image description", Schema: descriptionSchema},
		},
	}

	body, err := json.Marshal(cr)
	if err != nil {
		return nil, &DescribeError{Path: path, Err: fmt.Errorf("marshal: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, &DescribeError{Path: path, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	c.auth(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &DescribeError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &DescribeError{Path: path, Status: resp.StatusCode, Err: fmt.Errorf("%s", strings.TrimSpace(string(msg)))}
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, &DescribeError{Path: path, Err: fmt.Errorf("decode: %w", err)}
	}

	if len(chat.Choices) == 0 {
		return nil, &DescribeError{Path: path, Err: fmt.Errorf("no choices in response")}
	}

	d, err := parseDescription(chat.Choices[0].Message.Content)
	if err != nil {
		return nil, &DescribeError{Path: path, Err: err}
	}

	return d, nil
}

func (c *Client) auth(req *http.Request) {
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
}

// parseDescription parses the model's JSON answer, tolerating markdown code
// fences around it.
func parseDescription(s string) (*Description, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	d := &Description{}
	if err := json.Unmarshal([]byte(s), d); err != nil {
		return nil, fmt.Errorf("unparsable description %q: %w", s, err)
	}

	d.Tags = cleanTags(d.Tags)
	d.Headline = strings.TrimSpace(d.Headline)
	d.Abstract = strings.TrimSpace(d.Abstract)

	return d, nil
}
