package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const basicSystemPrompt = "You analyze ONE social media post.\n" +
	"Return ONLY a JSON object with keys:\n" +
	"{ \"sentiment\": \"positive|mixed|negative\",\n" +
	"  \"themes\": [\"short_tag1\",\"short_tag2\"] }\n" +
	"Return ONLY valid JSON."

const proSystemPrompt = "You are an assistant that reads ONE social media post: caption + stacked comments.\n" +
	"You must return ONLY a single JSON object with keys:\n" +
	"{ \"sentiment\": \"positive|mixed|negative\",\n" +
	"  \"themes\": [\"short_tag1\",\"short_tag2\",...],\n" +
	"  \"key_comments\": [\"exact short comment snippet 1\",\"...\"],\n" +
	"  \"insight\": \"1-3 sentence operational/marketing insight based on comments\" }\n" +
	"- sentiment: overall mood of the comments about the BRAND (not just emojis).\n" +
	"- key_comments: 2-4 the most informative short snippets, copy them exactly.\n" +
	"- themes: 2-5 very short tags, lower-case.\n" +
	"- insight: concise, concrete, actionable.\n" +
	"Return ONLY valid JSON."

// chatClient talks to an OpenAI-compatible /v1/chat/completions API.
// This covers OpenAI itself plus vLLM, Ollama and most gateways.
type chatClient struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

func newChatClient(cfg Config) *chatClient {
	return &chatClient{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat respFormat    `json:"response_format"`
	Messages       []chatMessage `json:"messages"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *chatClient) classify(ctx context.Context, text string, mode Mode) (Annotation, error) {
	system := basicSystemPrompt
	if mode == ModePro {
		system = proSystemPrompt
	}
	user := "Here is the caption + stacked comments from ONE post.\n" +
		"Text:\n------------------\n" + text + "\n------------------\n" +
		"Now respond ONLY with the JSON object."

	body, err := json.Marshal(chatRequest{
		Model:          c.model,
		Temperature:    0.2,
		ResponseFormat: respFormat{Type: "json_object"},
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return Annotation{}, fmt.Errorf("marshal request: %w", err)
	}

	url := c.endpoint + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Annotation{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Annotation{}, fmt.Errorf("HTTP POST %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Annotation{}, fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, url, string(respBody))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Annotation{}, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return Annotation{}, fmt.Errorf("no choices returned from %s", url)
	}

	var ann Annotation
	if err := json.Unmarshal([]byte(result.Choices[0].Message.Content), &ann); err != nil {
		return Annotation{}, fmt.Errorf("model returned invalid JSON: %w", err)
	}
	return ann, nil
}
