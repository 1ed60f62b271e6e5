package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"rag/types"
)

// ChatModel turns an ordered message sequence into a single completion.
// One blocking call per invocation, no streaming, no internal retry.
type ChatModel interface {
	Complete(ctx context.Context, messages []types.Message) (string, error)
}

// OpenAIChat calls the OpenAI chat completions endpoint.
type OpenAIChat struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float32
	client      *http.Client
}

type chatRequest struct {
	Model       string          `json:"model"`
	Messages    []types.Message `json:"messages"`
	Temperature float32         `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func NewOpenAIChat() *OpenAIChat {
	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	chatModel := os.Getenv("CHAT_MODEL")
	if chatModel == "" {
		chatModel = "gpt-3.5-turbo-0125"
	}
	return &OpenAIChat{
		baseURL:     baseURL,
		apiKey:      os.Getenv("OPENAI_API_KEY"),
		model:       chatModel,
		temperature: 0.2,
		client:      http.DefaultClient,
	}
}

func (c *OpenAIChat) Complete(ctx context.Context, messages []types.Message) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("chat API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("chat API returned no choices")
	}
	return chatResp.Choices[0].Message.Content, nil
}
