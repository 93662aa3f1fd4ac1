package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// LLMConfig configures the chat-completions client
type LLMConfig struct {
	APIURL      string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// LLMService talks to an OpenAI-compatible chat completions API
type LLMService struct {
	cfg    LLMConfig
	client *http.Client
	log    *zap.Logger
}

// NewLLMService creates a new LLMService instance
func NewLLMService(cfg LLMConfig, log *zap.Logger) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY not configured")
	}
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("LLM_API_URL not configured")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &LLMService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.Named("llm"),
	}, nil
}

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents a request to the chat completions API
type ChatRequest struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
}

// ChatResponse is the subset of the chat completions response we read
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateJSON sends prompt and decodes the first choice's JSON content into out
func (s *LLMService) GenerateJSON(ctx context.Context, prompt Prompt, out any) error {
	content, err := s.complete(ctx, prompt)
	if err != nil {
		return err
	}

	content = stripCodeFence(content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		s.log.Warn("Model returned non-JSON content", zap.Error(err), zap.Int("length", len(content)))
		return fmt.Errorf("failed to decode model output: %w", err)
	}
	return nil
}

func (s *LLMService) complete(ctx context.Context, prompt Prompt) (string, error) {
	messages := []Message{}
	if prompt.System != "" {
		messages = append(messages, Message{Role: "system", Content: prompt.System})
	}
	messages = append(messages, Message{Role: "user", Content: prompt.User})

	reqBody := ChatRequest{
		Model:    s.cfg.Model,
		Messages: messages,
		ResponseFormat: map[string]string{
			"type": "json_object",
		},
		Temperature: s.cfg.Temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.cfg.APIKey))

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		s.log.Warn("Chat completion failed",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(body, 512)))
		return "", fmt.Errorf("API request failed with status %d", resp.StatusCode)
	}

	var result ChatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no response from API")
	}

	s.log.Debug("Chat completion received",
		zap.String("model", s.cfg.Model),
		zap.Duration("elapsed", time.Since(start)))
	return result.Choices[0].Message.Content, nil
}

// stripCodeFence removes a surrounding markdown code fence some models add
// even in JSON mode.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
