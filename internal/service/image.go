package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImageConfig configures the image generation client
type ImageConfig struct {
	APIURL     string
	APIKey     string
	Model      string
	Size       string
	MaxRetries int
	Timeout    time.Duration
	// RetryBackoff is multiplied by the attempt number between attempts
	RetryBackoff time.Duration
}

// ImageGenerationRequest represents a request to the images API
type ImageGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

// ImageGenerationResponse represents the response from the images API
type ImageGenerationResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		B64JSON       string `json:"b64_json,omitempty"`
		URL           string `json:"url,omitempty"`
		RevisedPrompt string `json:"revised_prompt,omitempty"`
	} `json:"data"`
}

// ImageService generates recipe card images and optionally re-hosts them
type ImageService struct {
	cfg      ImageConfig
	uploader ImageUploader
	client   *http.Client
	log      *zap.Logger
}

// NewImageService creates a new ImageService instance. uploader may be nil,
// in which case images are returned as data URIs.
func NewImageService(cfg ImageConfig, uploader ImageUploader, log *zap.Logger) (*ImageService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("IMAGE_API_KEY not configured")
	}
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("IMAGE_API_URL not configured")
	}
	if cfg.Size == "" {
		cfg.Size = "1024x1024"
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ImageService{
		cfg:      cfg,
		uploader: uploader,
		client:   &http.Client{Timeout: cfg.Timeout},
		log:      log.Named("image"),
	}, nil
}

// GenerateRecipeImage generates an image for a dish
func (s *ImageService) GenerateRecipeImage(ctx context.Context, dishName, description string) (string, error) {
	prompt := ImagePrompt(dishName, description)
	s.log.Debug("Generating recipe image", zap.String("dish", dishName))

	attempts := s.cfg.MaxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		data, err := s.generateImageAttempt(ctx, prompt)
		if err == nil {
			return s.publish(ctx, data), nil
		}
		lastErr = err
		s.log.Warn("Image generation attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("attempts", attempts),
			zap.Error(err))

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * s.cfg.RetryBackoff):
		}
	}
	return "", fmt.Errorf("failed to generate image after %d attempts: %w", attempts, lastErr)
}

// generateImageAttempt performs a single request and returns the PNG bytes
func (s *ImageService) generateImageAttempt(ctx context.Context, prompt string) ([]byte, error) {
	reqBody := ImageGenerationRequest{
		Model:          s.cfg.Model,
		Prompt:         prompt,
		N:              1,
		Size:           s.cfg.Size,
		ResponseFormat: "b64_json",
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.cfg.APIKey))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d", resp.StatusCode)
	}

	var result ImageGenerationResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Data) == 0 || result.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("no image data in API response")
	}

	data, err := base64.StdEncoding.DecodeString(result.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image data: %w", err)
	}
	return data, nil
}

// publish uploads the image when an uploader is configured and falls back to
// an inline data URI otherwise or on upload failure.
func (s *ImageService) publish(ctx context.Context, data []byte) string {
	dataURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
	if s.uploader == nil {
		return dataURI
	}

	key := fmt.Sprintf("recipe-images/%s.png", uuid.New().String())
	url, err := s.uploader.Upload(ctx, key, data, "image/png")
	if err != nil {
		s.log.Warn("Failed to upload image, returning data URI", zap.Error(err))
		return dataURI
	}
	s.log.Info("Uploaded recipe image", zap.String("url", url))
	return url
}
