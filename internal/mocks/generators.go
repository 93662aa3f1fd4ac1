package mocks

import (
	"context"
	"encoding/json"

	"github.com/pageza/pantry-chef/backend/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockTextGenerator is a mock implementation of service.TextGenerator.
// The first return value is marshaled to JSON and decoded into out, the
// same way a model answer would be.
type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) GenerateJSON(ctx context.Context, prompt service.Prompt, out any) error {
	args := m.Called(ctx, prompt, out)
	if payload := args.Get(0); payload != nil {
		var raw []byte
		switch p := payload.(type) {
		case string:
			raw = []byte(p)
		default:
			var err error
			if raw, err = json.Marshal(p); err != nil {
				return err
			}
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return err
		}
	}
	return args.Error(1)
}

// MockImageGenerator is a mock implementation of service.ImageGenerator
type MockImageGenerator struct {
	mock.Mock
}

func (m *MockImageGenerator) GenerateRecipeImage(ctx context.Context, dishName, description string) (string, error) {
	args := m.Called(ctx, dishName, description)
	return args.String(0), args.Error(1)
}

// MockImageUploader is a mock implementation of service.ImageUploader
type MockImageUploader struct {
	mock.Mock
}

func (m *MockImageUploader) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, body, contentType)
	return args.String(0), args.Error(1)
}
