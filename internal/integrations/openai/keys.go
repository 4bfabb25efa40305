package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// KeySource resolves the API key.
type KeySource interface {
	APIKey(ctx context.Context) (string, error)
}

// StaticKey is a key known up front, e.g. from OPENAI_API_KEY.
type StaticKey string

func (k StaticKey) APIKey(_ context.Context) (string, error) {
	key := strings.TrimSpace(string(k))
	if key == "" {
		return "", errors.New("openai: API token is empty")
	}
	return key, nil
}

// Getter is the parameter store lookup used by ParamStoreKey.
type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// ParamStoreKey reads the key from a parameter holding {"token": "..."}.
type ParamStoreKey struct {
	Getter Getter
	Name   string
}

func (p ParamStoreKey) APIKey(ctx context.Context) (string, error) {
	return fetchAPIKeyFromParamStore(ctx, p.Getter, p.Name)
}

// tokenPayload is the expected JSON shape stored in SSM for the API token.
type tokenPayload struct {
	Token string `json:"token"`
}

func fetchAPIKeyFromParamStore(ctx context.Context, getter Getter, name string) (string, error) {
	if getter == nil {
		return "", errors.New("openai: paramstore getter is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("openai: token parameter name is empty")
	}

	raw, err := getter.GetParameter(ctx, name)
	if err != nil {
		return "", fmt.Errorf("openai: fetch token from paramstore: %w", err)
	}
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("openai: unmarshal paramstore token value as JSON: %w", err)
	}
	if tp.Token == "" {
		return "", fmt.Errorf("openai: API token is empty")
	}
	return tp.Token, nil
}
