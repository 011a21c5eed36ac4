package mocks

import (
	"context"
	"fmt"
	"sync"

	"clickhelper/internal/chat"
	"clickhelper/internal/services"
)

// ChatCall is one recorded call on ChatPresenceMock.
type ChatCall struct {
	Method string
	Status string
	Emoji  string
	Text   string
}

type ChatPresenceMock struct {
	SetStatusFunc         func(ctx context.Context, creds chat.Credentials, status string) error
	SetCustomStatusFunc   func(ctx context.Context, creds chat.Credentials, emoji, text string) error
	ClearCustomStatusFunc func(ctx context.Context, creds chat.Credentials) error

	mu    sync.Mutex
	Calls []ChatCall
}

func (m *ChatPresenceMock) record(c ChatCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, c)
}

func (m *ChatPresenceMock) SetStatus(ctx context.Context, creds chat.Credentials, status string) error {
	m.record(ChatCall{Method: "SetStatus", Status: status})
	if m.SetStatusFunc != nil {
		return m.SetStatusFunc(ctx, creds, status)
	}
	return nil
}

func (m *ChatPresenceMock) SetCustomStatus(ctx context.Context, creds chat.Credentials, emoji, text string) error {
	m.record(ChatCall{Method: "SetCustomStatus", Emoji: emoji, Text: text})
	if m.SetCustomStatusFunc != nil {
		return m.SetCustomStatusFunc(ctx, creds, emoji, text)
	}
	return nil
}

func (m *ChatPresenceMock) ClearCustomStatus(ctx context.Context, creds chat.Credentials) error {
	m.record(ChatCall{Method: "ClearCustomStatus"})
	if m.ClearCustomStatusFunc != nil {
		return m.ClearCustomStatusFunc(ctx, creds)
	}
	return nil
}

// TokenStoreMock serves a fixed chat token and API keys per provider.
type TokenStoreMock struct {
	ChatToken string
	APIKeys   map[string]string
	Err       error
}

func (m *TokenStoreMock) GetChatToken() (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.ChatToken, nil
}

func (m *TokenStoreMock) GetApiKey(provider string) (string, error) {
	if key, ok := m.APIKeys[provider]; ok && key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%w for provider %s", services.ErrMissingCredential, provider)
}
