package services

import (
	"errors"
	"fmt"

	"clickhelper/internal/extractor"
)

var (
	ErrMissingCredential     = errors.New("no api key configured")
	ErrRateLimited           = errors.New("rate limit reached")
	ErrParse                 = errors.New("could not extract branch name and commit message")
	ErrAuthMissing           = errors.New("chat credentials are not configured")
	ErrExtractionUnavailable = extractor.ErrUnavailable
	ErrEntryNotFound         = errors.New("history entry not found")
	ErrModelDisabled         = errors.New("model is disabled")
)

// RateLimitWindow names which counter ran out.
type RateLimitWindow string

const (
	WindowMinute RateLimitWindow = "minute"
	WindowDay    RateLimitWindow = "day"
)

// RateLimitError reports an exhausted budget. It matches ErrRateLimited with errors.Is.
type RateLimitError struct {
	ModelKey string
	Window   RateLimitWindow
	Limit    int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit reached for %s: %d requests per %s", e.ModelKey, e.Limit, e.Window)
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// UpstreamError is a non-2xx answer from the generative API.
type UpstreamError struct {
	Provider string
	Status   int
	Message  string
	Err      error
}

func (e *UpstreamError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s request failed: %s", e.Provider, msg)
	}
	return fmt.Sprintf("%s request failed (%d): %s. %s", e.Provider, e.Status, msg, e.Hint())
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Hint is a short, human-readable suggestion for the status code.
func (e *UpstreamError) Hint() string {
	switch {
	case e.Status == 400:
		return "The request was rejected, check the model name and generation settings"
	case e.Status == 401, e.Status == 403:
		return "The API key was refused, store a valid key and try again"
	case e.Status == 404:
		return "The model was not found, pick another one in settings"
	case e.Status == 429:
		return "The provider quota is exhausted, wait a moment before retrying"
	case e.Status >= 500:
		return "The provider is having trouble, try again later"
	default:
		return "Unexpected response from the provider"
	}
}

// Hint maps a service error onto what the user can do about it. It returns "" when there is nothing to suggest.
func Hint(err error) string {
	var upstream *UpstreamError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &upstream) && upstream.Status != 0:
		return upstream.Hint()
	case errors.Is(err, ErrMissingCredential):
		return "Store an API key with `clickhelper keys set <provider>`"
	case errors.Is(err, ErrRateLimited):
		return "Wait for the window to pass or pick another model"
	case errors.Is(err, ErrModelDisabled):
		return "Enable the model with `clickhelper models enable <key>`"
	case errors.Is(err, ErrParse):
		return "The model answered in an unexpected format, try again or switch models"
	case errors.Is(err, ErrAuthMissing):
		return "Set the chat server, user id and token"
	default:
		return ""
	}
}
