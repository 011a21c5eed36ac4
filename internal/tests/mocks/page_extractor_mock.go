package mocks

import (
	"context"

	"clickhelper/internal/extractor"
	"clickhelper/internal/models"
)

type PageExtractorMock struct {
	ExtractFunc func(ctx context.Context, page extractor.Page) (*models.TaskData, error)
}

func (m *PageExtractorMock) Extract(ctx context.Context, page extractor.Page) (*models.TaskData, error) {
	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, page)
	}
	return nil, nil
}
