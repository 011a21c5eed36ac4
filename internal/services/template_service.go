package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"clickhelper/internal/models"
	"clickhelper/internal/repositories"
)

const DefaultTemplateName = "review-request"

const defaultTemplateContent = `Please review {{.TaskID}}: {{.TaskTitle}}
Branch: {{.BranchName}}
{{- if .MergeRequestURL}}
MR: {{.MergeRequestURL}}
{{- end}}
{{- if .SourceURL}}
Task: {{.SourceURL}}
{{- end}}`

// TemplateData is what a review template sees when rendered.
type TemplateData struct {
	TaskID          string
	TaskTitle       string
	BranchName      string
	CommitMessage   string
	MergeRequestURL string
	SourceURL       string
}

type TemplateService interface {
	GetTemplate(ctx context.Context, id uint) (*models.Template, error)
	ListTemplates(ctx context.Context) ([]*models.Template, error)
	CreateTemplate(ctx context.Context, t *models.Template) (*models.Template, error)
	UpdateTemplate(ctx context.Context, t *models.Template) (*models.Template, error)
	DeleteTemplate(ctx context.Context, id uint) error
	Render(ctx context.Context, id uint, entry models.HistoryEntry) (string, error)
	EnsureDefault(ctx context.Context) (*models.Template, error)
}

type templateService struct {
	repo repositories.TemplateRepository
}

func NewTemplateService(repo repositories.TemplateRepository) TemplateService {
	return &templateService{repo: repo}
}

func (s *templateService) GetTemplate(ctx context.Context, id uint) (*models.Template, error) {
	tmpl, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: get template %d: %w", id, err)
	}
	return tmpl, nil
}

func (s *templateService) ListTemplates(ctx context.Context) ([]*models.Template, error) {
	list, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: list templates: %w", err)
	}
	return list, nil
}

func (s *templateService) CreateTemplate(ctx context.Context, t *models.Template) (*models.Template, error) {
	if err := checkTemplate(t); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("service: create template: %w", err)
	}
	return t, nil
}

func (s *templateService) UpdateTemplate(ctx context.Context, t *models.Template) (*models.Template, error) {
	if err := checkTemplate(t); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("service: update template %d: %w", t.ID, err)
	}
	return t, nil
}

func (s *templateService) DeleteTemplate(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service: delete template %d: %w", id, err)
	}
	return nil
}

func (s *templateService) Render(ctx context.Context, id uint, entry models.HistoryEntry) (string, error) {
	stored, err := s.GetTemplate(ctx, id)
	if err != nil {
		return "", err
	}
	tmpl, err := parseTemplate(stored)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	err = tmpl.Execute(&b, TemplateData{
		TaskID:          entry.TaskID,
		TaskTitle:       entry.TaskTitle,
		BranchName:      entry.BranchName,
		CommitMessage:   entry.CommitMessage,
		MergeRequestURL: entry.GitlabMergeRequestURL,
		SourceURL:       entry.SourceURL,
	})
	if err != nil {
		return "", fmt.Errorf("service: render template %q: %w", stored.Name, err)
	}
	return strings.TrimSpace(b.String()), nil
}

// EnsureDefault seeds the built-in review template unless one with its name exists.
func (s *templateService) EnsureDefault(ctx context.Context) (*models.Template, error) {
	existing, err := s.repo.GetByName(ctx, DefaultTemplateName)
	if err != nil {
		return nil, fmt.Errorf("service: look up default template: %w", err)
	}
	if existing != nil {
		return existing, nil
	}
	return s.CreateTemplate(ctx, &models.Template{Name: DefaultTemplateName, Content: defaultTemplateContent})
}

func checkTemplate(t *models.Template) error {
	if t == nil {
		return errors.New("template is required")
	}
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return errors.New("template name is required")
	}
	_, err := parseTemplate(t)
	return err
}

func parseTemplate(t *models.Template) (*template.Template, error) {
	tmpl, err := template.New(t.Name).Option("missingkey=error").Parse(t.Content)
	if err != nil {
		return nil, fmt.Errorf("service: parse template %q: %w", t.Name, err)
	}
	return tmpl, nil
}
