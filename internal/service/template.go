package service

import (
	"context"
	"fmt"

	"github.com/covenantlabs/covenant-server/internal/apperrors"
	"github.com/covenantlabs/covenant-server/internal/models"
	"github.com/google/uuid"
)

// Template methods
func (s *DefaultService) CreateTemplate(ctx context.Context, userID string, req models.CreateTemplateRequest) (*models.Template, error) {
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	template := &models.Template{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Content:     req.Content,
		Fields:      req.Fields,
		IsPublic:    isPublic,
		Creator:     userID,
	}

	if err := s.repo.CreateTemplate(ctx, template); err != nil {
		return nil, fmt.Errorf("error creating template: %w", err)
	}

	return template, nil
}

func (s *DefaultService) ListTemplates(ctx context.Context, userID, category string) ([]models.Template, error) {
	templates, err := s.repo.ListTemplates(ctx, userID, category)
	if err != nil {
		return nil, fmt.Errorf("error listing templates: %w", err)
	}

	return templates, nil
}

func (s *DefaultService) GetTemplate(ctx context.Context, userID, templateID string) (*models.Template, error) {
	template, err := s.repo.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("error getting template: %w", err)
	}

	if template == nil {
		return nil, fmt.Errorf("template not found: %w", apperrors.ErrNotFound)
	}

	// Private templates are visible to their creator only
	if !template.IsPublic && template.Creator != userID {
		return nil, fmt.Errorf("not authorized to access this template: %w", apperrors.ErrForbidden)
	}

	return template, nil
}

func (s *DefaultService) UpdateTemplate(ctx context.Context, userID, templateID string, req models.UpdateTemplateRequest) (*models.Template, error) {
	template, err := s.repo.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("error getting template: %w", err)
	}

	if template == nil {
		return nil, fmt.Errorf("template not found: %w", apperrors.ErrNotFound)
	}

	if template.Creator != userID {
		return nil, fmt.Errorf("not authorized to update this template: %w", apperrors.ErrForbidden)
	}

	if req.Name != "" {
		template.Name = req.Name
	}
	if req.Description != "" {
		template.Description = req.Description
	}
	if req.Category != "" {
		template.Category = req.Category
	}
	if len(req.Content) > 0 {
		template.Content = req.Content
	}
	if req.Fields != nil {
		template.Fields = req.Fields
	}
	if req.IsPublic != nil {
		template.IsPublic = *req.IsPublic
	}

	if err := s.repo.UpdateTemplate(ctx, template); err != nil {
		return nil, fmt.Errorf("error updating template: %w", err)
	}

	return template, nil
}

func (s *DefaultService) DeleteTemplate(ctx context.Context, userID, templateID string) error {
	template, err := s.repo.GetTemplate(ctx, templateID)
	if err != nil {
		return fmt.Errorf("error getting template: %w", err)
	}

	if template == nil {
		return fmt.Errorf("template not found: %w", apperrors.ErrNotFound)
	}

	if template.Creator != userID {
		return fmt.Errorf("not authorized to delete this template: %w", apperrors.ErrForbidden)
	}

	if err := s.repo.DeleteTemplate(ctx, templateID); err != nil {
		return fmt.Errorf("error deleting template: %w", err)
	}

	return nil
}
