package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dropspace/dropspace/internal/domain"
	"github.com/dropspace/dropspace/internal/ingestion"

	"github.com/rs/xid"
)

type LinkService struct {
	links  domain.LinkRepository
	quotas domain.QuotaRepository

	defaultQuotaBytes int64
}

type LinkServiceDependencies struct {
	LinkRepository    domain.LinkRepository
	QuotaRepository   domain.QuotaRepository
	DefaultQuotaBytes int64
}

func NewLinkService(deps LinkServiceDependencies) *LinkService {
	return &LinkService{
		links:             deps.LinkRepository,
		quotas:            deps.QuotaRepository,
		defaultQuotaBytes: deps.DefaultQuotaBytes,
	}
}

type CreateLinkParams struct {
	OwnerID          string
	WorkspaceID      string
	Title            string
	LinkType         domain.LinkType
	MaxFiles         int64
	MaxFileSizeBytes int64
	AllowedFileTypes []string
	Password         string
	RequireEmail     bool
	ExpiresAt        *time.Time
}

func (s *LinkService) CreateLink(ctx context.Context, p CreateLinkParams) (domain.Link, error) {
	if p.LinkType == domain.LinkTypeGenerated && p.WorkspaceID == "" {
		return domain.Link{}, fmt.Errorf("generated links require a workspace")
	}

	now := time.Now()

	link := domain.Link{
		ID:               xid.New().String(),
		OwnerID:          p.OwnerID,
		WorkspaceID:      p.WorkspaceID,
		Title:            p.Title,
		LinkType:         p.LinkType,
		IsActive:         true,
		MaxFiles:         p.MaxFiles,
		MaxFileSizeBytes: p.MaxFileSizeBytes,
		AllowedFileTypes: p.AllowedFileTypes,
		RequireEmail:     p.RequireEmail,
		ExpiresAt:        p.ExpiresAt,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if p.Password != "" {
		link.RequirePassword = true
		link.PasswordHash = ingestion.HashLinkPassword(p.Password)
	}

	if err := s.links.CreateLink(ctx, link); err != nil {
		return domain.Link{}, fmt.Errorf("failed to create link: %w", err)
	}

	// New owners get a quota document seeded with the default plan.
	if err := s.quotas.EnsureQuota(ctx, domain.Quota{
		OwnerID:    p.OwnerID,
		Plan:       "free",
		LimitBytes: s.defaultQuotaBytes,
	}); err != nil {
		return domain.Link{}, fmt.Errorf("failed to seed owner quota: %w", err)
	}

	return link, nil
}

func (s *LinkService) GetLink(ctx context.Context, id string) (domain.Link, error) {
	return s.links.GetLink(ctx, id)
}

func (s *LinkService) DeactivateLink(ctx context.Context, id string) error {
	if err := s.links.SetLinkActive(ctx, id, false); err != nil {
		return fmt.Errorf("failed to deactivate link: %w", err)
	}

	return nil
}
