package service

import (
	"context"

	"github.com/deppfellow/crashmap/internal/model"
)

type DangerRepository interface {
	Compare(ctx context.Context, first, second string) ([]model.Danger, error)
	Top(ctx context.Context, limit int) ([]model.Danger, error)
}

type DangerService struct {
	repo DangerRepository
}

func NewDangerService(repo DangerRepository) *DangerService {
	return &DangerService{repo: repo}
}

func (s *DangerService) Compare(ctx context.Context, payload *model.CompareIntersectionsPayload) ([]model.Danger, error) {
	return s.repo.Compare(ctx, payload.First, payload.Second)
}

// Top ranks intersections by danger ratio. A count of zero returns no rows
// without querying.
func (s *DangerService) Top(ctx context.Context, payload *model.TopDangerousPayload) ([]model.Danger, error) {
	if payload.DisplayNum == 0 {
		return []model.Danger{}, nil
	}
	return s.repo.Top(ctx, payload.DisplayNum)
}
