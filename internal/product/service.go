package product

import (
	"context"

	"tokopay-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	ListActive(ctx context.Context, category string) ([]*Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListActive(ctx context.Context, category string) ([]*Product, error) {
	products, err := s.repo.ListActive(ctx, category)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list products",
			zap.String("category", category),
			zap.Error(err),
		)
		return nil, err
	}
	return products, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}
