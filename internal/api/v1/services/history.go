package services

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"whisper-bridge/internal/api/v1/dto"
	"whisper-bridge/internal/app/converter/export"
	"whisper-bridge/internal/app/model"
	"whisper-bridge/internal/app/repository"
)

// DefaultHistoryLimit applies when the client sends no limit.
const DefaultHistoryLimit = 20

type historyService struct {
	dao repository.RunDAO
}

// NewHistoryService creates a history service over dao
func NewHistoryService(dao repository.RunDAO) HistoryService {
	return &historyService{dao: dao}
}

func (s *historyService) Recent(ctx context.Context, limit int) (*dto.HistoryResponse, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	runs, err := s.dao.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return &dto.HistoryResponse{
		Runs:  lo.Map(runs, func(r model.Run, _ int) dto.RunResponse { return dto.FromRun(r) }),
		Count: len(runs),
	}, nil
}

func (s *historyService) Export(ctx context.Context, path string) error {
	runs, err := s.dao.Recent(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	return export.ToExcel(runs, path)
}
