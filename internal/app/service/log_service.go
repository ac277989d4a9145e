package service

import (
	"context"
	"fmt"

	"hackr_api/internal/domain/model"
	"hackr_api/internal/domain/repository"
)

// LogsPageSize is the fixed number of entries per access log page.
const LogsPageSize = 5

type LogService struct {
	logRepo repository.AccessLogRepository
}

func NewLogService(logRepo repository.AccessLogRepository) *LogService {
	return &LogService{logRepo: logRepo}
}

// ListPage returns the given 1-based page of access logs, newest first.
// Pages below 1 are treated as 1; pages past the end come back empty.
func (s *LogService) ListPage(ctx context.Context, page int) (*model.AccessLogPage, error) {
	if page < 1 {
		page = 1
	}

	logs, total, err := s.logRepo.ListNewest(ctx, LogsPageSize, (page-1)*LogsPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list access logs: %w", err)
	}
	if logs == nil {
		logs = []model.AccessLog{}
	}

	return &model.AccessLogPage{
		CurrentPage: page,
		TotalPages:  (total + LogsPageSize - 1) / LogsPageSize,
		Logs:        logs,
	}, nil
}
