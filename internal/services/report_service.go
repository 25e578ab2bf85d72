package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"espetaria/internal/caching"
	"espetaria/internal/common"
	"espetaria/internal/models"
	"espetaria/internal/repositories"
)

const reportTTL = 5 * time.Minute

type ReportService interface {
	Summary(ctx context.Context, filter *models.ReportFilter) (*models.ReportSummary, error)
	ProductReport(ctx context.Context, filter *models.ReportFilter) (*models.ProductReport, error)
	Consolidated(ctx context.Context, filter *models.ReportFilter) (*models.ConsolidatedReport, error)
}

type reportService struct {
	reportRepo   repositories.ReportRepository
	cacheService caching.CacheService
}

func NewReportService(reportRepo repositories.ReportRepository, cacheService caching.CacheService) ReportService {
	return &reportService{reportRepo: reportRepo, cacheService: cacheService}
}

func validateFilter(filter *models.ReportFilter) error {
	if err := common.ValidateDateRange(filter.StartDate, filter.EndDate); err != nil {
		return err
	}
	switch filter.PriceRange {
	case "", "0-15", "15-30", "30+":
	default:
		return common.NewValidationError("price_range", "must be one of 0-15, 15-30, 30+")
	}
	switch filter.SortBy {
	case "", "quantidade", "receita", "preco":
	default:
		return common.NewValidationError("sort_by", "must be one of quantidade, receita, preco")
	}
	return nil
}

func summaryCacheKey(filter *models.ReportFilter) string {
	return fmt.Sprintf("summary:%d:%d:%s:%s:%s",
		filter.StartDate.Unix(), filter.EndDate.Unix(),
		filter.Category, filter.PriceRange, filter.SortBy)
}

func (s *reportService) Summary(ctx context.Context, filter *models.ReportFilter) (*models.ReportSummary, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	key := summaryCacheKey(filter)
	if cached, err := s.cacheService.GetReportSummary(ctx, key); err == nil && cached != nil {
		return cached, nil
	}

	summary, err := s.reportRepo.Summary(ctx, filter)
	if err != nil {
		return nil, err
	}

	if err := s.cacheService.SetReportSummary(ctx, key, summary, reportTTL); err != nil {
		zap.L().Warn("failed to cache report summary", zap.Error(err))
	}
	return summary, nil
}

func (s *reportService) ProductReport(ctx context.Context, filter *models.ReportFilter) (*models.ProductReport, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	products, err := s.reportRepo.ProductBreakdown(ctx, filter)
	if err != nil {
		return nil, err
	}

	report := &models.ProductReport{Products: products}
	if len(products) > 0 {
		report.TopProduct = &products[0]
		report.BottomProduct = &products[len(products)-1]
	}
	return report, nil
}

func (s *reportService) Consolidated(ctx context.Context, filter *models.ReportFilter) (*models.ConsolidatedReport, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	return s.reportRepo.Consolidated(ctx, filter)
}
