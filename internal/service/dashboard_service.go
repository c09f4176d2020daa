package service

import (
	"context"
	"math"

	"evolvers-admin/internal/models"
)

// DashboardService aggregates catalog-wide figures for the admin landing
// page. It works off the same list endpoint the course table uses.
type DashboardService struct {
	api CourseAPI
}

func NewDashboardService(apiClient CourseAPI) *DashboardService {
	return &DashboardService{api: apiClient}
}

func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	courses, err := s.api.ListCourses(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.DashboardStats{
		TotalCourses: len(courses),
	}

	for _, course := range courses {
		if course.Published {
			stats.PublishedCourses++
		}
		if course.Featured {
			stats.FeaturedCourses++
		}
		stats.CatalogValue += course.Price
	}

	if stats.TotalCourses > 0 {
		stats.AveragePrice = math.Round(stats.CatalogValue/float64(stats.TotalCourses)*100) / 100
	}
	stats.CatalogValue = math.Round(stats.CatalogValue*100) / 100

	return stats, nil
}
