package services

import (
	"context"

	"github.com/sparkwave/painel_admin_go/internal/api"
	"github.com/sparkwave/painel_admin_go/internal/core"
	appLogger "github.com/sparkwave/painel_admin_go/internal/core/logger"
	"github.com/sparkwave/painel_admin_go/internal/data/models"
)

// DashboardService lê /admin/dashboard/stats.
type DashboardService struct {
	cfg     *core.Config
	fetcher *api.Fetcher
}

func NewDashboardService(cfg *core.Config, fetcher *api.Fetcher) *DashboardService {
	if cfg == nil || fetcher == nil {
		appLogger.Fatalf("Dependências nulas fornecidas para NewDashboardService")
	}
	return &DashboardService{cfg: cfg, fetcher: fetcher}
}

// Stats devolve as estatísticas do painel.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := api.GetJSON(ctx, s.fetcher, s.cfg.AdminURL("/dashboard/stats"), "carregar dashboard", &stats); err != nil {
		return nil, err
	}
	if stats.UsersByRole == nil {
		stats.UsersByRole = map[string]int64{}
	}
	if stats.LoginsByDay == nil {
		stats.LoginsByDay = map[string]int64{}
	}
	return &stats, nil
}
