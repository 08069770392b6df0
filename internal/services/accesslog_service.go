package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sparkwave/painel_admin_go/internal/api"
	"github.com/sparkwave/painel_admin_go/internal/core"
	appLogger "github.com/sparkwave/painel_admin_go/internal/core/logger"
	"github.com/sparkwave/painel_admin_go/internal/data/models"
	"github.com/sparkwave/painel_admin_go/internal/pagination"
)

// AccessLogService acessa /admin/access-logs.
type AccessLogService struct {
	cfg     *core.Config
	fetcher *api.Fetcher
}

// NewAccessLogService cria uma nova instância de AccessLogService.
func NewAccessLogService(cfg *core.Config, fetcher *api.Fetcher) *AccessLogService {
	if cfg == nil || fetcher == nil {
		appLogger.Fatalf("Dependências nulas fornecidas para NewAccessLogService")
	}
	return &AccessLogService{cfg: cfg, fetcher: fetcher}
}

// List busca uma página do histórico (page, size e start/end em dias inteiros).
func (s *AccessLogService) List(ctx context.Context, req models.PageRequest) (models.PageResult[models.AccessLogRecord], error) {
	req.SearchTerm = ""
	u := s.cfg.AdminURL("/access-logs") + "?" + pagination.QueryValues(req).Encode()
	return api.GetPage[models.AccessLogRecord](ctx, s.fetcher, u, "carregar histórico de acessos")
}

// ListByUser busca todos os registros de um usuário, opcionalmente limitados a um período.
func (s *AccessLogService) ListByUser(ctx context.Context, userID int64, r *models.DateRange) ([]models.AccessLogRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: id de usuário inválido: %d", core.ErrInvalidInput, userID)
	}
	path := fmt.Sprintf("/access-logs/user/%d", userID)
	var q url.Values
	if r != nil {
		path += "/period"
		q = pagination.DateRangeValues(r)
	}
	u := s.cfg.AdminURL(path)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var logs []models.AccessLogRecord
	if err := api.GetJSON(ctx, s.fetcher, u, "carregar acessos do usuário", &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
