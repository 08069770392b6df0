package services

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sparkwave/painel_admin_go/internal/api"
	"github.com/sparkwave/painel_admin_go/internal/core"
	appLogger "github.com/sparkwave/painel_admin_go/internal/core/logger"
	"github.com/sparkwave/painel_admin_go/internal/data/models"
	"github.com/sparkwave/painel_admin_go/internal/pagination"
	"github.com/sparkwave/painel_admin_go/internal/utils"
)

// Nomes usados quando o servidor não envia Content-Disposition.
const (
	UsersCSVFilename      = "usuarios_sparkwave.csv"
	AccessLogsCSVFilename = "historico_acessos_sparkwave.csv"
)

// ExportFormat é o formato da exportação local.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

// ParseExportFormat aceita "csv" ou "xlsx" (sem diferenciar caixa).
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: formato de exportação desconhecido: %s", core.ErrInvalidInput, s)
}

// ExportService baixa as exportações do servidor e exporta localmente a página exibida.
type ExportService struct {
	cfg     *core.Config
	fetcher *api.Fetcher
}

// NewExportService cria uma nova instância de ExportService.
func NewExportService(cfg *core.Config, fetcher *api.Fetcher) *ExportService {
	if cfg == nil || fetcher == nil {
		appLogger.Fatalf("Dependências nulas fornecidas para NewExportService")
	}
	return &ExportService{cfg: cfg, fetcher: fetcher}
}

// DownloadUsersCSV baixa GET /admin/export/users/csv para APP_EXPORT_DIR.
func (s *ExportService) DownloadUsersCSV(ctx context.Context) (string, error) {
	return s.download(ctx, s.cfg.AdminURL("/export/users/csv"), UsersCSVFilename, "exportar usuários")
}

// DownloadAccessLogsCSV baixa GET /admin/export/access-logs/csv, com start/end quando r != nil.
func (s *ExportService) DownloadAccessLogsCSV(ctx context.Context, r *models.DateRange) (string, error) {
	u := s.cfg.AdminURL("/export/access-logs/csv")
	if q := pagination.DateRangeValues(r); len(q) > 0 {
		u += "?" + q.Encode()
	}
	return s.download(ctx, u, AccessLogsCSVFilename, "exportar histórico de acessos")
}

func (s *ExportService) download(ctx context.Context, u, fallbackName, operation string) (string, error) {
	resp, err := s.fetcher.Request(ctx, http.MethodGet, u, nil, http.Header{"Accept": {"text/csv"}})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if err := api.CheckResponse(resp, operation); err != nil {
		return "", err
	}

	name := filenameFromDisposition(resp.Header.Get("Content-Disposition"))
	if name == "" {
		name = fallbackName
	}
	path, n, err := utils.SaveStream(resp.Body, name, s.cfg.ExportDir, false)
	if err != nil {
		return "", err
	}
	appLogger.WithFields(logrus.Fields{"file": path, "bytes": n}).Infof("Download concluído: %s", operation)
	return path, nil
}

// filenameFromDisposition extrai filename de um cabeçalho Content-Disposition.
func filenameFromDisposition(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// ExportPage grava localmente a página exibida, convertendo cada item com mapRow.
func ExportPage[T any](s *ExportService, page models.PageResult[T], headers []string, mapRow func(T) []string, name, sheet string, format ExportFormat) (string, error) {
	rows := make([][]string, 0, len(page.Items))
	for _, item := range page.Items {
		rows = append(rows, mapRow(item))
	}
	input, err := utils.NewTableInput(headers, rows, sheet)
	if err != nil {
		return "", err
	}
	opts := &utils.ExportOptions{CreateBackup: true}
	switch format {
	case FormatCSV:
		return utils.ExportToCSV(input, name+".csv", s.cfg, opts)
	case FormatXLSX:
		return utils.ExportToXLSX([]utils.DataInput{input}, name+".xlsx", s.cfg, opts)
	}
	return "", fmt.Errorf("%w: formato de exportação desconhecido: %s", core.ErrExport, format)
}
