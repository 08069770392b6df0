package pagination

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	appLogger "github.com/sparkwave/painel_admin_go/internal/core/logger"
	"github.com/sparkwave/painel_admin_go/internal/data/models"
)

// FetchFunc busca uma página no servidor.
type FetchFunc[T any] func(ctx context.Context, req models.PageRequest) (models.PageResult[T], error)

// RenderFunc recebe cada página aplicada, na ordem em que foi aplicada.
type RenderFunc[T any] func(result models.PageResult[T])

// ErrorFunc recebe falhas de carga (notificação não bloqueante).
type ErrorFunc func(err error)

// Filters são os filtros opcionais e independentes de uma lista.
type Filters struct {
	SearchTerm string
	DateRange  *models.DateRange
}

func (f Filters) clone() Filters {
	c := f
	if f.DateRange != nil {
		r := *f.DateRange
		c.DateRange = &r
	}
	return c
}

// PagedListController controla uma coleção remota paginada com busca e filtro por datas.
//
// Cada Load recebe um número de sequência. Uma resposta que chega depois de outra mais
// recente já aplicada é descartada, de modo que a tela reflete sempre o pedido mais novo.
// Em caso de falha, o estado anterior (e o que foi renderizado) permanece intacto.
type PagedListController[T any] struct {
	name     string
	pageSize int
	fetch    FetchFunc[T]
	render   RenderFunc[T]
	onError  ErrorFunc

	mu      sync.Mutex // protege o estado abaixo
	request models.PageRequest
	result  *models.PageResult[T]
	issued  uint64
	applied uint64

	renderMu sync.Mutex // serializa verificação+aplicação+render
}

// NewPagedListController cria um controller. render e onError podem ser nil.
func NewPagedListController[T any](name string, pageSize int, fetch FetchFunc[T], render RenderFunc[T], onError ErrorFunc) *PagedListController[T] {
	if fetch == nil {
		appLogger.Fatalf("FetchFunc é obrigatória para o controller %s", name)
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &PagedListController[T]{
		name:     name,
		pageSize: pageSize,
		fetch:    fetch,
		render:   render,
		onError:  onError,
		request:  models.PageRequest{PageSize: pageSize},
	}
}

// Load busca a página pageIndex com os filtros dados e, se for a resposta mais recente, renderiza.
func (c *PagedListController[T]) Load(ctx context.Context, pageIndex int, filters Filters) error {
	f := filters.clone()
	req := models.PageRequest{
		PageIndex:  pageIndex,
		PageSize:   c.pageSize,
		SearchTerm: strings.TrimSpace(f.SearchTerm),
		DateRange:  f.DateRange,
	}
	logCtx := appLogger.WithFields(logrus.Fields{"list": c.name, "page": pageIndex})

	if err := req.Validate(); err != nil {
		logCtx.Warnf("Pedido de página inválido: %v", err)
		c.notify(err)
		return err
	}

	c.mu.Lock()
	c.issued++
	seq := c.issued
	c.mu.Unlock()

	result, err := c.fetch(ctx, req)
	if err != nil {
		c.mu.Lock()
		stale := seq < c.applied
		c.mu.Unlock()
		if stale {
			logCtx.Debugf("Falha de um pedido já superado (seq %d): %v", seq, err)
			return err
		}
		logCtx.Warnf("Falha ao carregar página: %v", err)
		c.notify(err)
		return err
	}
	result = models.NewPageResult(result.Items, result.PageIndex, result.TotalPages)

	// A última página ficou vazia (exclusão do único item, por exemplo): volta para a
	// nova última página em vez de exibir uma página além do total.
	if last := result.TotalPages - 1; len(result.Items) == 0 && result.PageIndex > last && pageIndex > last {
		logCtx.Infof("Página %d além do total (%d); carregando a página %d.", result.PageIndex, result.TotalPages, last)
		return c.Load(ctx, last, f)
	}

	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	c.mu.Lock()
	if seq < c.applied {
		c.mu.Unlock()
		logCtx.Infof("Resposta fora de ordem descartada (seq %d < %d).", seq, c.applied)
		return nil
	}
	c.applied = seq
	c.request = req
	c.request.PageIndex = result.PageIndex
	c.result = &result
	c.mu.Unlock()

	logCtx.Debugf("Página aplicada: %d itens, %s.", len(result.Items), result.Label())
	if c.render != nil {
		c.render(result)
	}
	return nil
}

// GoToPage avança (delta > 0) ou recua (delta < 0) mantendo os filtros.
// Devolve false, sem chamada de rede, quando o destino sai de [0, totalPages-1].
func (c *PagedListController[T]) GoToPage(ctx context.Context, delta int) (bool, error) {
	c.mu.Lock()
	if c.result == nil {
		c.mu.Unlock()
		return false, nil
	}
	target := c.result.PageIndex + delta
	total := c.result.TotalPages
	filters := c.filtersLocked()
	c.mu.Unlock()

	if target < 0 || target > total-1 {
		return false, nil
	}
	return true, c.Load(ctx, target, filters)
}

// Search aplica um novo termo de busca (mantendo o filtro de datas) e volta à página 0.
func (c *PagedListController[T]) Search(ctx context.Context, term string) error {
	c.mu.Lock()
	filters := c.filtersLocked()
	c.mu.Unlock()
	filters.SearchTerm = term
	return c.Load(ctx, 0, filters)
}

// FilterByDate aplica (ou remove, com nil) o intervalo de datas e volta à página 0.
func (c *PagedListController[T]) FilterByDate(ctx context.Context, r *models.DateRange) error {
	c.mu.Lock()
	filters := c.filtersLocked()
	c.mu.Unlock()
	filters.DateRange = r
	return c.Load(ctx, 0, filters)
}

// Reload recarrega a página atual com os filtros atuais.
func (c *PagedListController[T]) Reload(ctx context.Context) error {
	c.mu.Lock()
	page := c.request.PageIndex
	filters := c.filtersLocked()
	c.mu.Unlock()
	return c.Load(ctx, page, filters)
}

// Current devolve a última página aplicada (ok=false antes do primeiro Load bem-sucedido).
func (c *PagedListController[T]) Current() (models.PageResult[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return models.PageResult[T]{}, false
	}
	r := *c.result
	r.Items = append([]T(nil), c.result.Items...)
	return r, true
}

// Request devolve o último PageRequest aplicado.
func (c *PagedListController[T]) Request() models.PageRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.request.WithPage(c.request.PageIndex)
}

// Filters devolve os filtros da página exibida.
func (c *PagedListController[T]) Filters() Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filtersLocked()
}

func (c *PagedListController[T]) filtersLocked() Filters {
	return Filters{SearchTerm: c.request.SearchTerm, DateRange: c.request.DateRange}.clone()
}

func (c *PagedListController[T]) notify(err error) {
	if c.onError != nil {
		c.onError(err)
	}
}
