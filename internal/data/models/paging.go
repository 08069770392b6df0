package models

import (
	"fmt"
	"strings"
	"time"
)

// Identifiable é implementado pelos registros exibidos em listas com ações por linha.
type Identifiable interface {
	RecordID() int64
}

// DateRange é um intervalo de dias (inclusivo). Apenas as datas de calendário importam;
// a hora escolhida pelo operador é descartada na codificação.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Validate rejeita intervalos vazios ou invertidos.
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("intervalo de datas incompleto")
	}
	sy, sm, sd := r.Start.Date()
	ey, em, ed := r.End.Date()
	start := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	if end.Before(start) {
		return fmt.Errorf("data final (%s) anterior à data inicial (%s)", r.End.Format("02/01/2006"), r.Start.Format("02/01/2006"))
	}
	return nil
}

// PageRequest é o pedido imutável de uma página.
type PageRequest struct {
	PageIndex  int
	PageSize   int
	SearchTerm string
	DateRange  *DateRange
}

// Validate verifica PageIndex >= 0 e PageSize > 0.
func (p PageRequest) Validate() error {
	if p.PageIndex < 0 {
		return fmt.Errorf("índice de página inválido: %d", p.PageIndex)
	}
	if p.PageSize <= 0 {
		return fmt.Errorf("tamanho de página inválido: %d", p.PageSize)
	}
	if p.DateRange != nil {
		return p.DateRange.Validate()
	}
	return nil
}

// HasSearch informa se há termo de busca não vazio.
func (p PageRequest) HasSearch() bool {
	return strings.TrimSpace(p.SearchTerm) != ""
}

// WithPage devolve uma cópia apontando para outra página, mantendo os filtros.
func (p PageRequest) WithPage(index int) PageRequest {
	c := p
	c.PageIndex = index
	if p.DateRange != nil {
		r := *p.DateRange
		c.DateRange = &r
	}
	return c
}

// PageResult é uma página já decodificada. TotalPages é sempre >= 1.
type PageResult[T any] struct {
	Items      []T
	PageIndex  int
	TotalPages int
}

// NewPageResult normaliza os valores recebidos do servidor.
func NewPageResult[T any](items []T, pageIndex, totalPages int) PageResult[T] {
	if items == nil {
		items = []T{}
	}
	if totalPages < 1 {
		totalPages = 1
	}
	if pageIndex < 0 {
		pageIndex = 0
	}
	return PageResult[T]{Items: items, PageIndex: pageIndex, TotalPages: totalPages}
}

// IsEmpty informa se a página não tem itens.
func (r PageResult[T]) IsEmpty() bool { return len(r.Items) == 0 }

// HasPrevious / HasNext controlam a navegação.
func (r PageResult[T]) HasPrevious() bool { return r.PageIndex > 0 }
func (r PageResult[T]) HasNext() bool     { return r.PageIndex < r.TotalPages-1 }

// Label devolve "Página N de M".
func (r PageResult[T]) Label() string {
	return fmt.Sprintf("Página %d de %d", r.PageIndex+1, r.TotalPages)
}
