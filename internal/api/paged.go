package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sparkwave/painel_admin_go/internal/core"
	"github.com/sparkwave/painel_admin_go/internal/data/models"
)

// pageEnvelope é o Page do Spring Data (somente os campos usados).
type pageEnvelope[T any] struct {
	Content    *[]T `json:"content"`
	Number     int  `json:"number"`
	TotalPages int  `json:"totalPages"`
}

// DecodePage aceita um envelope paginado ou uma lista simples.
// Lista simples vira página 0 de 1.
func DecodePage[T any](data []byte) (models.PageResult[T], error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return models.PageResult[T]{}, fmt.Errorf("%w: resposta de página vazia", core.ErrRequest)
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return models.PageResult[T]{}, fmt.Errorf("%w: lista inválida: %v", core.ErrRequest, err)
		}
		return models.NewPageResult(items, 0, 1), nil
	}

	var env pageEnvelope[T]
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return models.PageResult[T]{}, fmt.Errorf("%w: página inválida: %v", core.ErrRequest, err)
	}
	if env.Content == nil {
		return models.PageResult[T]{}, fmt.Errorf("%w: resposta sem campo content", core.ErrRequest)
	}
	return models.NewPageResult(*env.Content, env.Number, env.TotalPages), nil
}

// GetPage faz GET autenticado de uma coleção paginada.
func GetPage[T any](ctx context.Context, f *Fetcher, url, operation string) (models.PageResult[T], error) {
	resp, err := f.Request(ctx, http.MethodGet, url, nil, http.Header{"Accept": {"application/json"}})
	if err != nil {
		return models.PageResult[T]{}, err
	}
	defer resp.Body.Close()

	if err := CheckResponse(resp, operation); err != nil {
		return models.PageResult[T]{}, err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.PageResult[T]{}, fmt.Errorf("%w: %v", core.ErrNetwork, err)
	}
	return DecodePage[T](data)
}
