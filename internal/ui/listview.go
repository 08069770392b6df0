package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/sparkwave/painel_admin_go/internal/core"
	"github.com/sparkwave/painel_admin_go/internal/data/models"
)

// RowMapper converte um registro nas células da linha.
type RowMapper[T models.Identifiable] func(item T) []string

// ActionHandler recebe o id do registro da linha.
type ActionHandler func(ctx context.Context, id int64) error

// RowBinding associa uma ação (ex: "excluir") a um handler. Label, quando presente,
// escolhe o rótulo exibido para cada registro (ex: "ativar"/"desativar").
type RowBinding[T models.Identifiable] struct {
	Action  string
	Label   func(item T) string
	Handler ActionHandler
}

// Row é uma linha renderizada.
type Row struct {
	ID      int64
	Cells   []string
	Actions map[string]func(ctx context.Context) error
	Labels  []string
}

// ListView é o corpo de uma tabela: cabeçalhos fixos e linhas trocadas a cada Render.
type ListView[T models.Identifiable] struct {
	headers     []string
	placeholder string
	mapRow      RowMapper[T]

	mu               sync.RWMutex
	rows             []Row
	footer           string
	placeholderShown bool
}

// NewListView cria a view. placeholder é exibido quando a página não tem itens.
func NewListView[T models.Identifiable](headers []string, placeholder string, mapRow RowMapper[T]) *ListView[T] {
	return &ListView[T]{headers: headers, placeholder: placeholder, mapRow: mapRow}
}

// Render substitui todo o corpo pela página recebida.
// Os handlers de cada linha ficam presos ao id do registro daquela linha.
func (v *ListView[T]) Render(page models.PageResult[T], bindings []RowBinding[T]) {
	rows := make([]Row, 0, len(page.Items))
	for _, item := range page.Items {
		id := item.RecordID()
		row := Row{ID: id, Cells: v.mapRow(item), Actions: make(map[string]func(ctx context.Context) error, len(bindings))}
		for _, b := range bindings {
			handler := b.Handler
			row.Actions[b.Action] = func(ctx context.Context) error { return handler(ctx, id) }
			label := b.Action
			if b.Label != nil {
				label = b.Label(item)
			}
			row.Labels = append(row.Labels, label)
		}
		rows = append(rows, row)
	}

	v.mu.Lock()
	v.rows = rows
	v.placeholderShown = len(rows) == 0
	v.footer = page.Label()
	v.mu.Unlock()
}

// Rows devolve as linhas atuais (vazio quando o placeholder está visível).
func (v *ListView[T]) Rows() []Row {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]Row(nil), v.rows...)
}

// RowCount conta as linhas do corpo, incluindo a linha de placeholder.
func (v *ListView[T]) RowCount() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.placeholderShown {
		return 1
	}
	return len(v.rows)
}

// PlaceholderShown informa se o corpo exibe apenas a linha "nenhum registro".
func (v *ListView[T]) PlaceholderShown() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.placeholderShown
}

// Invoke dispara a ação de uma linha visível.
func (v *ListView[T]) Invoke(ctx context.Context, id int64, action string) error {
	v.mu.RLock()
	var fn func(ctx context.Context) error
	for _, r := range v.rows {
		if r.ID == id {
			fn = r.Actions[action]
			break
		}
	}
	v.mu.RUnlock()
	if fn == nil {
		return fmt.Errorf("%w: ação '%s' indisponível para o registro %d", core.ErrNotFound, action, id)
	}
	return fn(ctx)
}

// Write desenha a tabela com tabwriter.
func (v *ListView[T]) Write(w io.Writer) error {
	v.mu.RLock()
	defer v.mu.RUnlock()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := strings.Join(v.headers, "\t")
	fmt.Fprintln(tw, header+"\tAções")
	if v.placeholderShown {
		fmt.Fprintln(tw, v.placeholder)
	}
	for _, r := range v.rows {
		fmt.Fprintf(tw, "%s\t%s\n", strings.Join(r.Cells, "\t"), strings.Join(r.Labels, " | "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if v.footer != "" {
		_, err := fmt.Fprintln(w, v.footer)
		return err
	}
	return nil
}
