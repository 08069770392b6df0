package pagination

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sparkwave/painel_admin_go/internal/data/models"
)

// TimestampLayout é o formato canônico enviado à API (ISO-8601 em UTC, milissegundos).
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// StartOfDay devolve 00:00:00.000 do dia de t, no fuso de t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay devolve 23:59:59.999 do dia de t, no fuso de t.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// FormatTimestamp converte para UTC no formato canônico.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// EncodeDateRange expande o intervalo para dias inteiros e formata os limites.
// A hora escolhida pelo operador é descartada.
func EncodeDateRange(r models.DateRange) (start, end string) {
	return FormatTimestamp(StartOfDay(r.Start)), FormatTimestamp(EndOfDay(r.End))
}

// DateRangeValues devolve start/end como parâmetros de query (vazio quando r é nil).
func DateRangeValues(r *models.DateRange) url.Values {
	v := url.Values{}
	if r == nil {
		return v
	}
	start, end := EncodeDateRange(*r)
	v.Set("start", start)
	v.Set("end", end)
	return v
}

// QueryValues traduz um PageRequest em page, size, search e start/end.
func QueryValues(req models.PageRequest) url.Values {
	v := DateRangeValues(req.DateRange)
	v.Set("page", strconv.Itoa(req.PageIndex))
	v.Set("size", strconv.Itoa(req.PageSize))
	if term := strings.TrimSpace(req.SearchTerm); term != "" {
		v.Set("search", term)
	}
	return v
}
