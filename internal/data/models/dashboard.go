package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DashboardStats é a resposta de GET /admin/dashboard/stats.
// LoginsByDay é indexado pela data ISO (AAAA-MM-DD) dos logins bem-sucedidos da última semana.
type DashboardStats struct {
	TotalUsers       int64            `json:"totalUsers"`
	ActiveUsers      int64            `json:"activeUsers"`
	UsersByRole      map[string]int64 `json:"usersByRole"`
	TotalLogins      int64            `json:"totalLogins"`
	SuccessfulLogins int64            `json:"successfulLogins"`
	FailedLogins     int64            `json:"failedLogins"`
	LoginsByDay      map[string]int64 `json:"loginsByDay"`
}

// DayCount é um ponto da série diária.
type DayCount struct {
	Date  string // AAAA-MM-DD
	Label string // dd/mm
	Count int64
}

// RoleCount é a contagem de usuários de um perfil.
type RoleCount struct {
	Role  string
	Count int64
}

var hundred = decimal.NewFromInt(100)

func percentage(part, total int64) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part).Mul(hundred).Div(decimal.NewFromInt(total)).Round(1)
}

// SuccessRate é o percentual de logins bem-sucedidos, com uma casa decimal.
func (s DashboardStats) SuccessRate() decimal.Decimal {
	return percentage(s.SuccessfulLogins, s.TotalLogins)
}

// ActiveRate é o percentual de usuários ativos, com uma casa decimal.
func (s DashboardStats) ActiveRate() decimal.Decimal {
	return percentage(s.ActiveUsers, s.TotalUsers)
}

// LoginsOn devolve os logins do dia de t (0 quando ausente).
func (s DashboardStats) LoginsOn(t time.Time) int64 {
	return s.LoginsByDay[t.Format("2006-01-02")]
}

// DailySeries ordena LoginsByDay por data.
func (s DashboardStats) DailySeries() []DayCount {
	dates := make([]string, 0, len(s.LoginsByDay))
	for d := range s.LoginsByDay {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	out := make([]DayCount, 0, len(dates))
	for _, d := range dates {
		label := d
		if t, err := time.Parse("2006-01-02", d); err == nil {
			label = t.Format("02/01")
		}
		out = append(out, DayCount{Date: d, Label: label, Count: s.LoginsByDay[d]})
	}
	return out
}

// RoleSeries ordena UsersByRole por nome do perfil.
func (s DashboardStats) RoleSeries() []RoleCount {
	roles := make([]string, 0, len(s.UsersByRole))
	for r := range s.UsersByRole {
		roles = append(roles, r)
	}
	sort.Strings(roles)
	out := make([]RoleCount, 0, len(roles))
	for _, r := range roles {
		out = append(out, RoleCount{Role: r, Count: s.UsersByRole[r]})
	}
	return out
}
