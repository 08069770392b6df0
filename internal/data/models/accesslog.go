package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status conhecidos de um registro de acesso.
const (
	AccessStatusSuccess = "SUCCESS"
	AccessStatusFailure = "FAILURE"
	AccessStatusFailed  = "FAILED" // forma usada pelo backend
)

// AccessLogRecord é uma entrada do histórico de acessos (GET /admin/access-logs).
type AccessLogRecord struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
	IPAddress string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	Action    string    `json:"action,omitempty"`
	Status    string    `json:"status"`
}

// RecordID implementa Identifiable.
func (a AccessLogRecord) RecordID() int64 { return a.ID }

// IsSuccess informa se o acesso foi bem-sucedido.
func (a AccessLogRecord) IsSuccess() bool {
	return strings.EqualFold(a.Status, AccessStatusSuccess)
}

// IsFailure cobre tanto FAILURE quanto FAILED.
func (a AccessLogRecord) IsFailure() bool {
	return strings.EqualFold(a.Status, AccessStatusFailure) || strings.EqualFold(a.Status, AccessStatusFailed)
}

// accessLogWire aceita as duas formas do servidor: plana (username/timestamp)
// e a entidade serializada (user.username/accessTime).
type accessLogWire struct {
	ID         int64           `json:"id"`
	Username   string          `json:"username"`
	User       *userRef        `json:"user"`
	Timestamp  json.RawMessage `json:"timestamp"`
	AccessTime json.RawMessage `json:"accessTime"`
	IPAddress  string          `json:"ipAddress"`
	UserAgent  string          `json:"userAgent"`
	Action     string          `json:"action"`
	Status     string          `json:"status"`
}

type userRef struct {
	Username string `json:"username"`
}

// UnmarshalJSON implementa json.Unmarshaler.
func (a *AccessLogRecord) UnmarshalJSON(data []byte) error {
	var w accessLogWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	rec := AccessLogRecord{
		ID:        w.ID,
		Username:  w.Username,
		IPAddress: w.IPAddress,
		UserAgent: w.UserAgent,
		Action:    w.Action,
		Status:    w.Status,
	}
	if rec.Username == "" && w.User != nil {
		rec.Username = w.User.Username
	}

	raw := w.Timestamp
	if isEmptyJSON(raw) {
		raw = w.AccessTime
	}
	if !isEmptyJSON(raw) {
		ts, err := parseServerTime(raw)
		if err != nil {
			return fmt.Errorf("registro de acesso %d: %w", w.ID, err)
		}
		rec.Timestamp = ts
	}
	*a = rec
	return nil
}

func isEmptyJSON(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}

// Layouts aceitos para datas do servidor. Sem fuso, a hora é interpretada como local
// (LocalDateTime do backend).
var serverTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// parseServerTime aceita string ISO (com ou sem fuso) ou o array [a,m,d,h,min,s,nanos]
// que o Jackson produz quando WRITE_DATES_AS_TIMESTAMPS está ativo.
func parseServerTime(raw json.RawMessage) (time.Time, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		for i, layout := range serverTimeLayouts {
			var t time.Time
			var perr error
			if i == 0 {
				t, perr = time.Parse(layout, s)
			} else {
				t, perr = time.ParseInLocation(layout, s, time.Local)
			}
			if perr == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("data/hora em formato desconhecido: %q", s)
	}

	var parts []int
	if err := json.Unmarshal(raw, &parts); err != nil || len(parts) < 3 {
		return time.Time{}, fmt.Errorf("data/hora em formato desconhecido: %s", string(raw))
	}
	for len(parts) < 7 {
		parts = append(parts, 0)
	}
	return time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], parts[6], time.Local), nil
}
