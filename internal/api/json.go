package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sparkwave/painel_admin_go/internal/core"
	"github.com/sparkwave/painel_admin_go/internal/data/models"
)

// maxErrorBody limita a leitura do corpo de respostas de erro.
const maxErrorBody = 64 << 10

var jsonHeader = http.Header{
	"Content-Type": {"application/json"},
	"Accept":       {"application/json"},
}

// IsSuccess informa se o status é 2xx.
func IsSuccess(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}

// CheckResponse transforma uma resposta não-2xx em *core.RequestError,
// usando o campo "message" do corpo quando presente. Não fecha o corpo.
func CheckResponse(resp *http.Response, operation string) error {
	if IsSuccess(resp) {
		return nil
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var msg models.MessageResponse
	if len(data) > 0 && json.Unmarshal(data, &msg) == nil && strings.TrimSpace(msg.Message) != "" {
		return core.NewRequestError(operation, resp.StatusCode, msg.Message)
	}
	return core.NewRequestError(operation, resp.StatusCode, "")
}

// GetJSON faz GET autenticado e decodifica o corpo 2xx em out.
func GetJSON(ctx context.Context, f *Fetcher, url, operation string, out interface{}) error {
	return SendJSON(ctx, f, http.MethodGet, url, operation, nil, out)
}

// SendJSON envia in (se não nil) como JSON e decodifica a resposta 2xx em out (se não nil).
func SendJSON(ctx context.Context, f *Fetcher, method, url, operation string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return core.WrapErrorf(core.ErrInternal, "erro ao serializar requisição para %s: %v", operation, err)
		}
		body = bytes.NewReader(payload)
	}
	resp, err := f.Request(ctx, method, url, body, jsonHeader.Clone())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := CheckResponse(resp, operation); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			// 2xx sem corpo: out fica com o valor zero
			return nil
		}
		return fmt.Errorf("%w: resposta inválida ao %s: %v", core.ErrRequest, operation, err)
	}
	return nil
}
