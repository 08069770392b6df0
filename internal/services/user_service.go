package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/sparkwave/painel_admin_go/internal/api"
	"github.com/sparkwave/painel_admin_go/internal/core"
	appLogger "github.com/sparkwave/painel_admin_go/internal/core/logger"
	"github.com/sparkwave/painel_admin_go/internal/data/models"
	"github.com/sparkwave/painel_admin_go/internal/pagination"
	"github.com/sparkwave/painel_admin_go/internal/utils"
)

// UserService acessa /admin/users.
type UserService struct {
	cfg     *core.Config
	fetcher *api.Fetcher
}

// NewUserService cria uma nova instância de UserService.
func NewUserService(cfg *core.Config, fetcher *api.Fetcher) *UserService {
	if cfg == nil || fetcher == nil {
		appLogger.Fatalf("Dependências nulas fornecidas para NewUserService")
	}
	return &UserService{cfg: cfg, fetcher: fetcher}
}

func (s *UserService) userURL(id int64, suffix string) string {
	return s.cfg.AdminURL(fmt.Sprintf("/users/%d%s", id, suffix))
}

// List busca uma página de usuários (page, size, search).
func (s *UserService) List(ctx context.Context, req models.PageRequest) (models.PageResult[models.UserRecord], error) {
	req.DateRange = nil
	u := s.cfg.AdminURL("/users") + "?" + pagination.QueryValues(req).Encode()
	return api.GetPage[models.UserRecord](ctx, s.fetcher, u, "carregar usuários")
}

// Get busca um usuário pelo id.
func (s *UserService) Get(ctx context.Context, id int64) (*models.UserRecord, error) {
	var user models.UserRecord
	if err := api.GetJSON(ctx, s.fetcher, s.userURL(id, ""), "carregar usuário", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create valida e cria um usuário (POST /admin/users).
func (s *UserService) Create(ctx context.Context, form models.UserForm) (*models.UserRecord, error) {
	if err := utils.ValidateUserForm(&form, true); err != nil {
		return nil, err
	}
	var created models.UserRecord
	if err := api.SendJSON(ctx, s.fetcher, http.MethodPost, s.cfg.AdminURL("/users"), "salvar usuário", form, &created); err != nil {
		appLogger.Warnf("Falha ao criar usuário %s: %v", form.Username, err)
		return nil, err
	}
	appLogger.WithFields(logrus.Fields{"userId": created.ID, "username": created.Username}).Info("Usuário criado.")
	return &created, nil
}

// Update valida e atualiza um usuário (PUT /admin/users/{id}). Senha vazia não é enviada.
func (s *UserService) Update(ctx context.Context, id int64, form models.UserForm) (*models.UserRecord, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id de usuário inválido: %d", core.ErrInvalidInput, id)
	}
	if err := utils.ValidateUserForm(&form, false); err != nil {
		return nil, err
	}
	var updated models.UserRecord
	if err := api.SendJSON(ctx, s.fetcher, http.MethodPut, s.userURL(id, ""), "salvar usuário", form, &updated); err != nil {
		appLogger.Warnf("Falha ao atualizar usuário %d: %v", id, err)
		return nil, err
	}
	appLogger.WithFields(logrus.Fields{"userId": id}).Info("Usuário atualizado.")
	return &updated, nil
}

// SetStatus ativa/desativa (PATCH /admin/users/{id}/status?active=). Devolve a mensagem de sucesso.
func (s *UserService) SetStatus(ctx context.Context, id int64, active bool) (string, error) {
	q := url.Values{"active": {strconv.FormatBool(active)}}
	fallback := "Usuário desativado com sucesso!"
	if active {
		fallback = "Usuário ativado com sucesso!"
	}
	return s.sendMessage(ctx, http.MethodPatch, s.userURL(id, "/status")+"?"+q.Encode(), "atualizar status", fallback)
}

// ResetPassword redefine a senha (PATCH /admin/users/{id}/reset-password?password=).
func (s *UserService) ResetPassword(ctx context.Context, id int64, password string) (string, error) {
	if password == "" {
		return "", core.NewValidationError("Informe a nova senha.", map[string]string{"password": "Campo obrigatório."})
	}
	q := url.Values{"password": {password}}
	return s.sendMessage(ctx, http.MethodPatch, s.userURL(id, "/reset-password")+"?"+q.Encode(), "redefinir senha", "Senha redefinida com sucesso!")
}

// Delete exclui um usuário (DELETE /admin/users/{id}).
func (s *UserService) Delete(ctx context.Context, id int64) (string, error) {
	return s.sendMessage(ctx, http.MethodDelete, s.userURL(id, ""), "excluir usuário", "Usuário excluído com sucesso!")
}

// sendMessage executa uma chamada que responde {"message"}; usa fallback se o corpo não tiver mensagem.
func (s *UserService) sendMessage(ctx context.Context, method, u, operation, fallback string) (string, error) {
	var msg models.MessageResponse
	err := api.SendJSON(ctx, s.fetcher, method, u, operation, nil, &msg)
	if err != nil {
		appLogger.Warnf("Falha ao %s: %v", operation, err)
		return "", err
	}
	if msg.Message == "" {
		msg.Message = fallback
	}
	appLogger.Infof("%s: %s", operation, msg.Message)
	return msg.Message, nil
}
