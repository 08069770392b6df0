package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sparkwave/painel_admin_go/internal/core"
)

// TokenClaims são os campos do JWT que o console consegue ler localmente.
// A assinatura não é verificada: quem valida o token é o servidor.
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time // zero quando o token não traz exp
}

// ParseTokenClaims lê sub/exp de um JWT sem verificar a assinatura.
// Tokens opacos (não-JWT) retornam ErrInvalidInput.
func ParseTokenClaims(token string) (TokenClaims, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenClaims{}, fmt.Errorf("%w: token não é um JWT legível: %v", core.ErrInvalidInput, err)
	}
	out := TokenClaims{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// ExpiredAt informa se o token já estava expirado no instante now.
func (c TokenClaims) ExpiredAt(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}
