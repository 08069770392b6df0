package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/sparkwave/painel_admin_go/internal/core"
)

const (
	sealerInfo = "painel-admin/session-token/v1"
	nonceSize  = 24
)

// TokenSealer cifra o token bearer antes de gravá-lo em disco ou no banco.
// A chave é derivada de SECRET_KEY via HKDF-SHA256.
type TokenSealer struct {
	key [32]byte
}

// NewTokenSealer deriva a chave de cifragem a partir do segredo da aplicação.
func NewTokenSealer(secret string) (*TokenSealer, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: SECRET_KEY vazia", core.ErrConfiguration)
	}
	s := &TokenSealer{}
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(sealerInfo))
	if _, err := io.ReadFull(kdf, s.key[:]); err != nil {
		return nil, core.WrapErrorf(core.ErrInternal, "falha ao derivar chave de sessão: %v", err)
	}
	return s, nil
}

// Seal devolve nonce||secretbox(token) em base64.
func (s *TokenSealer) Seal(token string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", core.WrapErrorf(core.ErrInternal, "falha ao gerar nonce: %v", err)
	}
	out := secretbox.Seal(nonce[:], []byte(token), &nonce, &s.key)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Open reverte Seal. Falha se o conteúdo foi adulterado ou selado com outra chave.
func (s *TokenSealer) Open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("%w: token selado mal formatado", core.ErrInvalidInput)
	}
	if len(raw) < nonceSize+secretbox.Overhead {
		return "", fmt.Errorf("%w: token selado truncado", core.ErrInvalidInput)
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", fmt.Errorf("%w: token selado não pôde ser aberto", core.ErrInvalidInput)
	}
	return string(plain), nil
}
