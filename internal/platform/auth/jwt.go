// Pacote auth emite e valida os tokens bearer (HS256) que identificam eleitores e administradores.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/marcelojr/evoto/internal/domain"
)

var (
	ErrMissingToken = errors.New("token ausente")
	ErrInvalidToken = errors.New("token invalido")
)

// Claims carrega o eleitor autenticado; Admin libera as rotas administrativas.
type Claims struct {
	VoterID domain.VoterID `json:"voter_id,omitempty"`
	Admin   bool           `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

type Authenticator struct {
	secret []byte
	issuer string
	clock  domain.Clock
}

func NewAuthenticator(secret, issuer string, clock domain.Clock) *Authenticator {
	return &Authenticator{secret: []byte(secret), issuer: issuer, clock: clock}
}

func (a *Authenticator) Issue(who domain.Identity, ttl time.Duration) (string, error) {
	agora := a.clock.Agora()
	subject := who.Subject
	if subject == "" {
		subject = string(who.VoterID)
	}
	claims := Claims{
		VoterID: who.VoterID,
		Admin:   who.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(agora),
			ExpiresAt: jwt.NewNumericDate(agora.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("auth: assinar token: %w", err)
	}
	return signed, nil
}

func (a *Authenticator) Validate(raw string) (domain.Identity, error) {
	var claims Claims
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	_, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	// ParseWithClaims valida exp/iat com o relógio da máquina; conferimos também contra o clock injetado.
	if claims.ExpiresAt != nil && !a.clock.Agora().Before(claims.ExpiresAt.Time) {
		return domain.Identity{}, fmt.Errorf("%w: expirado", ErrInvalidToken)
	}
	if a.issuer != "" && claims.Issuer != a.issuer {
		return domain.Identity{}, fmt.Errorf("%w: emissor %q", ErrInvalidToken, claims.Issuer)
	}
	if claims.VoterID == "" && !claims.Admin {
		return domain.Identity{}, fmt.Errorf("%w: sem eleitor", ErrInvalidToken)
	}
	return domain.Identity{Subject: claims.Subject, VoterID: claims.VoterID, Admin: claims.Admin}, nil
}

// Authenticate extrai o bearer do cabeçalho Authorization.
func (a *Authenticator) Authenticate(r *http.Request) (domain.Identity, error) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return domain.Identity{}, ErrMissingToken
	}
	return a.Validate(strings.TrimSpace(token))
}
