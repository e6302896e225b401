package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

// Principal is the authenticated caller.
type Principal struct {
	Subject string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// MockPrincipal is what the mock bearer token resolves to.
var MockPrincipal = Principal{Subject: "mock-user", Email: "user@company.com", Name: "Mock User"}

// TokenResolver maps a bearer token to the caller.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (Principal, error)
}

// StaticTokens accepts a fixed set of tokens.
type StaticTokens map[string]Principal

// NewStaticTokens accepts every token in tokens as MockPrincipal.
func NewStaticTokens(tokens ...string) StaticTokens {
	out := StaticTokens{}
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			out[t] = MockPrincipal
		}
	}
	return out
}

func (s StaticTokens) ResolveToken(_ context.Context, token string) (Principal, error) {
	p, ok := s[token]
	if !ok {
		return Principal{}, ErrUnauthorized
	}
	return p, nil
}

type principalKey struct{}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// AuthMiddleware enforces bearer token authentication.
func AuthMiddleware(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				writeDetail(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				writeDetail(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			p, err := resolver.ResolveToken(r.Context(), token)
			if err != nil {
				writeDetail(w, http.StatusUnauthorized, "Invalid authentication credentials")
				return
			}
			ctx := context.WithValue(r.Context(), principalKey{}, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// microsoftExchangeToken is the only identity-provider token the mock exchange accepts.
const microsoftExchangeToken = "mock-microsoft-token"

type exchangeResponse struct {
	AccessToken string    `json:"access_token"`
	User        Principal `json:"user"`
}

func (s *Server) handleMicrosoftAuth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("token") != microsoftExchangeToken {
		writeDetail(w, http.StatusUnauthorized, "Invalid Microsoft token")
		return
	}
	writeJSON(w, http.StatusOK, exchangeResponse{
		AccessToken: s.cfg.ExchangeToken,
		User:        Principal{Subject: "mock-user-id", Email: MockPrincipal.Email, Name: MockPrincipal.Name},
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]string{"detail": detail})
}
