package auth

import (
	"log"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/Reese0301/careerinfinance/internal/config"
	"github.com/Reese0301/careerinfinance/pkg/utils"
)

// dummyHash is compared against when the user is unknown so both paths cost a bcrypt round.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("careerinfinance"), bcrypt.MinCost)

// Gate admits or blocks callers before they reach a session.
type Gate struct {
	users map[string][]byte
	realm string
}

// NewGate builds a gate from configured name→bcrypt-hash pairs.
func NewGate(cfg config.AuthConfig) *Gate {
	users := make(map[string][]byte, len(cfg.Users))
	for name, hash := range cfg.Users {
		users[name] = []byte(hash)
	}
	return &Gate{users: users, realm: cfg.Realm}
}

// Open reports whether the gate admits everyone.
func (g *Gate) Open() bool {
	return len(g.users) == 0
}

// Admit checks a username and password.
func (g *Gate) Admit(username, password string) bool {
	if g.Open() {
		return true
	}
	hash, ok := g.users[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

// Middleware rejects requests whose Basic credentials are not admitted.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.Open() || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		username, password, ok := r.BasicAuth()
		if !ok || !g.Admit(username, password) {
			if ok {
				log.Printf("[auth] rejected credentials for user=%s path=%s", username, r.URL.Path)
			}
			w.Header().Set("WWW-Authenticate", `Basic realm="`+g.realm+`", charset="UTF-8"`)
			utils.RespondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HashPassword returns a bcrypt hash suitable for AUTH_USERS.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

