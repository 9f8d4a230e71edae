package httpserver

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"

	"github.com/devmeetai/interview-service/internal/config"
	"github.com/devmeetai/interview-service/internal/domain"
)

// Argon2Params defines parameters for Argon2id password hashing.
type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

// DefaultArgon2Params are the parameters used for admin credentials.
var DefaultArgon2Params = Argon2Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLen:     16,
	KeyLen:      32,
}

// HashPassword creates an Argon2id hash of the password in the format
// argon2id$iterations$memory$parallelism$salt$hash.
func HashPassword(password string, params Argon2Params) (string, error) {
	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLen)
	encoded := fmt.Sprintf("argon2id$%d$%d$%d$%s$%s",
		params.Iterations,
		params.Memory,
		params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)
	return encoded, nil
}

// VerifyPassword verifies a password against its Argon2id hash.
func VerifyPassword(password, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "argon2id" {
		return false
	}
	iters, err1 := parseUint32(parts[1])
	mem, err2 := parseUint32(parts[2])
	par64, err3 := parseUint32(parts[3])
	if err1 != nil || err2 != nil || err3 != nil {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}
	var par uint8
	if par64 > math.MaxUint8 {
		par = math.MaxUint8
	} else {
		par = uint8(par64)
	}
	actual := argon2.IDKey([]byte(password), salt, iters, mem, par, DefaultArgon2Params.KeyLen)
	return subtle.ConstantTimeCompare(actual, expectedHash) == 1
}

// SessionData carries the authenticated admin identity.
type SessionData struct {
	Username  string
	LoginTime time.Time
	ExpiresAt time.Time
}

// SessionManager issues and validates HMAC-signed session cookies.
type SessionManager struct {
	secret []byte
	cfg    config.Config
}

// NewSessionManager creates a session manager from config.
func NewSessionManager(cfg config.Config) *SessionManager {
	return &SessionManager{secret: []byte(cfg.AdminSessionSecret), cfg: cfg}
}

const sessionTTL = 24 * time.Hour

// CreateSession returns a signed session cookie value for username.
func (sm *SessionManager) CreateSession(username string) (string, error) {
	now := time.Now()
	payload := fmt.Sprintf("%s:%d:%d", username, now.Unix(), now.Add(sessionTTL).Unix())
	mac := hmac.New(sha256.New, sm.secret)
	mac.Write([]byte(payload))
	return payload + "." + base64.URLEncoding.EncodeToString(mac.Sum(nil)), nil
}

// ValidateSession checks the signature and expiry of a session cookie value.
func (sm *SessionManager) ValidateSession(sessionValue string) (*SessionData, error) {
	if sessionValue == "" {
		return nil, fmt.Errorf("empty session value")
	}
	parts := strings.Split(sessionValue, ".")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid session format")
	}
	payload, signatureB64 := parts[0], parts[1]
	mac := hmac.New(sha256.New, sm.secret)
	mac.Write([]byte(payload))
	actual, err := base64.URLEncoding.DecodeString(signatureB64)
	if err != nil {
		return nil, fmt.Errorf("invalid signature encoding")
	}
	if !hmac.Equal(mac.Sum(nil), actual) {
		return nil, fmt.Errorf("invalid session signature")
	}
	payloadParts := strings.Split(payload, ":")
	if len(payloadParts) != 3 {
		return nil, fmt.Errorf("invalid payload format")
	}
	sd := &SessionData{
		Username:  payloadParts[0],
		LoginTime: time.Unix(parseInt64(payloadParts[1]), 0),
		ExpiresAt: time.Unix(parseInt64(payloadParts[2]), 0),
	}
	if time.Now().After(sd.ExpiresAt) {
		return nil, fmt.Errorf("session expired")
	}
	return sd, nil
}

// SetSessionCookie sets the session cookie on the response.
func (sm *SessionManager) SetSessionCookie(w http.ResponseWriter, sessionValue string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    sessionValue,
		Path:     "/",
		HttpOnly: true,
		Secure:   !sm.cfg.IsDev(),
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(sessionTTL.Seconds()),
	})
}

// ClearSessionCookie clears the session cookie.
func (sm *SessionManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   !sm.cfg.IsDev(),
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}

// AuthRequired guards admin API routes. The admin surface is JSON-only, so
// missing or invalid sessions get 401 rather than a redirect.
func (sm *SessionManager) AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("session")
		if err != nil || cookie.Value == "" {
			writeJSON(w, http.StatusUnauthorized, errorEnvelope{Error: apiError{Code: "UNAUTHENTICATED", Message: "login required"}})
			return
		}
		if _, err := sm.ValidateSession(cookie.Value); err != nil {
			sm.ClearSessionCookie(w)
			writeJSON(w, http.StatusUnauthorized, errorEnvelope{Error: apiError{Code: "UNAUTHENTICATED", Message: "invalid session"}})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginHandler checks admin credentials and issues a session cookie.
func (s *Server) LoginHandler(sm *SessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !decodeValid(w, r, &req) {
			return
		}
		if req.Username != s.Cfg.AdminUsername || !VerifyPassword(req.Password, s.Cfg.AdminPasswordHash) {
			writeError(w, r, fmt.Errorf("%w: invalid credentials", domain.ErrInvalidArgument), nil)
			return
		}
		sess, err := sm.CreateSession(req.Username)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		sm.SetSessionCookie(w, sess)
		writeJSON(w, http.StatusOK, map[string]string{"username": req.Username})
	}
}

// LogoutHandler clears the session cookie.
func (s *Server) LogoutHandler(sm *SessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sm.ClearSessionCookie(w)
		w.WriteHeader(http.StatusNoContent)
	}
}

func parseInt64(s string) int64 {
	x, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return x
}

func parseUint32(s string) (uint32, error) {
	x, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse")
	}
	return uint32(x), nil
}
