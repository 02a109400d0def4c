package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"authserver/pkg/auth"
	"authserver/pkg/credentials"
	"authserver/pkg/session"
)

type AuthForm struct {
	Email     string `json:"email"`
	Code      string `json:"code"`
	SessionID string `json:"sessionId"`
}

type Handler struct {
	Service auth.ServiceInterface
	Logger  *slog.Logger
}

func NewAuthHandler(service auth.ServiceInterface, logger *slog.Logger) *Handler {
	return &Handler{
		Service: service,
		Logger:  logger,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte("auth server is running\n")); err != nil {
		h.Logger.Error("health write", "error", err)
	}
}

func (h *Handler) Auth(w http.ResponseWriter, r *http.Request) {
	var req AuthForm
	if ok := DecodeForm(w, r, &req); !ok {
		return
	}
	ip := ClientIP(r)

	sess, evicted, err := h.Service.Login(req.Email, req.Code, ip)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingFields):
			WriteResp(w, h.Logger, map[string]any{"ok": false, "msg": "email, code required"}, http.StatusBadRequest)
		case errors.Is(err, auth.ErrAuthFailed):
			h.Logger.Warn("login failed", "email", req.Email, "ip", ip)
			WriteResp(w, h.Logger, map[string]any{"ok": false, "msg": "invalid email or code"}, http.StatusUnauthorized)
		case errors.Is(err, credentials.ErrUnavailable):
			h.Logger.Error("credential source unavailable", "error", err)
			WriteResp(w, h.Logger, map[string]any{"ok": false, "msg": "credential source unavailable"}, http.StatusServiceUnavailable)
		default:
			h.Logger.Error("login", "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	if evicted {
		h.Logger.Info("duplicate login, previous session revoked", "email", req.Email, "ip", ip)
	}
	if ok := WriteResp(w, h.Logger, map[string]any{
		"ok":        true,
		"sessionId": sess.Token,
		"ttlMs":     session.TTL.Milliseconds(),
	}, http.StatusOK); ok {
		h.Logger.Info("login", "email", req.Email, "ip", ip)
	}
}

func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	var req AuthForm
	if ok := DecodeForm(w, r, &req); !ok {
		return
	}

	st, err := h.Service.Check(req.Email, req.SessionID)
	if err != nil {
		h.writeSessionError(w, err, "email required")
		return
	}

	body := map[string]any{
		"ok":          true,
		"expiresInMs": st.Remaining.Milliseconds(),
	}
	if st.Presented {
		body["current"] = st.Matched
	}
	WriteResp(w, h.Logger, body, http.StatusOK)
}

func (h *Handler) Touch(w http.ResponseWriter, r *http.Request) {
	var req AuthForm
	if ok := DecodeForm(w, r, &req); !ok {
		return
	}

	if err := h.Service.Touch(req.Email, req.SessionID); err != nil {
		h.writeSessionError(w, err, "email required")
		return
	}
	WriteResp(w, h.Logger, map[string]any{"ok": true}, http.StatusOK)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req AuthForm
	if ok := DecodeForm(w, r, &req); !ok {
		return
	}

	if err := h.Service.Logout(req.Email, req.SessionID); err != nil {
		if errors.Is(err, session.ErrAlreadyLoggedOut) {
			WriteResp(w, h.Logger, map[string]any{"ok": false, "msg": "already logged out"}, http.StatusOK)
			return
		}
		h.writeSessionError(w, err, "email required")
		return
	}

	if ok := WriteResp(w, h.Logger, map[string]any{"ok": true}, http.StatusOK); ok {
		h.Logger.Info("logout", "email", req.Email)
	}
}

func (h *Handler) writeSessionError(w http.ResponseWriter, err error, missingMsg string) {
	switch {
	case errors.Is(err, auth.ErrMissingFields):
		WriteResp(w, h.Logger, map[string]any{"ok": false, "msg": missingMsg}, http.StatusBadRequest)
	case errors.Is(err, session.ErrExpired):
		WriteResp(w, h.Logger, map[string]any{"ok": false, "expired": true}, http.StatusUnauthorized)
	case errors.Is(err, session.ErrWrongSession):
		WriteResp(w, h.Logger, map[string]any{"ok": false, "msg": "wrong session"}, http.StatusConflict)
	default:
		h.Logger.Error("session op", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// DecodeForm fills req from the query string on GET, else from a JSON
// body. String fields are trimmed; an empty field reads as absent.
func DecodeForm(w http.ResponseWriter, r *http.Request, req *AuthForm) bool {
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		req.Email = q.Get("email")
		req.Code = q.Get("code")
		req.SessionID = q.Get("sessionId")
	} else {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			writeError(w, http.StatusBadRequest, "invalid Content-Type")
			return false
		}
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return false
		}
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Code = strings.TrimSpace(req.Code)
	req.SessionID = strings.TrimSpace(req.SessionID)
	return true
}

// ClientIP takes the first entry of an X-Forwarded-For chain when
// present, else the connection's remote address. Audit only.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, "{\"ok\":false,\"msg\":%q}\n", msg)
}

func WriteResp(w http.ResponseWriter, logger *slog.Logger, body map[string]any, status int) bool {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to write JSON response", slog.Any("err", err))
		return false
	}
	return true
}
