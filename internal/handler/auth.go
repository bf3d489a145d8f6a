package handler

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"diradmin/internal/auth"
	"diradmin/internal/model"
	"diradmin/internal/util"
)

type AuthHandler struct {
	accounts   *auth.AccountStore
	sessionMgr *auth.SessionManager
	audit      AuditLog
	tmpl       *template.Template
}

func NewAuthHandler(accounts *auth.AccountStore, sm *auth.SessionManager, audit AuditLog, tmpl *template.Template) *AuthHandler {
	return &AuthHandler{accounts: accounts, sessionMgr: sm, audit: audit, tmpl: tmpl}
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessionMgr.GetSession(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.tmpl.ExecuteTemplate(w, "login.html", nil)
}

func (h *AuthHandler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	username := r.FormValue("username")
	password := r.FormValue("password")

	acct, err := h.accounts.Authenticate(username, password)
	if err != nil {
		// The page never says which part was wrong.
		_ = h.audit.LogAudit(model.AuditEntry{
			Username:  "anonymous",
			Action:    "login_failed",
			Detail:    fmt.Sprintf("username=%s", strings.ToLower(strings.TrimSpace(username))),
			IPAddress: util.ClientIP(r),
		})
		h.tmpl.ExecuteTemplate(w, "login.html", map[string]interface{}{
			"Error": "Invalid username or password.",
		})
		return
	}

	h.sessionMgr.CreateSession(w, acct.Username, acct.Role)

	_ = h.audit.LogAudit(model.AuditEntry{
		Username:  acct.Username,
		Action:    "login_success",
		IPAddress: util.ClientIP(r),
	})

	next := r.URL.Query().Get("next")
	if next == "" || !strings.HasPrefix(next, "/") {
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessionMgr.GetSession(r)

	h.sessionMgr.DestroySession(w, r)

	if ok {
		_ = h.audit.LogAudit(model.AuditEntry{
			Username:  sess.Username,
			Action:    "logout",
			IPAddress: util.ClientIP(r),
		})
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
