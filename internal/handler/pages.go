package handler

import (
	"html/template"
	"net/http"
	"strconv"

	"diradmin/internal/auth"
	"diradmin/internal/config"
	"diradmin/internal/directory"
	"diradmin/internal/model"
)

// AuditTrail is the audit store surface the pages need: writing records and
// reading them back for the audit page.
type AuditTrail interface {
	AuditLog
	ListAuditLog(limit, offset int) ([]model.AuditEntry, int, error)
}

type PageTemplates struct {
	Dashboard *template.Template
	Users     *template.Template
	Groups    *template.Template
	Settings  *template.Template
	Audit     *template.Template
}

type PageHandler struct {
	svc        *directory.Service
	sessionMgr *auth.SessionManager
	trail      AuditTrail
	ldapCfg    config.LDAPConfig
	tmpl       PageTemplates
}

func NewPageHandler(svc *directory.Service, sm *auth.SessionManager, trail AuditTrail, ldapCfg config.LDAPConfig, tmpl PageTemplates) *PageHandler {
	return &PageHandler{svc: svc, sessionMgr: sm, trail: trail, ldapCfg: ldapCfg, tmpl: tmpl}
}

func (h *PageHandler) pageData(r *http.Request, title string) map[string]interface{} {
	sess, _ := h.sessionMgr.GetSession(r)
	return map[string]interface{}{
		"Title":     title,
		"Username":  sess.Username,
		"Role":      sess.Role,
		"CSRFToken": sess.CSRFToken,
		"Flash":     r.URL.Query().Get("msg"),
		"Error":     r.URL.Query().Get("error"),
	}
}

func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(r, "Dashboard")
	data["Stats"] = h.svc.Stats()
	h.tmpl.Dashboard.ExecuteTemplate(w, "layout", data)
}

// Users and Groups render shells; the tables load through the JSON API.
func (h *PageHandler) Users(w http.ResponseWriter, r *http.Request) {
	h.tmpl.Users.ExecuteTemplate(w, "layout", h.pageData(r, "Users"))
}

func (h *PageHandler) Groups(w http.ResponseWriter, r *http.Request) {
	h.tmpl.Groups.ExecuteTemplate(w, "layout", h.pageData(r, "Groups"))
}

func (h *PageHandler) Settings(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(r, "Settings")
	data["LDAP"] = map[string]string{
		"Server":   h.ldapCfg.Server,
		"BaseDN":   h.ldapCfg.BaseDN,
		"AdminDN":  h.ldapCfg.AdminDN,
		"UsersOU":  h.ldapCfg.UsersOU,
		"GroupsOU": h.ldapCfg.GroupsOU,
		// The bind password is never shown.
	}
	h.tmpl.Settings.ExecuteTemplate(w, "layout", data)
}

func (h *PageHandler) AuditLog(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(r, "Audit Log")

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit := 50
	offset := (page - 1) * limit

	entries, total, err := h.trail.ListAuditLog(limit, offset)
	if err != nil {
		data["Error"] = "Failed to load audit log: " + err.Error()
		h.tmpl.Audit.ExecuteTemplate(w, "layout", data)
		return
	}

	data["Entries"] = entries
	data["Page"] = page
	data["TotalPages"] = (total + limit - 1) / limit
	data["Total"] = total
	h.tmpl.Audit.ExecuteTemplate(w, "layout", data)
}
