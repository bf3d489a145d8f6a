package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"diradmin/internal/auth"
	"diradmin/internal/directory"
	"diradmin/internal/model"
	"diradmin/internal/util"
)

type APIHandler struct {
	svc        *directory.Service
	sessionMgr *auth.SessionManager
	audit      AuditLog
}

func NewAPIHandler(svc *directory.Service, sm *auth.SessionManager, audit AuditLog) *APIHandler {
	return &APIHandler{svc: svc, sessionMgr: sm, audit: audit}
}

func (h *APIHandler) logAction(r *http.Request, action, detail string) {
	actor := "anonymous"
	if sess, ok := h.sessionMgr.GetSession(r); ok {
		actor = sess.Username
	}
	_ = h.audit.LogAudit(model.AuditEntry{
		Username:  actor,
		Action:    action,
		Detail:    detail,
		IPAddress: util.ClientIP(r),
	})
}

func (h *APIHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers()
	if err != nil {
		h.logAction(r, "list_users", "failed: "+err.Error())
		h.writeDirectoryError(w, err)
		return
	}
	h.logAction(r, "list_users", fmt.Sprintf("retrieved %d users", len(users)))
	writeJSON(w, http.StatusOK, users)
}

func (h *APIHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if err := h.svc.CreateUser(req); err != nil {
		h.logAction(r, "add_user", "failed: "+err.Error())
		h.writeDirectoryError(w, err)
		return
	}

	h.logAction(r, "add_user", "added user: "+req.Username)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "User added successfully",
	})
}

func (h *APIHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	if err := h.svc.DeleteUser(username); err != nil {
		h.logAction(r, "delete_user", "failed: "+err.Error())
		h.writeDirectoryError(w, err)
		return
	}

	h.logAction(r, "delete_user", "deleted user: "+username)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "User deleted successfully",
	})
}

func (h *APIHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.svc.ListGroups()
	if err != nil {
		h.logAction(r, "list_groups", "failed: "+err.Error())
		h.writeDirectoryError(w, err)
		return
	}
	h.logAction(r, "list_groups", fmt.Sprintf("retrieved %d groups", len(groups)))
	writeJSON(w, http.StatusOK, groups)
}

func (h *APIHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Probe(); err != nil {
		h.logAction(r, "test_connection", "failed: "+err.Error())
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"message": "LDAP connection failed",
		})
		return
	}
	h.logAction(r, "test_connection", "connection successful")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "LDAP connection successful",
	})
}

func (h *APIHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Stats())
}

// writeDirectoryError maps the directory error taxonomy onto HTTP statuses.
// Raw LDAP errors never reach the wire.
func (h *APIHandler) writeDirectoryError(w http.ResponseWriter, err error) {
	var verr *directory.ValidationError
	switch {
	case errors.As(err, &verr):
		jsonError(w, http.StatusBadRequest, "Missing required field: "+verr.Field)
	case errors.Is(err, directory.ErrConflict):
		jsonError(w, http.StatusConflict, "User already exists")
	case errors.Is(err, directory.ErrNotFound):
		jsonError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, directory.ErrUnavailable):
		jsonError(w, http.StatusServiceUnavailable, "LDAP connection failed")
	default:
		jsonError(w, http.StatusInternalServerError, "Directory operation failed")
	}
}
