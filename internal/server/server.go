package server

import (
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"time"

	"diradmin/internal/auth"
	"diradmin/internal/config"
	"diradmin/internal/database"
	"diradmin/internal/directory"
	"diradmin/internal/handler"
	"diradmin/web"

	"golang.org/x/time/rate"
)

func mustParseTemplates(fsys fs.FS, funcMap template.FuncMap, files ...string) *template.Template {
	tmpl := template.New("").Funcs(funcMap)
	tmpl, err := tmpl.ParseFS(fsys, files...)
	if err != nil {
		log.Fatalf("Failed to parse templates %v: %v", files, err)
	}
	return tmpl
}

func Start(cfg *config.Config, version string) error {
	db, err := database.Open(cfg.Database.DSN, web.MigrationsFS())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	secret := cfg.SessionSecret
	if secret == "" {
		secret, err = db.EnsureSessionSecret()
		if err != nil {
			return fmt.Errorf("failed to load session secret: %w", err)
		}
	}

	sessionMgr := auth.NewSessionManager(secret, db)
	_ = db.PurgeExpiredSessions()

	accounts := auth.NewAccountStore(cfg.Admins)
	svc := directory.NewService(directory.NewClient(cfg.LDAP), cfg.LDAP)

	mux := newMux(cfg, accounts, sessionMgr, svc, db, version)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("DirAdmin server starting on %s", addr)
	return http.ListenAndServe(addr, mux)
}

// newMux builds the route table. Split from Start so the wiring itself is
// testable without a database or a listener.
func newMux(cfg *config.Config, accounts *auth.AccountStore, sessionMgr *auth.SessionManager, svc *directory.Service, trail handler.AuditTrail, version string) *http.ServeMux {
	tmplFS := web.TemplateFS()

	funcMap := template.FuncMap{
		"add":        func(a, b int) int { return a + b },
		"subtract":   func(a, b int) int { return a - b },
		"version":    func() string { return version },
		"formatDate": func(t time.Time) string { return t.Format("2006-01-02 15:04:05") },
	}

	loginTmpl := mustParseTemplates(tmplFS, funcMap, "templates/login.html")
	pageTmpls := handler.PageTemplates{
		Dashboard: mustParseTemplates(tmplFS, funcMap, "templates/layout.html", "templates/dashboard.html"),
		Users:     mustParseTemplates(tmplFS, funcMap, "templates/layout.html", "templates/users.html"),
		Groups:    mustParseTemplates(tmplFS, funcMap, "templates/layout.html", "templates/groups.html"),
		Settings:  mustParseTemplates(tmplFS, funcMap, "templates/layout.html", "templates/settings.html"),
		Audit:     mustParseTemplates(tmplFS, funcMap, "templates/layout.html", "templates/audit.html"),
	}

	authH := handler.NewAuthHandler(accounts, sessionMgr, trail, loginTmpl)
	pageH := handler.NewPageHandler(svc, sessionMgr, trail, cfg.LDAP, pageTmpls)
	apiH := handler.NewAPIHandler(svc, sessionMgr, trail)

	// 5 login attempts per minute per client address.
	loginLimiter := handler.NewIPRateLimiter(rate.Every(12*time.Second), 5)

	superOnly := []auth.Role{auth.RoleSuperAdmin}
	writers := []auth.Role{auth.RoleSuperAdmin, auth.RoleOperator}

	mux := http.NewServeMux()

	mux.Handle("GET /static/", web.StaticHandler())

	mux.HandleFunc("GET /login", authH.LoginPage)
	mux.HandleFunc("POST /login", loginLimiter.Limit(authH.LoginSubmit))
	mux.HandleFunc("GET /logout", authH.Logout)

	mux.HandleFunc("GET /{$}", sessionMgr.RequirePage(auth.AnyRole, pageH.Dashboard))
	mux.HandleFunc("GET /users", sessionMgr.RequirePage(auth.AnyRole, pageH.Users))
	mux.HandleFunc("GET /groups", sessionMgr.RequirePage(auth.AnyRole, pageH.Groups))
	mux.HandleFunc("GET /settings", sessionMgr.RequirePage(superOnly, pageH.Settings))
	mux.HandleFunc("GET /audit", sessionMgr.RequirePage(superOnly, pageH.AuditLog))

	mux.HandleFunc("GET /api/users", sessionMgr.RequireAPI(auth.AnyRole, apiH.ListUsers))
	mux.HandleFunc("POST /api/users", sessionMgr.RequireAPI(writers, sessionMgr.ValidateCSRF(apiH.CreateUser)))
	mux.HandleFunc("DELETE /api/users/{username}", sessionMgr.RequireAPI(superOnly, sessionMgr.ValidateCSRF(apiH.DeleteUser)))
	mux.HandleFunc("GET /api/groups", sessionMgr.RequireAPI(auth.AnyRole, apiH.ListGroups))
	mux.HandleFunc("GET /api/test-connection", sessionMgr.RequireAPI(auth.AnyRole, apiH.TestConnection))
	mux.HandleFunc("GET /api/stats", sessionMgr.RequireAPI(auth.AnyRole, apiH.Stats))

	return mux
}
