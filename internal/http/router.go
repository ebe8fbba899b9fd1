package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/example/hospital-admin/internal/application"
)

// RouterConfig wires handlers and middleware into the route table.
// Authenticate guards every route except login; Middleware wraps the whole
// router and runs first.
type RouterConfig struct {
	Auth         *AuthHandler
	Users        *UserHandler
	Departments  *DepartmentHandler
	Reports      *ReportHandler
	Authenticate func(http.Handler) http.Handler
	Middleware   []func(http.Handler) http.Handler
}

// NewRouter builds the HTTP route table.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	protect := func(fn http.HandlerFunc) http.Handler {
		if cfg.Authenticate == nil {
			return fn
		}
		return cfg.Authenticate(fn)
	}

	if cfg.Auth != nil {
		mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Login(w, r)
		})
		mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Refresh(w, r)
		})
		mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Logout(w, r)
		})
		mux.Handle("/auth/me", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Auth.Me(w, r)
		}))
	}

	if cfg.Users != nil {
		mux.Handle("/users", protect(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Users.List(w, r)
			case http.MethodPost:
				cfg.Users.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.Handle("/users/", protect(func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/users/")
			segments := splitPath(rest)
			if len(segments) == 0 {
				http.NotFound(w, r)
				return
			}

			r = r.WithContext(ContextWithUserID(r.Context(), segments[0]))

			switch {
			case len(segments) == 1:
				switch r.Method {
				case http.MethodGet:
					cfg.Users.Get(w, r)
				case http.MethodPut:
					cfg.Users.Update(w, r)
				case http.MethodDelete:
					cfg.Users.Delete(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
				}
			case len(segments) == 2 && segments[1] == "password":
				if r.Method != http.MethodPut {
					methodNotAllowed(w, http.MethodPut)
					return
				}
				cfg.Users.ChangePassword(w, r)
			default:
				http.NotFound(w, r)
			}
		}))
	}

	if cfg.Departments != nil {
		mux.Handle("/departments", protect(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Departments.List(w, r)
			case http.MethodPost:
				cfg.Departments.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.Handle("/departments/", protect(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/departments/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}

			r = r.WithContext(ContextWithDepartmentID(r.Context(), id))

			switch r.Method {
			case http.MethodGet:
				cfg.Departments.Get(w, r)
			case http.MethodPut:
				cfg.Departments.Update(w, r)
			case http.MethodDelete:
				cfg.Departments.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		}))
	}

	if cfg.Reports != nil {
		mux.Handle("/reports/monthly", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Reports.List(w, r)
		}))
		mux.Handle("/reports/monthly/", protect(func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/reports/monthly/")
			segments := splitPath(rest)

			if len(segments) == 2 && segments[0] == "statistics" {
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Reports.Statistics(w, r, segments[1])
				return
			}

			if len(segments) < 2 {
				http.NotFound(w, r)
				return
			}

			key, ok := parseReportKey(segments[0], segments[1])
			if !ok {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithReportKey(r.Context(), key))

			switch {
			case len(segments) == 2:
				switch r.Method {
				case http.MethodGet:
					cfg.Reports.Get(w, r)
				case http.MethodPut:
					cfg.Reports.Save(w, r)
				case http.MethodDelete:
					cfg.Reports.Delete(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
				}
			case len(segments) == 3 && segments[2] == "submit":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Reports.Submit(w, r)
			case len(segments) == 3 && segments[2] == "approve":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Reports.Approve(w, r)
			default:
				http.NotFound(w, r)
			}
		}))
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func parseReportKey(yearSegment, monthSegment string) (application.ReportKey, bool) {
	year, err := strconv.Atoi(yearSegment)
	if err != nil {
		return application.ReportKey{}, false
	}
	month, err := strconv.Atoi(monthSegment)
	if err != nil {
		return application.ReportKey{}, false
	}
	return application.ReportKey{Year: year, Month: month}, true
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
