package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"portal-united/directory/internal/auth"
	"portal-united/directory/internal/constants"
	reqctx "portal-united/directory/internal/context"
	"portal-united/directory/internal/logging"
)

//go:embed templates
var templateFS embed.FS

var funcMap = template.FuncMap{
	"split": func(s string, sep string) []string {
		return strings.Split(s, sep)
	},
	"mod": func(a, b int) int {
		return a % b
	},
	"denomination": constants.DenominationLabel,
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("Jan 2, 2006")
	},
	"datePtr": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("Jan 2, 2006")
	},
	"yesno": func(b bool) string {
		if b {
			return "Yes"
		}
		return "No"
	},
	"pageURL": pageURL,
	"boolFilter": func(name, value string) boolFilter {
		return boolFilter{Name: name, Value: value}
	},
	"str": func(v interface{}) string {
		return fmt.Sprint(v)
	},
}

// boolFilter feeds the yes/no select of an admin list filter.
type boolFilter struct {
	Name  string
	Value string
}

// pageURL keeps the current filters and swaps the page number.
func pageURL(values url.Values, page int) string {
	q := url.Values{}
	for k, v := range values {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(page))
	return "?" + q.Encode()
}

// Renderer holds one parsed template set per page, each combined with the base layout.
type Renderer struct {
	pages    map[string]*template.Template
	sessions *auth.SessionManager
}

// NewRenderer parses every page under templates/pages once at startup.
func NewRenderer(sessions *auth.SessionManager) (*Renderer, error) {
	shared := []string{"templates/layouts/base.html", "templates/partials/*.html"}

	r := &Renderer{pages: make(map[string]*template.Template), sessions: sessions}
	err := fs.WalkDir(templateFS, "templates/pages", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".html") {
			return err
		}
		name := strings.TrimPrefix(path, "templates/pages/")

		t, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, append(shared, path)...)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", name, err)
		}
		r.pages[name] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// RenderTemplate renders a page with the base layout. Common values are added
// to data: the current user, pending flashes, the theme and the request path.
func (rn *Renderer) RenderTemplate(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]interface{}) {
	t, ok := rn.pages[name]
	if !ok {
		logging.Error("Unknown template", "template", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = map[string]interface{}{}
	}
	data["CurrentUser"] = auth.CurrentUser(r.Context())
	data["Theme"] = reqctx.GetTheme(r.Context())
	data["Path"] = r.URL.Path
	data["CSRFToken"] = reqctx.GetCSRFToken(r.Context())
	if rn.sessions != nil {
		data["Flashes"] = rn.sessions.PopFlashes(r)
	}

	// render into a buffer so a template error can still produce a clean 500
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		logging.Error("Failed to render template", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (rn *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	rn.RenderTemplate(w, r, http.StatusNotFound, "errors/404.html", map[string]interface{}{
		"PageTitle": "Page not found",
	})
}

func (rn *Renderer) Forbidden(w http.ResponseWriter, r *http.Request) {
	rn.RenderTemplate(w, r, http.StatusForbidden, "errors/403.html", map[string]interface{}{
		"PageTitle": "Access denied",
		"Message":   constants.MsgPermissionDenied,
	})
}

func (rn *Renderer) ServerError(w http.ResponseWriter, r *http.Request, err error) {
	logging.Error("Request failed",
		"request_id", reqctx.GetRequestID(r.Context()),
		"path", r.URL.Path,
		"error", err,
	)
	rn.RenderTemplate(w, r, http.StatusInternalServerError, "errors/500.html", map[string]interface{}{
		"PageTitle": "Server error",
		"Message":   constants.MsgInternalError,
	})
}
