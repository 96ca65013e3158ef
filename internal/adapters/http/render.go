package web

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/csrf"

	"fashionablylate/internal/adapters/http/middleware"
	"fashionablylate/internal/adapters/session"
	contactStore "fashionablylate/internal/adapters/storage/contact"
	"fashionablylate/internal/application/listutil"
	"fashionablylate/internal/application/projections"
	"fashionablylate/internal/domain/contact"
)

//go:embed templates
var templatesFS embed.FS

// DisplayTimeLayout formats timestamps on admin pages.
const DisplayTimeLayout = "2006年01月02日 15:04"

var pages = []string{
	"index.html",
	"confirm.html",
	"thanks.html",
	"login.html",
	"register.html",
	"admin.html",
	"detail.html",
}

// views holds one parsed template set per page.
type views struct {
	pages map[string]*template.Template
}

// presenter is the template FuncMap. Label lookups go through the domain types
// so the contact form and the admin pages always agree.
func presenter(loc *time.Location) template.FuncMap {
	if loc == nil {
		loc = time.UTC
	}
	return template.FuncMap{
		"genderLabel":   func(g contact.Gender) string { return g.Label() },
		"genders":       func() []contact.Gender { return contact.Genders },
		"categoryLabel": func(e contactStore.Entry) string { return projections.CategoryLabel(e) },
		"formatTime":    func(t time.Time) string { return t.In(loc).Format(DisplayTimeLayout) },
		"multiline": multiline,
		"pageURL": func(q url.Values, page int) string {
			if qs := listutil.WithPage(q, page); qs != "" {
				return middleware.HomePath + "?" + qs
			}
			return middleware.HomePath
		},
		// Encoded queries are placed after a literal "?" where html/template would
		// otherwise escape & and =.
		"query":    func(q url.Values) template.URL { return template.URL(q.Encode()) },
		"rawQuery": func(q string) template.URL { return template.URL(backQuery(q)) },
	}
}

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// multiline escapes visitor text as typed and keeps its line breaks.
func multiline(text string) template.HTML {
	lines := strings.Split(newlines.Replace(text), "\n")
	for i, l := range lines {
		lines[i] = template.HTMLEscapeString(l)
	}
	return template.HTML(strings.Join(lines, "<br>\n"))
}

func newViews(loc *time.Location) *views {
	fm := presenter(loc)
	v := &views{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		v.pages[name] = template.Must(template.New("layout.html").Funcs(fm).
			ParseFS(templatesFS, "templates/layout.html", "templates/"+name))
	}
	return v
}

// pageData is what every template receives.
type pageData struct {
	Title             string
	CSRFField         template.HTML
	Flash             session.Flash
	Session           *session.Session
	AllowRegistration bool
	Data              any
}

// render executes a page into a buffer first so template errors never produce half a page.
func (s *server) render(w http.ResponseWriter, r *http.Request, name string, status int, title string, data any) {
	tpl, ok := s.views.pages[name]
	if !ok {
		internalError(w, r, errUnknownTemplate(name))
		return
	}
	sess := session.FromContext(r.Context())
	var buf bytes.Buffer
	err := tpl.Execute(&buf, pageData{
		Title:             title,
		CSRFField:         csrf.TemplateField(r),
		Flash:             sess.Flash,
		Session:           sess,
		AllowRegistration: s.AllowRegistration,
		Data:              data,
	})
	if err != nil {
		internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type errUnknownTemplate string

func (e errUnknownTemplate) Error() string { return "unknown template " + string(e) }

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal_error",
		"request_id", middleware.RequestIDFrom(r.Context()),
		"path", r.URL.Path,
		"error", err.Error(),
	)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// redirect sends a 303 so the browser follows with GET.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}
