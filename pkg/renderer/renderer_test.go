package renderer

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/strata-dev/strata/pkg/engine"
	"github.com/strata-dev/strata/pkg/routetree"
	"github.com/strata-dev/strata/pkg/widget"
)

// siteFixture is an in-memory site: a manifest, template files, and
// registered modules.
type siteFixture struct {
	manifest string
	files    map[string]string
	modules  engine.ModuleMap
	widgets  widget.MapRegistry
}

func (s *siteFixture) renderer(t *testing.T, format Format) *Renderer {
	t.Helper()
	root, err := routetree.ParseManifest([]byte(s.manifest))
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	eng, err := engine.New(engine.Options{
		Resolver: routetree.NewResolver(root),
		Loader:   s.modules,
		Reader: engine.FileReaderFunc(func(_ context.Context, path string) (string, error) {
			if text, ok := s.files[path]; ok {
				return text, nil
			}
			return "", errors.New("no such file: " + path)
		}),
	})
	if err != nil {
		t.Fatal(err)
	}
	r, err := New(Config{Engine: eng, Format: format, Widgets: s.widgets})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func defaultFixture() *siteFixture {
	return &siteFixture{
		manifest: `{
			"files": {"html": "layout.html"},
			"children": {
				"about": {"files": {"html": "about.html"}},
				"docs": {
					"files": {"html": "docs.html"},
					"dynamic": {
						"param": "slug",
						"child": {"files": {"html": "doc.html", "module": "mods/doc"}}
					}
				},
				"old": {"redirect": "/about", "redirectStatus": 308},
				"moved": {"redirect": "mods/moved"},
				"evil": {"redirect": "mods/evil"}
			}
		}`,
		files: map[string]string{
			"layout.html": "<nav>top</nav>\n<strata-slot></strata-slot>\n<footer>bottom</footer>",
			"about.html":  "<title>About</title><p>who we are</p>",
			"docs.html":   "<aside>sidebar</aside>\n<strata-slot></strata-slot>",
			"doc.html":    "<article>doc body</article>",
		},
		modules: engine.ModuleMap{"mods/doc": struct{}{}},
		widgets: widget.MapRegistry{},
	}
}

func htmlRenderer(t *testing.T, s *siteFixture) *Renderer {
	t.Helper()
	return s.renderer(t, NewHTMLFormat(nil))
}

func TestRenderThreeLevelComposition(t *testing.T) {
	r := htmlRenderer(t, defaultFixture())

	result, err := r.Render(context.Background(), "/docs/intro")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if result.Status != http.StatusOK {
		t.Fatalf("Status = %d, want 200", result.Status)
	}

	c := result.Content
	nav := strings.Index(c, "<nav>top</nav>")
	aside := strings.Index(c, "<aside>sidebar</aside>")
	body := strings.Index(c, "<article>doc body</article>")
	footer := strings.Index(c, "<footer>bottom</footer>")
	for name, idx := range map[string]int{"nav": nav, "aside": aside, "article": body, "footer": footer} {
		if idx < 0 {
			t.Fatalf("%s missing from composed output:\n%s", name, c)
		}
	}
	if !(nav < aside && aside < body && body < footer) {
		t.Errorf("levels composed out of order:\n%s", c)
	}
	if strings.Contains(c, SlotHTML) {
		t.Errorf("unfilled slot leaked:\n%s", c)
	}
}

func TestRenderLeafSlotStripped(t *testing.T) {
	r := htmlRenderer(t, defaultFixture())

	// /docs is itself terminal; its own slot stays unfilled and must be
	// removed.
	result, err := r.Render(context.Background(), "/docs")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(result.Content, SlotHTML) {
		t.Errorf("leaf slot not stripped:\n%s", result.Content)
	}
	if !strings.Contains(result.Content, "<aside>sidebar</aside>") {
		t.Errorf("docs content missing:\n%s", result.Content)
	}
}

func TestRenderTitleDeepestWins(t *testing.T) {
	s := defaultFixture()
	s.files["layout.html"] = "<title>Site</title>\n<strata-slot></strata-slot>"
	r := htmlRenderer(t, s)

	result, err := r.Render(context.Background(), "/about")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if result.Title != "About" {
		t.Errorf("Title = %q, want About", result.Title)
	}

	// A leaf without a title falls back to the nearest ancestor's.
	result, err = r.Render(context.Background(), "/docs")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if result.Title != "Site" {
		t.Errorf("Title = %q, want Site", result.Title)
	}
}

func TestRenderNotFound(t *testing.T) {
	r := htmlRenderer(t, defaultFixture())

	result, err := r.Render(context.Background(), "/nope")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if result.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", result.Status)
	}
	if !strings.Contains(result.Content, "404") {
		t.Errorf("builtin page missing status:\n%s", result.Content)
	}
}

func TestRenderCustomStatusPage(t *testing.T) {
	s := defaultFixture()
	s.manifest = `{
		"children": {
			"404": {"files": {"html": "missing.html"}}
		}
	}`
	s.files["missing.html"] = "<title>Lost</title><p>custom not found</p>"
	r := htmlRenderer(t, s)
	r.SetStatusPage(http.StatusNotFound, "/404")

	result, err := r.Render(context.Background(), "/nope")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if result.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", result.Status)
	}
	if !strings.Contains(result.Content, "custom not found") {
		t.Errorf("custom page not used:\n%s", result.Content)
	}
	if result.Title != "Lost" {
		t.Errorf("Title = %q", result.Title)
	}
}

func TestRenderMalformedURL(t *testing.T) {
	r := htmlRenderer(t, defaultFixture())

	result, err := r.Render(context.Background(), "://bad")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if result.Status != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", result.Status)
	}
}

// literalDataProvider returns fixed data; renderSpy records render calls.
type statusModule struct{ code int }

func (m statusModule) GetData(ctx context.Context, cc *engine.ComponentContext) (any, error) {
	return nil, NewStatusError(m.code)
}

type failingModule struct{}

func (failingModule) GetData(ctx context.Context, cc *engine.ComponentContext) (any, error) {
	return nil, errors.New("database offline")
}

type boundaryModule struct{}

func (boundaryModule) RenderHTML(cc *engine.ComponentContext, data any) (string, error) {
	err, _ := data.(error)
	return "<div>recovered: " + err.Error() + "</div>", nil
}

func TestRenderStatusSignal(t *testing.T) {
	s := defaultFixture()
	s.modules["mods/doc"] = statusModule{http.StatusGone}
	r := htmlRenderer(t, s)

	result, err := r.Render(context.Background(), "/docs/retired")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if result.Status != http.StatusGone {
		t.Errorf("Status = %d, want 410", result.Status)
	}
}

func TestRenderErrorBoundary(t *testing.T) {
	s := defaultFixture()
	s.manifest = `{
		"files": {"html": "layout.html"},
		"children": {
			"docs": {
				"errorBoundary": "mods/boundary",
				"dynamic": {
					"param": "slug",
					"child": {"files": {"html": "doc.html", "module": "mods/doc"}}
				}
			}
		}
	}`
	s.modules["mods/doc"] = failingModule{}
	s.modules["mods/boundary"] = boundaryModule{}
	r := htmlRenderer(t, s)

	result, err := r.Render(context.Background(), "/docs/intro")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if result.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", result.Status)
	}
	if !strings.Contains(result.Content, "recovered: database offline") {
		t.Errorf("boundary output missing:\n%s", result.Content)
	}
}

func TestRenderErrorWithoutBoundary(t *testing.T) {
	s := defaultFixture()
	s.modules["mods/doc"] = failingModule{}
	r := htmlRenderer(t, s)

	result, err := r.Render(context.Background(), "/docs/intro")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if result.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", result.Status)
	}
	if !strings.Contains(result.Content, "500") {
		t.Errorf("builtin error page missing:\n%s", result.Content)
	}
}

func TestRenderRedirectLiteral(t *testing.T) {
	r := htmlRenderer(t, defaultFixture())

	result, err := r.Render(context.Background(), "/old")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if result.Redirect != "/about" {
		t.Errorf("Redirect = %q, want /about", result.Redirect)
	}
	if result.Status != http.StatusPermanentRedirect {
		t.Errorf("Status = %d, want 308", result.Status)
	}
	if result.Content != "" {
		t.Errorf("redirect carries content: %q", result.Content)
	}
}

// redirectorModule exports a redirect destination.
type redirectorModule struct{ target string }

func (m redirectorModule) RedirectTarget() string { return m.target }

func TestRenderRedirectModule(t *testing.T) {
	s := defaultFixture()
	s.modules["mods/moved"] = redirectorModule{"/docs"}
	r := htmlRenderer(t, s)

	result, err := r.Render(context.Background(), "/moved")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if result.Redirect != "/docs" {
		t.Errorf("Redirect = %q, want /docs", result.Redirect)
	}
	if result.Status != http.StatusTemporaryRedirect {
		t.Errorf("Status = %d, want 307 default", result.Status)
	}
}

func TestRenderRedirectUnsafeTarget(t *testing.T) {
	s := defaultFixture()
	s.modules["mods/evil"] = redirectorModule{"//evil.example.com/"}
	r := htmlRenderer(t, s)

	result, err := r.Render(context.Background(), "/evil")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if result.Redirect != "" {
		t.Errorf("unsafe target followed: %q", result.Redirect)
	}
	if result.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", result.Status)
	}
}

// paramEchoModule records the slug param it was rendered with.
type paramEchoModule struct{ slug string }

func (m *paramEchoModule) GetData(ctx context.Context, cc *engine.ComponentContext) (any, error) {
	m.slug = cc.Route.Param("slug")
	return nil, nil
}

func TestRenderEncodedPathSegments(t *testing.T) {
	s := defaultFixture()
	mod := &paramEchoModule{}
	s.modules["mods/doc"] = mod
	r := htmlRenderer(t, s)

	// A doubly-encoded segment decodes exactly once.
	result, err := r.Render(context.Background(), "/docs/a%2520b")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if result.Status != http.StatusOK {
		t.Fatalf("Status = %d, want 200", result.Status)
	}
	if mod.slug != "a%20b" {
		t.Errorf("slug = %q, want a%%20b", mod.slug)
	}

	// An encoded slash stays inside its segment instead of splitting it.
	result, err = r.Render(context.Background(), "/docs/a%2Fb")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if result.Status != http.StatusOK {
		t.Fatalf("Status = %d, want 200", result.Status)
	}
	if mod.slug != "a/b" {
		t.Errorf("slug = %q, want a/b", mod.slug)
	}
}

func TestRenderCanceled(t *testing.T) {
	r := htmlRenderer(t, defaultFixture())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Render(ctx, "/docs/intro"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestSafeRedirectTarget(t *testing.T) {
	tests := []struct {
		target string
		want   bool
	}{
		{"/about", true},
		{"/docs/intro?tab=1", true},
		{"", false},
		{"about", false},
		{"//evil.example.com", false},
		{"/\\evil", false},
		{"https://evil.example.com", false},
	}
	for _, tt := range tests {
		if got := SafeRedirectTarget(tt.target); got != tt.want {
			t.Errorf("SafeRedirectTarget(%q) = %v, want %v", tt.target, got, tt.want)
		}
	}
}

// htmlWidget renders fixed HTML.
type htmlWidget string

func (w htmlWidget) GetData(ctx context.Context, params map[string]any, cc *engine.ComponentContext) (any, error) {
	return string(w), nil
}

func (w htmlWidget) RenderHTML(cc *engine.ComponentContext, data any) (string, error) {
	return data.(string), nil
}

func TestRenderExpandsWidgets(t *testing.T) {
	s := defaultFixture()
	s.files["about.html"] = "<p>before</p>\n```widget:badge\n{\"label\": \"new\"}\n```\n<p>after</p>"
	s.widgets["badge"] = htmlWidget(`<span class="badge">new</span>`)
	r := htmlRenderer(t, s)

	result, err := r.Render(context.Background(), "/about")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(result.Content, `<span class="badge">new</span>`) {
		t.Errorf("widget not expanded:\n%s", result.Content)
	}
	if strings.Contains(result.Content, "```widget:") {
		t.Errorf("widget fence left in output:\n%s", result.Content)
	}
}

func TestRenderUnknownWidgetInlineError(t *testing.T) {
	s := defaultFixture()
	s.files["about.html"] = "```widget:ghost\n```"
	r := htmlRenderer(t, s)

	result, err := r.Render(context.Background(), "/about")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if result.Status != http.StatusOK {
		t.Errorf("Status = %d, want 200 with inline error", result.Status)
	}
	if !strings.Contains(result.Content, `data-widget="ghost"`) {
		t.Errorf("inline error missing:\n%s", result.Content)
	}
}
