package engine

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/strata-dev/strata/pkg/routetree"
)

func testResolver(t *testing.T) *routetree.Resolver {
	t.Helper()
	root, err := routetree.ParseManifest([]byte(`{
		"files": {"html": "layout.html"},
		"children": {
			"about": {"files": {"html": "about.html", "style": "about.css"}}
		}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	return routetree.NewResolver(root)
}

func TestBuildRouteHierarchy(t *testing.T) {
	e, err := New(Options{Resolver: testResolver(t)})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		leaf string
		want []string
	}{
		{"/", []string{"/"}},
		{"/about", []string{"/", "/about"}},
		{"/docs/:slug", []string{"/", "/docs", "/docs/:slug"}},
		{"/a/b/c", []string{"/", "/a", "/a/b", "/a/b/c"}},
		{"a/b/", []string{"/", "/a", "/a/b"}},
	}
	for _, tt := range tests {
		if got := e.BuildRouteHierarchy(tt.leaf); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("BuildRouteHierarchy(%q) = %v, want %v", tt.leaf, got, tt.want)
		}
	}
}

func TestNormalizeURL(t *testing.T) {
	u, err := NormalizeURL("/about/?tab=team")
	if err != nil {
		t.Fatal(err)
	}
	if u.Path != "/about" {
		t.Errorf("Path = %q, want /about", u.Path)
	}
	if u.Query().Get("tab") != "team" {
		t.Errorf("query lost: %q", u.RawQuery)
	}

	if _, err := NormalizeURL("://bad"); err == nil {
		t.Error("expected error for malformed URL")
	}
}

func TestNormalizeURLKeepsEscapedPath(t *testing.T) {
	u, err := NormalizeURL("/docs/a%2Fb%2520c/")
	if err != nil {
		t.Fatal(err)
	}
	if got := u.EscapedPath(); got != "/docs/a%2Fb%2520c" {
		t.Errorf("EscapedPath = %q, want /docs/a%%2Fb%%2520c", got)
	}
	if u.Path != "/docs/a/b%20c" {
		t.Errorf("Path = %q, want /docs/a/b%%20c", u.Path)
	}
}

func TestBuildComponentContextResolvesFiles(t *testing.T) {
	var reads atomic.Int32
	e, err := New(Options{
		Resolver: testResolver(t),
		Reader: FileReaderFunc(func(_ context.Context, path string) (string, error) {
			reads.Add(1)
			return "content of " + path, nil
		}),
	})
	if err != nil {
		t.Fatal(err)
	}

	route, ok := e.Resolver().Match("/about")
	if !ok {
		t.Fatal("no match for /about")
	}

	u, _ := NormalizeURL("/about")
	info := ToRouteInfo(route, u)
	cc, err := e.BuildComponentContext(context.Background(), info, route.Node, true)
	if err != nil {
		t.Fatal(err)
	}

	if got := cc.Route.Files[routetree.FileHTML]; got != "content of about.html" {
		t.Errorf("html file = %q", got)
	}
	if got := cc.Route.Files[routetree.FileStyle]; got != "content of about.css" {
		t.Errorf("style file = %q", got)
	}
	if !cc.IsLeaf {
		t.Error("IsLeaf = false, want true")
	}

	// Same node again: contents come from the cache.
	if _, err := e.BuildComponentContext(context.Background(), info, route.Node, true); err != nil {
		t.Fatal(err)
	}
	if n := reads.Load(); n != 2 {
		t.Errorf("reader called %d times, want 2", n)
	}
}

func TestBuildComponentContextSkipsModuleRefs(t *testing.T) {
	root, err := routetree.ParseManifest([]byte(`{
		"children": {
			"docs": {"files": {"html": "docs.html", "module": "mods/docs"}}
		}
	}`))
	if err != nil {
		t.Fatal(err)
	}

	var paths []string
	e, err := New(Options{
		Resolver: routetree.NewResolver(root),
		Reader: FileReaderFunc(func(_ context.Context, path string) (string, error) {
			paths = append(paths, path)
			return "content of " + path, nil
		}),
	})
	if err != nil {
		t.Fatal(err)
	}

	route, ok := e.Resolver().Match("/docs")
	if !ok {
		t.Fatal("no match for /docs")
	}
	u, _ := NormalizeURL("/docs")
	cc, err := e.BuildComponentContext(context.Background(), ToRouteInfo(route, u), route.Node, true)
	if err != nil {
		t.Fatal(err)
	}

	// The module reference resolves through LoadModule, never the reader.
	if !reflect.DeepEqual(paths, []string{"docs.html"}) {
		t.Errorf("reader saw %v, want [docs.html]", paths)
	}
	if _, ok := cc.Route.Files[routetree.FileModule]; ok {
		t.Error("module ref surfaced as file content")
	}
	if got := cc.Route.FilePaths[routetree.FileModule]; got != "mods/docs" {
		t.Errorf("FilePaths[module] = %q, want mods/docs", got)
	}
}

func TestBuildComponentContextReadFailure(t *testing.T) {
	e, err := New(Options{
		Resolver: testResolver(t),
		Reader: FileReaderFunc(func(_ context.Context, path string) (string, error) {
			return "", fmt.Errorf("missing %s", path)
		}),
	})
	if err != nil {
		t.Fatal(err)
	}

	route, ok := e.Resolver().Match("/about")
	if !ok {
		t.Fatal("no match for /about")
	}
	u, _ := NormalizeURL("/about")
	if _, err := e.BuildComponentContext(context.Background(), ToRouteInfo(route, u), route.Node, true); err == nil {
		t.Fatal("expected error when a declared file cannot be read")
	}
}

func TestBuildComponentContextEnrich(t *testing.T) {
	e, err := New(Options{
		Resolver: testResolver(t),
		Enrich: func(cc *ComponentContext) *ComponentContext {
			cc.SetValue("site", "demo")
			return cc
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	u, _ := NormalizeURL("/")
	cc, err := e.BuildComponentContext(context.Background(), &RouteInfo{Pattern: "/", URL: u}, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if got := cc.Value("site"); got != "demo" {
		t.Errorf("enriched value = %v, want demo", got)
	}
}

func TestModuleMapLoad(t *testing.T) {
	m := ModuleMap{"widgets/nav": struct{ Name string }{"nav"}}

	if _, err := m.LoadModule(context.Background(), "widgets/nav"); err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	_, err := m.LoadModule(context.Background(), "widgets/missing")
	if err == nil {
		t.Fatal("expected error for unknown module")
	}
	var nf *ModuleNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %T, want *ModuleNotFoundError", err)
	}
}

func TestRouteInfoAccessors(t *testing.T) {
	u, _ := NormalizeURL("/docs/intro?draft=1")
	ri := &RouteInfo{
		Pattern: "/docs/:slug",
		Params:  map[string]string{"slug": "intro"},
		URL:     u,
	}

	if got := ri.Param("slug"); got != "intro" {
		t.Errorf("Param(slug) = %q", got)
	}
	if got := ri.Param("missing"); got != "" {
		t.Errorf("Param(missing) = %q, want empty", got)
	}
	if got := ri.Query("draft"); got != "1" {
		t.Errorf("Query(draft) = %q", got)
	}
}

func TestLoadModuleMemoized(t *testing.T) {
	var calls atomic.Int32
	e, err := New(Options{
		Resolver: testResolver(t),
		Loader: ModuleLoaderFunc(func(_ context.Context, path string) (any, error) {
			calls.Add(1)
			return path, nil
		}),
	})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if _, err := e.LoadModule(context.Background(), "mod/a"); err != nil {
			t.Fatal(err)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("loader called %d times, want 1", n)
	}
}
