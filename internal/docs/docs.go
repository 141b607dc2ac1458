// Package docs renders the built-in ProofChain documentation pages.
package docs

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

//go:embed content/*.md
var content embed.FS

// Page is one rendered documentation page.
type Page struct {
	Slug     string        `json:"slug"`
	Title    string        `json:"title"`
	Order    int           `json:"order"`
	Markdown string        `json:"-"`
	HTML     template.HTML `json:"-"`
}

// Site holds every page, rendered once at startup.
type Site struct {
	pages  []*Page
	bySlug map[string]*Page
	tmpl   *template.Template
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
}

// Load renders the embedded pages.
func Load() (*Site, error) {
	return load(content, "content")
}

func load(fsys fs.FS, dir string) (*Site, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading docs: %w", err)
	}

	tmpl, err := template.New("page").Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}

	md := newMarkdown()
	s := &Site{bySlug: make(map[string]*Page), tmpl: tmpl}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".md" {
			continue
		}
		raw, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		p, err := renderPage(md, e.Name(), raw)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", e.Name(), err)
		}
		s.pages = append(s.pages, p)
		s.bySlug[p.Slug] = p
	}
	sort.Slice(s.pages, func(i, j int) bool {
		if s.pages[i].Order != s.pages[j].Order {
			return s.pages[i].Order < s.pages[j].Order
		}
		return s.pages[i].Slug < s.pages[j].Slug
	})
	if len(s.pages) == 0 {
		return nil, fmt.Errorf("no documentation pages in %s", dir)
	}
	return s, nil
}

// renderPage converts one file named like "01-overview.md". The numeric
// prefix orders the page and is dropped from the slug.
func renderPage(md goldmark.Markdown, name string, raw []byte) (*Page, error) {
	base := strings.TrimSuffix(name, ".md")
	p := &Page{Slug: base, Markdown: string(raw)}
	if prefix, rest, ok := strings.Cut(base, "-"); ok {
		var n int
		if _, err := fmt.Sscanf(prefix, "%d", &n); err == nil {
			p.Order, p.Slug = n, rest
		}
	}

	var buf bytes.Buffer
	if err := md.Convert(raw, &buf); err != nil {
		return nil, fmt.Errorf("converting markdown: %w", err)
	}
	p.HTML = template.HTML(buf.String())
	p.Title = extractTitle(string(raw), p.Slug)
	return p, nil
}

// extractTitle returns the first level-one heading, or the slug.
func extractTitle(markdown, slug string) string {
	for _, line := range strings.Split(markdown, "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}
	return slug
}

// Pages returns every page in reading order.
func (s *Site) Pages() []*Page { return s.pages }

// Page looks a page up by slug.
func (s *Site) Page(slug string) (*Page, bool) {
	p, ok := s.bySlug[slug]
	return p, ok
}

// Render writes the full HTML document for a page.
func (s *Site) Render(p *Page) ([]byte, error) {
	var buf bytes.Buffer
	err := s.tmpl.Execute(&buf, struct {
		Page  *Page
		Pages []*Page
	}{p, s.pages})
	if err != nil {
		return nil, fmt.Errorf("rendering page %s: %w", p.Slug, err)
	}
	return buf.Bytes(), nil
}
