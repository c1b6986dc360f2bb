package views

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"

	"github.com/a-h/templ"
)

//go:embed templates/*.html
var embedded embed.FS

// Page names.
const (
	PageUnauthorized = "unauthorized"
	PageError        = "error"
)

// Errors returned while loading or rendering pages.
var (
	ErrLoadTemplates   = errors.New("views: failed to load templates")
	ErrMissingTemplate = errors.New("views: missing template")
)

// PageData is the view model of an error page.
// Scheme and Host may be empty; templates render without them.
type PageData struct {
	Scheme     string
	Host       string
	Path       string
	URI        string
	StatusCode int
}

// Pages renders the error pages.
type Pages struct {
	tmpl *template.Template
}

// New loads the page templates from dir, or the embedded set when dir is empty.
// Every page name must be present.
func New(dir string) (*Pages, error) {
	var fsys fs.FS
	if dir == "" {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, errors.Join(ErrLoadTemplates, err)
		}
		fsys = sub
	} else {
		fsys = os.DirFS(dir)
	}
	return Load(fsys)
}

// Load parses *.html from fsys. Templates are named after their file
// without the extension.
func Load(fsys fs.FS) (*Pages, error) {
	names, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, errors.Join(ErrLoadTemplates, err)
	}

	root := template.New("")
	for _, file := range names {
		b, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, errors.Join(ErrLoadTemplates, err)
		}
		name := file[:len(file)-len(".html")]
		if _, err := root.New(name).Parse(string(b)); err != nil {
			return nil, errors.Join(ErrLoadTemplates, err)
		}
	}

	for _, name := range []string{PageUnauthorized, PageError} {
		if root.Lookup(name) == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingTemplate, name)
		}
	}

	return &Pages{tmpl: root}, nil
}

// Page returns a component rendering the named page with data.
// An unknown name fails at render time.
func (p *Pages) Page(name string, data PageData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		t := p.tmpl.Lookup(name)
		if t == nil {
			return fmt.Errorf("%w: %s", ErrMissingTemplate, name)
		}
		return t.Execute(w, data)
	})
}
