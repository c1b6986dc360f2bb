// Package views renders the unauthorized and error pages.
//
// The templates are html/template files embedded in the binary; a directory
// holding unauthorized.html and error.html replaces them:
//
//	pages, err := views.New(os.Getenv("TEMPLATES_DIR"))
//	comp := pages.Page(views.PageUnauthorized, views.PageData{StatusCode: 401})
//
// Pages are exposed as templ components so they render through the same
// Context.Render path as any other component.
package views
