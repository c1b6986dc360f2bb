package internal

import (
	"errors"
	"net/http"
)

// Kind tags a Failure with the class of response it produces.
type Kind uint8

const (
	// KindInternal is any unexpected condition. Rendered as 500.
	KindInternal Kind = iota
	// KindUnauthorized covers invalid, expired or unknown secrets and missing objects. Rendered as 401.
	KindUnauthorized
	// KindTemplateRender is raised when an error page cannot be rendered.
	KindTemplateRender
)

// String returns the lowercase kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindTemplateRender:
		return "template_render"
	default:
		return "internal"
	}
}

// Failure is the error value handlers return to request a specific error page.
// Err carries server-side detail and is never shown to the client.
type Failure struct {
	Err  error
	Op   string
	Kind Kind
}

func (f *Failure) Error() string {
	msg := f.Kind.String()
	if f.Op != "" {
		msg = f.Op + ": " + msg
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// StatusCode maps the kind to an HTTP status.
func (f *Failure) StatusCode() int {
	if f.Kind == KindUnauthorized {
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// Message is the fixed client-facing text for the failure's status.
func (f *Failure) Message() string {
	if f.Kind == KindUnauthorized {
		return "The secret is invalid"
	}
	return "Something went wrong."
}

// WithOp returns a copy of f annotated with the failing operation name.
func (f *Failure) WithOp(op string) *Failure {
	cp := *f
	cp.Op = op
	return &cp
}

// Unauthorized wraps err as an unauthorized failure.
func Unauthorized(err error) *Failure {
	return &Failure{Kind: KindUnauthorized, Err: err}
}

// Internal wraps err as an internal failure.
func Internal(err error) *Failure {
	return &Failure{Kind: KindInternal, Err: err}
}

// TemplateRender wraps err as a template render failure.
func TemplateRender(err error) *Failure {
	return &Failure{Kind: KindTemplateRender, Err: err}
}

// Classify returns the Failure carried by err.
// Errors without a Failure in their chain are internal.
func Classify(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return Internal(err)
}

// IsUnauthorized reports whether err classifies as unauthorized.
func IsUnauthorized(err error) bool {
	f := Classify(err)
	return f != nil && f.Kind == KindUnauthorized
}
