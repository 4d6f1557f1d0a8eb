package templates

// Regenerate the *_templ.go files after editing a .templ file.

//go:generate go run github.com/a-h/templ/cmd/templ generate
