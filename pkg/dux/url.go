package dux

import (
	"fmt"
	"strings"
)

// URL is either a literal address or a function computing one from the
// request parameters. The zero URL is unset.
type URL struct {
	literal string
	fn      func(params map[string]any) string
}

// Literal returns a fixed URL.
func Literal(s string) URL {
	return URL{literal: s}
}

// Computed returns a URL computed from request parameters.
func Computed(fn func(params map[string]any) string) URL {
	return URL{fn: fn}
}

// Template returns a URL whose {name} placeholders are replaced by the
// matching request parameters. Placeholders without a parameter expand to
// the empty string. A string without placeholders yields a Literal.
func Template(s string) URL {
	if !strings.Contains(s, "{") {
		return Literal(s)
	}
	return Computed(func(params map[string]any) string {
		var b strings.Builder
		rest := s
		for {
			open := strings.IndexByte(rest, '{')
			if open < 0 {
				b.WriteString(rest)
				break
			}
			end := strings.IndexByte(rest[open:], '}')
			if end < 0 {
				b.WriteString(rest)
				break
			}
			b.WriteString(rest[:open])
			key := rest[open+1 : open+end]
			if v, ok := params[key]; ok && v != nil {
				fmt.Fprint(&b, v)
			}
			rest = rest[open+end+1:]
		}
		return b.String()
	})
}

// IsZero reports whether the URL is unset.
func (u URL) IsZero() bool {
	return u.fn == nil && u.literal == ""
}

// IsComputed reports whether the URL is computed from parameters.
func (u URL) IsComputed() bool {
	return u.fn != nil
}

// Resolve returns the address for params.
func (u URL) Resolve(params map[string]any) string {
	if u.fn != nil {
		return u.fn(params)
	}
	return u.literal
}

// ResolveURL picks the address of an operation: a literal custom URL is
// used as is, a computed custom URL is evaluated with params, and otherwise
// the base URL is evaluated (computed) or used as is (literal).
func ResolveURL(custom, base URL, params map[string]any) string {
	if !custom.IsZero() {
		return custom.Resolve(params)
	}
	return base.Resolve(params)
}
