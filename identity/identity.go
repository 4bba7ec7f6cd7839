// Package identity turns a provider userinfo payload into the account
// attributes used on the image server, via operator-configured templates.
package identity

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/go-oauth-bridge/internal/errors"
)

// Profile holds the four account attributes derived from userinfo
type Profile struct {
	Name      string
	Email     string
	FirstName string
	LastName  string
}

// Templates holds the configured substitution templates, one per attribute
type Templates struct {
	Name      string
	Email     string
	FirstName string
	LastName  string
}

// ResolveProfile expands all four templates against the userinfo fields
func ResolveProfile(t Templates, fields map[string]string) (Profile, error) {
	var p Profile
	var err error

	if p.Name, err = Expand(t.Name, fields); err != nil {
		return Profile{}, errors.Wrapf(err, "resolving account name")
	}
	if p.Email, err = Expand(t.Email, fields); err != nil {
		return Profile{}, errors.Wrapf(err, "resolving email")
	}
	if p.FirstName, err = Expand(t.FirstName, fields); err != nil {
		return Profile{}, errors.Wrapf(err, "resolving first name")
	}
	if p.LastName, err = Expand(t.LastName, fields); err != nil {
		return Profile{}, errors.Wrapf(err, "resolving last name")
	}
	return p, nil
}

// Expand substitutes {field} references in template with the matching
// userinfo values. "{{" and "}}" escape literal braces. Referencing a field
// absent from the payload is an operator configuration error.
func Expand(template string, fields map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); i++ {
		switch template[i] {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				return "", fmt.Errorf("unterminated field reference in %q", template)
			}
			field := template[i+1 : i+end]
			value, ok := fields[field]
			if !ok {
				return "", errors.Wrapf(errors.ErrFieldMissing, "field %q", field)
			}
			b.WriteString(value)
			i += end
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", fmt.Errorf("unmatched '}' in %q", template)
		default:
			b.WriteByte(template[i])
		}
	}
	return b.String(), nil
}
