// Package pattern derives target keys from source keys using a regular
// expression and a replacement template.
package pattern

import (
	"fmt"
	"regexp"

	"github.com/input-output-hk/catalyst-forge-libs/s3utils/errors"
)

// Matcher holds a compiled source pattern and its target template.
// Templates reference capture groups as $1 or ${name}.
type Matcher struct {
	source *regexp.Regexp
	target string
}

// Compile compiles the source pattern. A compilation failure wraps
// errors.ErrInvalidPattern.
func Compile(source, target string) (*Matcher, error) {
	re, err := regexp.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidPattern, err)
	}
	return &Matcher{source: re, target: target}, nil
}

// MustCompile is like Compile but panics on an invalid pattern.
func MustCompile(source, target string) *Matcher {
	m, err := Compile(source, target)
	if err != nil {
		panic(err)
	}
	return m
}

// Derive returns the target key for key. The result is false when key does
// not match or when every substitution yields key itself.
func (m *Matcher) Derive(key string) (string, bool) {
	if !m.source.MatchString(key) {
		return "", false
	}
	target := m.source.ReplaceAllString(key, m.target)
	if target == key {
		return "", false
	}
	return target, true
}

// String returns the source pattern.
func (m *Matcher) String() string {
	return m.source.String()
}
