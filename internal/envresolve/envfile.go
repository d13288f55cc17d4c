// SPDX-License-Identifier: MPL-2.0

package envresolve

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"mvdan.cc/sh/v3/shell"
)

// LookupFunc resolves a variable referenced from an environment file.
type LookupFunc func(key string) (string, bool)

// SourceEnvFile reads the environment file at path and returns its
// assignments, tagged with source, in file order.
//
// Missing paths fail with ErrNotFound; directories, devices and files that
// cannot be opened fail with ErrNotReadable; syntax errors fail with
// ErrFileFormat. References like $NAME or ${NAME} resolve first against keys
// defined earlier in the same file and then through lookup.
func SourceEnvFile(path string, source Source, lookup LookupFunc) ([]Assignment, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &EnvFileError{Path: path, Kind: ErrNotFound}
		}
		return nil, &EnvFileError{Path: path, Kind: ErrNotReadable, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &EnvFileError{Path: path, Kind: ErrNotReadable, Err: fmt.Errorf("not a regular file (%s)", info.Mode().Type())}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &EnvFileError{Path: path, Kind: ErrNotReadable, Err: err}
	}

	assignments, err := ParseEnvFile(content, path, source, lookup)
	if err != nil {
		return nil, &EnvFileError{Path: path, Kind: ErrFileFormat, Err: err}
	}
	return assignments, nil
}

// ParseEnvFile parses dotenv content. Supported syntax:
//   - Lines starting with # are comments; empty lines are ignored
//   - KEY=value (unquoted; " #" starts an inline comment)
//   - KEY="value" (double-quoted, escape sequences: \n, \r, \t, \\, \", \$)
//   - KEY='value' (single-quoted, literal)
//   - a closing quote may be followed by whitespace and a # comment
//   - export KEY=value (the export prefix is ignored)
//   - $NAME, ${NAME} and ${NAME:-default} are substituted in unquoted and
//     double-quoted values
//
// The filename parameter is used for error messages. lookup may be nil.
func ParseEnvFile(content []byte, filename string, source Source, lookup LookupFunc) ([]Assignment, error) {
	p := &envFileParser{
		filename: filename,
		local:    make(map[string]string),
		lookup:   lookup,
	}

	var assignments []Assignment
	for i, line := range strings.Split(string(content), "\n") {
		p.line = i + 1

		line = strings.TrimSuffix(line, "\r")
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		line = strings.TrimPrefix(line, "export ")
		line = strings.TrimSpace(line)

		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, p.errorf("invalid format (missing '=')")
		}

		key = strings.TrimSpace(key)
		if key == "" {
			return nil, p.errorf("empty variable name")
		}
		if strings.ContainsAny(key, " \t") {
			return nil, p.errorf("invalid variable name %q", key)
		}

		parsed, err := p.parseValue(value)
		if err != nil {
			return nil, err
		}

		p.local[key] = parsed
		assignments = append(assignments, Assignment{Key: key, Value: parsed, Source: source})
	}

	return assignments, nil
}

type envFileParser struct {
	filename string
	line     int
	local    map[string]string
	lookup   LookupFunc
}

func (p *envFileParser) errorf(format string, args ...any) error {
	return &SyntaxError{File: p.filename, Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

func (p *envFileParser) resolve(name string) string {
	if v, ok := p.local[name]; ok {
		return v
	}
	if p.lookup != nil {
		if v, ok := p.lookup(name); ok {
			return v
		}
	}
	return ""
}

// parseValue handles quoting, escapes and substitution for one value.
func (p *envFileParser) parseValue(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}

	switch value[0] {
	case '"':
		end := closingQuote(value, '"')
		if end < 0 {
			return "", p.errorf("unterminated double quote")
		}
		if err := p.checkTrailing(value[end+1:]); err != nil {
			return "", err
		}
		return p.interpolate(value[1:end], true)
	case '\'':
		end := closingQuote(value, '\'')
		if end < 0 {
			return "", p.errorf("unterminated single quote")
		}
		if err := p.checkTrailing(value[end+1:]); err != nil {
			return "", err
		}
		return value[1:end], nil
	}

	if idx := strings.Index(value, " #"); idx != -1 {
		value = strings.TrimSpace(value[:idx])
	}
	return p.interpolate(value, false)
}

// closingQuote returns the index of the quote closing value[0], or -1.
// Backslash escapes are skipped inside double quotes.
func closingQuote(value string, quote byte) int {
	for i := 1; i < len(value); i++ {
		switch {
		case quote == '"' && value[i] == '\\':
			i++
		case value[i] == quote:
			return i
		}
	}
	return -1
}

// checkTrailing accepts whitespace and a whitespace-separated # comment after
// a closing quote.
func (p *envFileParser) checkTrailing(rest string) error {
	trimmed := strings.TrimSpace(rest)
	if trimmed == "" {
		return nil
	}
	if strings.HasPrefix(trimmed, "#") && trimmed != rest {
		return nil
	}
	return p.errorf("unexpected characters after closing quote: %q", trimmed)
}

// interpolate substitutes variable references. With escapes set it also
// processes the double-quote escape sequences; otherwise only \$ is special.
func (p *envFileParser) interpolate(value string, escapes bool) (string, error) {
	var out strings.Builder
	out.Grow(len(value))

	for i := 0; i < len(value); {
		c := value[i]
		switch {
		case c == '\\' && i+1 < len(value) && value[i+1] == '$':
			out.WriteByte('$')
			i += 2
		case c == '\\' && escapes && i+1 < len(value):
			writeEscape(&out, value[i+1])
			i += 2
		case c == '$':
			ref, n, err := scanReference(value[i:])
			if err != nil {
				return "", p.errorf("%v", err)
			}
			if n == 0 {
				out.WriteByte('$')
				i++
				continue
			}
			expanded, err := shell.Expand(ref, p.resolve)
			if err != nil {
				return "", p.errorf("bad substitution %s: %v", ref, err)
			}
			out.WriteString(expanded)
			i += n
		default:
			out.WriteByte(c)
			i++
		}
	}

	return out.String(), nil
}

func writeEscape(out *strings.Builder, next byte) {
	switch next {
	case 'n':
		out.WriteByte('\n')
	case 'r':
		out.WriteByte('\r')
	case 't':
		out.WriteByte('\t')
	case '\\':
		out.WriteByte('\\')
	case '"':
		out.WriteByte('"')
	default:
		// Unknown escape - keep both characters
		out.WriteByte('\\')
		out.WriteByte(next)
	}
}

// scanReference returns the variable reference at the start of s (which
// begins with '$') and its length. A '$' not followed by a name or '{' is
// not a reference and yields n == 0.
func scanReference(s string) (ref string, n int, err error) {
	if len(s) < 2 {
		return "", 0, nil
	}

	if s[1] == '{' {
		depth := 0
		for i := 1; i < len(s); i++ {
			switch s[i] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return s[:i+1], i + 1, nil
				}
			}
		}
		return "", 0, errors.New("unterminated ${ reference")
	}

	if !isNameStart(s[1]) {
		return "", 0, nil
	}
	end := 2
	for end < len(s) && isNameChar(s[end]) {
		end++
	}
	return s[:end], end, nil
}

func isNameStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || ('0' <= c && c <= '9')
}
