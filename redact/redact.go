// Package redact masks secrets in zle buffers and completions before they
// reach logs or the transcript file. Only the secret spans are replaced; all
// other bytes, including whitespace and comments, are kept as typed.
package redact

import (
	"regexp"
	"sort"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Placeholder replaces the name of a sensitive parameter expansion.
const Placeholder = "REDACTED"

// Mask replaces the value of a sensitive assignment.
const Mask = "***"

// safeVars are environment variables that carry no secrets.
var safeVars = map[string]bool{
	"HOME": true, "USER": true, "PWD": true, "OLDPWD": true,
	"SHELL": true, "PATH": true, "LANG": true, "TERM": true,
	"EDITOR": true, "PAGER": true, "HOSTNAME": true, "LOGNAME": true,
	"TMPDIR": true, "XDG_CONFIG_HOME": true, "XDG_DATA_HOME": true,
	"XDG_CACHE_HOME": true, "XDG_RUNTIME_DIR": true, "ZDOTDIR": true,
	"HISTFILE": true, "HISTSIZE": true, "SAVEHIST": true, "SHLVL": true,
	"COLUMNS": true, "LINES": true, "LC_ALL": true, "LC_CTYPE": true,
	"BUFFER": true, "CURSOR": true, "LBUFFER": true, "RBUFFER": true,
}

func sensitive(name string) bool {
	if safeVars[name] {
		return false
	}
	// Special and positional parameters: $? $! $# $@ $* $- $$ $_ $0..$9.
	if len(name) == 1 && strings.ContainsAny(name, "?!#@*-$_0123456789") {
		return false
	}
	return true
}

// span is a byte range of the input to be replaced.
type span struct {
	start, end int
	with       string
}

// Command masks sensitive parameter names and assignment values in cmd.
// A half-typed buffer that does not parse is scanned with a regex instead.
func Command(cmd string) string {
	if strings.TrimSpace(cmd) == "" {
		return cmd
	}
	spans, ok := syntaxSpans(cmd)
	if !ok {
		spans = regexSpans(cmd)
	}
	return splice(cmd, spans)
}

// syntaxSpans walks the parsed command and records the byte range of every
// secret. It reports false when cmd does not parse.
func syntaxSpans(cmd string) ([]span, bool) {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash), syntax.KeepComments(true))
	prog, err := parser.Parse(strings.NewReader(cmd), "")
	if err != nil {
		return nil, false
	}

	var spans []span
	syntax.Walk(prog, func(node syntax.Node) bool {
		switch n := node.(type) {
		case *syntax.ParamExp:
			if n.Param != nil && sensitive(n.Param.Value) {
				spans = append(spans, nodeSpan(n.Param, Placeholder))
			}
		case *syntax.Assign:
			if n.Name != nil && n.Value != nil && len(n.Value.Parts) > 0 && sensitive(n.Name.Value) {
				spans = append(spans, nodeSpan(n.Value, Mask))
				// The whole value is masked, expansions inside it included.
				return false
			}
		}
		return true
	})
	return spans, true
}

func nodeSpan(n syntax.Node, with string) span {
	return span{start: int(n.Pos().Offset()), end: int(n.End().Offset()), with: with}
}

var reSecret = regexp.MustCompile(`\$\{?([A-Za-z_][A-Za-z0-9_]*)|\b([A-Za-z_][A-Za-z0-9_]*)=(\S+)`)

// regexSpans finds $NAME, ${NAME and NAME=value occurrences in text that the
// shell parser rejected, such as a buffer with an unterminated quote.
func regexSpans(cmd string) []span {
	var spans []span
	for _, m := range reSecret.FindAllStringSubmatchIndex(cmd, -1) {
		switch {
		case m[2] >= 0:
			if sensitive(cmd[m[2]:m[3]]) {
				spans = append(spans, span{start: m[2], end: m[3], with: Placeholder})
			}
		case m[4] >= 0:
			if sensitive(cmd[m[4]:m[5]]) {
				spans = append(spans, span{start: m[6], end: m[7], with: Mask})
			}
		}
	}
	return spans
}

// splice replaces spans in cmd. Overlapping spans keep the first one.
func splice(cmd string, spans []span) string {
	if len(spans) == 0 {
		return cmd
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var sb strings.Builder
	sb.Grow(len(cmd))
	pos := 0
	for _, s := range spans {
		if s.start < pos || s.end > len(cmd) {
			continue
		}
		sb.WriteString(cmd[pos:s.start])
		sb.WriteString(s.with)
		pos = s.end
	}
	sb.WriteString(cmd[pos:])
	return sb.String()
}
