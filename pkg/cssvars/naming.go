package cssvars

import (
	"strings"
	"unicode"
)

// NameStyle is the case style of generated variable names.
type NameStyle string

// Name styles.
const (
	KebabCase    NameStyle = "kebabCase"
	CamelCase    NameStyle = "camelCase"
	PascalCase   NameStyle = "pascalCase"
	SnakeCase    NameStyle = "snakeCase"
	ConstantCase NameStyle = "constantCase"
	FlatCase     NameStyle = "flatCase"
)

func (s NameStyle) valid() bool {
	switch s {
	case KebabCase, CamelCase, PascalCase, SnakeCase, ConstantCase, FlatCase:
		return true
	}
	return false
}

// Apply formats s in the style. Words are split on any character that is not a
// letter or digit and on lower-to-upper case transitions.
func (s NameStyle) Apply(in string) string {
	return s.join(words(in))
}

func (s NameStyle) join(parts []string) string {
	if len(parts) == 0 {
		return ""
	}

	switch s {
	case CamelCase, PascalCase:
		var sb strings.Builder
		for i, w := range parts {
			if i == 0 && s == CamelCase {
				sb.WriteString(w)
				continue
			}
			sb.WriteString(strings.ToUpper(w[:1]) + w[1:])
		}
		return sb.String()
	case SnakeCase:
		return strings.Join(parts, "_")
	case ConstantCase:
		return strings.ToUpper(strings.Join(parts, "_"))
	case FlatCase:
		return strings.Join(parts, "")
	default:
		return strings.Join(parts, "-")
	}
}

// words splits s into lowercase ASCII-safe words.
func words(s string) []string {
	var (
		out  []string
		cur  strings.Builder
		prev rune
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, strings.ToLower(cur.String()))
			cur.Reset()
		}
	}

	for _, r := range s {
		if !isWordRune(r) {
			flush()
			prev = 0
			continue
		}
		if unicode.IsUpper(r) && prev != 0 && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
			flush()
		}
		cur.WriteRune(r)
		prev = r
	}
	flush()
	return out
}

func isWordRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
