// Package tmpl renders the user supplied templates of commit messages, tag names,
// annotations and release names.
package tmpl

import "strings"

// KeyVersion is the name of the version placeholder
const KeyVersion = "version"

// Values maps placeholder names to their values
type Values map[string]string

// Format replaces every ${name} placeholder with its value and the first "%s" with
// the version. Substituted values are not scanned again.
func Format(template string, values Values) string {
	var b strings.Builder
	versionUsed := false

	for i := 0; i < len(template); i++ {
		switch {
		case strings.HasPrefix(template[i:], "${"):
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				b.WriteString(template[i:])
				return b.String()
			}
			name := template[i+2 : i+end]
			if v, ok := values[name]; ok {
				b.WriteString(v)
			} else {
				b.WriteString(template[i : i+end+1])
			}
			i += end

		case !versionUsed && strings.HasPrefix(template[i:], "%s"):
			b.WriteString(values[KeyVersion])
			versionUsed = true
			i++

		default:
			b.WriteByte(template[i])
		}
	}

	return b.String()
}

// Version is shorthand of Format with only the version value
func Version(template, version string) string {
	return Format(template, Values{KeyVersion: version})
}

// ExtractVersion reverses Version: it returns the version part of s rendered by template,
// e.g. ExtractVersion("v%s", "v1.2.0") is "1.2.0". ok is false when s does not fit template.
func ExtractVersion(template, s string) (string, bool) {
	placeholder := "%s"
	idx := strings.Index(template, placeholder)
	if idx < 0 {
		placeholder = "${" + KeyVersion + "}"
		idx = strings.Index(template, placeholder)
	}
	if idx < 0 {
		return "", false
	}

	prefix, suffix := template[:idx], template[idx+len(placeholder):]
	if !strings.HasPrefix(s, prefix) || !strings.HasSuffix(s, suffix) || len(s) < len(prefix)+len(suffix) {
		return "", false
	}
	return s[len(prefix) : len(s)-len(suffix)], true
}
