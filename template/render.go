package template

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/minios-linux/jsonloc/locale"
)

// Extensions lists the file extensions recognized as JSON. The first
// entry is canonical; the others are accepted aliases.
var Extensions = []string{".json", ".jso", ".jsn"}

// TrimExtension strips a recognized extension from a file name.
func TrimExtension(name string) string {
	for _, ext := range Extensions {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

// Render builds the localized output path for sourcePath in the
// targetLocale. Path placeholders are taken from the source path; locale
// placeholders from the target locale. Placeholders outside the
// vocabulary render as the target locale.
//
// When the source path has no directory, a leading "[dir]/" renders as
// nothing rather than "./"; for a source at the filesystem root it
// renders as a single "/".
func (t *Template) Render(sourcePath, targetLocale string) string {
	src := filepath.ToSlash(sourcePath)
	dir := path.Dir(src)
	base := path.Base(src)
	l := locale.Parse(targetLocale)

	var b strings.Builder
	skipSlash := false
	for i, s := range t.segments {
		if s.IsLiteral() {
			lit := s.Literal
			if skipSlash {
				lit = lit[1:]
				skipSlash = false
			}
			b.WriteString(lit)
			continue
		}

		switch s.Kind {
		case Dir:
			if t.dirSlash(i) {
				switch dir {
				case ".":
					skipSlash = true
					continue
				case "/":
					// The following separator already roots the path.
					continue
				}
			}
			b.WriteString(dir)
		case Filename:
			b.WriteString(base)
		case Basename:
			b.WriteString(TrimExtension(base))
		case Language:
			b.WriteString(l.Language)
		case Script:
			b.WriteString(l.Script)
		case Region:
			b.WriteString(l.Region)
		case LocaleDir:
			b.WriteString(l.Dir())
		case LocaleUnder:
			b.WriteString(l.Under())
		default:
			// Locale and Unknown.
			b.WriteString(targetLocale)
		}
	}
	return b.String()
}
