package template

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tmpl, err := Parse("[dir]/[localeDir]/strings.json")
	require.NoError(t, err)

	want := []Segment{
		{Kind: Dir, Name: "dir"},
		{Literal: "/"},
		{Kind: LocaleDir, Name: "localeDir"},
		{Literal: "/strings.json"},
	}
	assert.Equal(t, want, tmpl.Segments())
	assert.Equal(t, "[dir]/[localeDir]/strings.json", tmpl.String())
	assert.True(t, tmpl.HasLocale())
}

func TestParseUnknownPlaceholder(t *testing.T) {
	tmpl, err := Parse("out/[flavour].json")
	require.NoError(t, err)

	segs := tmpl.Segments()
	require.Len(t, segs, 3)
	assert.Equal(t, Unknown, segs[1].Kind)
	assert.Equal(t, "flavour", segs[1].Name)
	assert.True(t, tmpl.HasLocale())
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		src    string
		offset int
	}{
		{src: "[dir/strings.json", offset: 0},
		{src: "res/[locale", offset: 4},
		{src: "res/locale]/x", offset: 10},
		{src: "[dir]/[a[b]]", offset: 6},
		{src: "[]/x", offset: 0},
	}

	for _, tc := range cases {
		_, err := Parse(tc.src)
		require.Error(t, err, "Parse(%q)", tc.src)

		var syn *SyntaxError
		require.True(t, errors.As(err, &syn), "Parse(%q) error type %T", tc.src, err)
		assert.Equal(t, tc.src, syn.Template)
		assert.Equal(t, tc.offset, syn.Offset, "Parse(%q) offset", tc.src)
		assert.Contains(t, err.Error(), tc.src)
	}
}

func TestHasLocale(t *testing.T) {
	assert.False(t, MustParse("[dir]/copy/[filename]").HasLocale())
	assert.False(t, MustParse("plain.json").HasLocale())
	assert.True(t, MustParse("[dir]/[region]/[filename]").HasLocale())
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("[oops") })
}

func TestRender(t *testing.T) {
	cases := []struct {
		name   string
		tmpl   string
		source string
		locale string
		want   string
	}{
		{
			name:   "locale directory without source dir",
			tmpl:   "[dir]/[locale]/[filename]",
			source: "strings.json",
			locale: "fr-FR",
			want:   "fr-FR/strings.json",
		},
		{
			name:   "localeDir splits components",
			tmpl:   "[dir]/[localeDir]/strings.json",
			source: "res/strings.json",
			locale: "de-DE",
			want:   "res/de/DE/strings.json",
		},
		{
			name:   "basename strips alias extension",
			tmpl:   "[dir]/[basename]_[localeUnder].json",
			source: "a/b/msgs.jso",
			locale: "zh-Hans-CN",
			want:   "a/b/msgs_zh_Hans_CN.json",
		},
		{
			name:   "individual components",
			tmpl:   "[language]/[region]/[script]/x.json",
			source: "x.json",
			locale: "sr-Latn-RS",
			want:   "sr/RS/Latn/x.json",
		},
		{
			name:   "unknown placeholder falls back to locale",
			tmpl:   "[dir]/[bogus]/[filename]",
			source: "res/a.json",
			locale: "pt-BR",
			want:   "res/pt-BR/a.json",
		},
		{
			name:   "locale is written as given",
			tmpl:   "[dir]/[locale]/[filename]",
			source: "/abs/app/a.json",
			locale: "pt_BR",
			want:   "/abs/app/pt_BR/a.json",
		},
		{
			name:   "source at filesystem root keeps one separator",
			tmpl:   "[dir]/[locale]/[filename]",
			source: "/abs.json",
			locale: "de-DE",
			want:   "/de-DE/abs.json",
		},
		{
			name:   "basename as a directory",
			tmpl:   "[dir]/[basename]/[locale].json",
			source: "res/strings.json",
			locale: "fr-FR",
			want:   "res/strings/fr-FR.json",
		},
		{
			name:   "repeated placeholders render identically",
			tmpl:   "[locale]/[basename].[locale].json",
			source: "a/msgs.json",
			locale: "it",
			want:   "it/msgs.it.json",
		},
		{
			name:   "dir not followed by separator is kept",
			tmpl:   "[dir]-[locale].json",
			source: "strings.json",
			locale: "fr",
			want:   ".-fr.json",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MustParse(tc.tmpl).Render(tc.source, tc.locale)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractLocale(t *testing.T) {
	cases := []struct {
		name string
		tmpl string
		path string
		want string
	}{
		{
			name: "localeDir",
			tmpl: "[dir]/[localeDir]/strings.json",
			path: "res/de/DE/strings.json",
			want: "de-DE",
		},
		{
			name: "locale directory at root",
			tmpl: "[dir]/[locale]/[filename]",
			path: "fr-FR/strings.json",
			want: "fr-FR",
		},
		{
			name: "source file does not match",
			tmpl: "[dir]/[locale]/[filename]",
			path: "strings.json",
			want: "",
		},
		{
			name: "deep path with script",
			tmpl: "[dir]/[locale]/[filename]",
			path: "x/y/zh-Hant-TW/a.json",
			want: "zh-Hant-TW",
		},
		{
			name: "underscore form inside file name",
			tmpl: "[dir]/[basename]_[localeUnder].json",
			path: "a/my_msgs_fr_CA.json",
			want: "fr-CA",
		},
		{
			name: "separate components",
			tmpl: "[language]/[region]/[filename]",
			path: "es/419/a.json",
			want: "es-419",
		},
		{
			name: "filename must equal the path's own base",
			tmpl: "[dir]/[locale]/[filename]",
			path: "res/de/strings.jsn",
			want: "de",
		},
		{
			name: "literal mismatch",
			tmpl: "[dir]/[localeDir]/strings.json",
			path: "res/de/DE/other.json",
			want: "",
		},
		{
			name: "template without locale",
			tmpl: "[dir]/out/[filename]",
			path: "a/out/b.json",
			want: "",
		},
		{
			name: "regex metacharacters in literals are quoted",
			tmpl: "[dir]/(v1)/[locale].json",
			path: "a/(v1)/ja.json",
			want: "ja",
		},
		{
			name: "unknown placeholder matches like locale",
			tmpl: "[dir]/[bogus]/[filename]",
			path: "res/pt-BR/a.json",
			want: "pt-BR",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MustParse(tc.tmpl).ExtractLocale(tc.path)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMatcherIsAnchored(t *testing.T) {
	re, err := MustParse("[locale]/[filename]").Matcher("res/fr/strings.json")
	require.NoError(t, err)
	assert.False(t, re.MatchString("res/fr/strings.json"))
	assert.True(t, re.MatchString("fr/strings.json"))
}

func TestRoundTrip(t *testing.T) {
	templates := []string{
		"[dir]/[locale]/[filename]",
		"[dir]/[localeDir]/strings.json",
		"[dir]/[localeUnder]/[basename].json",
		"[dir]/[basename]_[localeUnder].json",
		"[dir]/[localeDir]/[basename].json",
		"[locale].json",
		"i18n/[basename].[locale].json",
		"[dir]/[basename]/[locale].json",
		"[dir]/[filename]/[localeDir]/x.json",
	}
	locales := []string{"de-DE", "fr", "zh-Hans-CN", "es-419", "sr-Latn"}
	sources := []string{"strings.json", "res/strings.json", "a/b/c/msgs.jsn", "en/app_text.json", "/abs.json"}

	for _, tp := range templates {
		tmpl := MustParse(tp)
		for _, loc := range locales {
			for _, src := range sources {
				out := tmpl.Render(src, loc)
				assert.Equal(t, loc, tmpl.ExtractLocale(out),
					"template %q source %q locale %q rendered %q", tp, src, loc, out)
			}
		}
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "localeDir", LocaleDir.String())
	assert.Equal(t, "dir", Dir.String())
	assert.Equal(t, "unknown", Unknown.String())
}

func TestTrimExtension(t *testing.T) {
	assert.Equal(t, "msgs", TrimExtension("msgs.json"))
	assert.Equal(t, "msgs", TrimExtension("msgs.jso"))
	assert.Equal(t, "msgs", TrimExtension("msgs.jsn"))
	assert.Equal(t, "msgs.yaml", TrimExtension("msgs.yaml"))
}
