// jsonloc classifies localizable JSON files and maps them to localized paths.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/minios-linux/jsonloc/config"
	"github.com/minios-linux/jsonloc/i18n"
	"github.com/minios-linux/jsonloc/locale"
	"github.com/minios-linux/jsonloc/mapping"
	"github.com/minios-linux/jsonloc/project"
	"github.com/minios-linux/jsonloc/schema"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir    string
	configPath string
	verbose    bool
	uiLang     string
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jsonloc",
		Short: "Classify localizable JSON files and map them to localized paths",
		Long: `jsonloc decides which JSON files in a project are localizable sources,
which mapping rule and schema govern them, and where their localized
copies live.

Rules are read from .jsonloc.yaml at the project root. Each rule maps a
glob pattern to a schema and an output path template such as
"[dir]/[localeDir]/strings.json".

Commands:
  status      Show configuration, mapping rules and locale coverage
  handles     Report whether paths are localizable source files
  localize    Print the localized output paths of a source file
  locale      Print the locale recovered from a localized path
  schema      List or print registered schema references
  scan        Walk the project and group files by locale`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			i18n.Init(uiLang)
			setupLogging(verbose)
		},
	}

	// Global persistent flags, inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <root>/"+config.FileName+")")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&uiLang, "lang", "", "Interface language (default: from environment)")

	root.AddCommand(
		newStatusCmd(),
		newHandlesCmd(),
		newLocalizeCmd(),
		newLocaleCmd(),
		newSchemaCmd(),
		newScanCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// setupLogging routes library logging through slog on stderr. Warnings
// such as duplicate schema references are always shown.
func setupLogging(debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// openProject loads the configuration selected by the global flags and
// opens the project.
func openProject() (*project.Project, error) {
	var (
		cfg *config.File
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(rootDir)
	}
	if err != nil {
		return nil, err
	}
	return project.Open(rootDir, cfg, slog.Default())
}

// signalContext returns a context cancelled on the first interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		select {
		case <-sigCh:
			logWarning("%s", i18n.T("Interrupted, stopping..."))
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "jsonloc version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// status (read-only: configuration + coverage)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration, mapping rules and locale coverage",
		Long: `Show the effective configuration, the mapping rules in match order,
the loaded schemas, and how many source files have a localized copy
for each locale. Does not modify any files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			scan, err := p.Scan(ctx)
			if err != nil {
				return err
			}
			printStatus(cmd.ErrOrStderr(), p, scan)
			return nil
		},
	}
}

func printStatus(w io.Writer, p *project.Project, scan *project.ScanResult) {
	cfg := p.Config()
	if cfg.Path() == "" {
		logInfo(i18n.T("No %s found, using built-in defaults"), config.FileName)
	}

	fmt.Fprintf(w, "\n%s%s%s\n", colorBlue, i18n.T("Project"), colorReset)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "  %-12s %s\n", i18n.T("Root:"), p.Root())
	cfgDesc := cfg.Path()
	if cfgDesc == "" {
		cfgDesc = i18n.T("none (built-in defaults)")
	}
	fmt.Fprintf(w, "  %-12s %s\n", i18n.T("Config:"), cfgDesc)
	fmt.Fprintf(w, "  %-12s %s\n", i18n.T("Source:"), langLabel(cfg.SourceLocale))

	targets := cfg.TargetLocales()
	if len(targets) > 0 {
		labels := make([]string, len(targets))
		for i, l := range targets {
			labels[i] = langLabel(l)
		}
		fmt.Fprintf(w, "  %-12s %s\n", i18n.T("Locales:"), strings.Join(labels, ", "))
	} else {
		fmt.Fprintf(w, "  %-12s %s\n", i18n.T("Locales:"), i18n.T("none configured"))
	}
	fmt.Fprintf(w, "  %-12s %s\n", i18n.T("Schemas:"),
		i18n.Tf("%d documents, %d references", len(p.Registry().Documents()), p.Registry().Len()))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s%s%s\n", colorBlue, i18n.T("Mappings"), colorReset)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	for i, r := range p.Classifier().Rules() {
		fmt.Fprintf(w, "  %d. %s\n", i+1, r.Pattern)
		fmt.Fprintf(w, "     %-10s %s\n", i18n.T("template"), r.Template)
		fmt.Fprintf(w, "     %-10s %s\n", i18n.T("schema"), r.SchemaID)
		fmt.Fprintf(w, "     %-10s %s\n", i18n.T("method"), r.Method)
	}
	fmt.Fprintln(w)

	total := len(scan.Sources)
	fmt.Fprintf(w, "%s%s%s\n", colorBlue, i18n.T("Coverage"), colorReset)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "  "+i18n.N("%d source file", "%d source files", total)+"\n", total)

	langs := coverageLocales(targets, scan.Locales)
	width := langColumnWidth(langs)
	for _, l := range langs {
		count := len(scan.Localized[l])
		percent := 0
		if total > 0 {
			percent = count * 100 / total
		}
		fmt.Fprintf(w, "  %s %s %d\n", langCell(l, width), progressBar(percent, 20), count)
	}
	fmt.Fprintln(w)
}

// coverageLocales merges configured and detected locales, configured
// ones first.
func coverageLocales(configured, detected []string) []string {
	seen := make(map[string]bool, len(configured))
	out := make([]string, 0, len(configured)+len(detected))
	for _, l := range configured {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	for _, l := range detected {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}

// progressBar renders a coloured bar followed by a right-aligned
// percentage. Percent is clamped to 0..100.
func progressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100

	color := colorRed
	switch {
	case percent >= 90:
		color = colorGreen
	case percent >= 50:
		color = colorYellow
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s%s%s %3d%%", color, bar, colorReset, percent)
}

func langLabel(spec string) string {
	m := locale.Describe(spec)
	label := spec
	if m.Name != spec {
		label += " (" + m.Name + ")"
	}
	if m.Flag != "" {
		label = m.Flag + " " + label
	}
	return label
}

func langColumnWidth(langs []string) int {
	width := 0
	for _, l := range langs {
		if len(l) > width {
			width = len(l)
		}
	}
	return width
}

// langCell is a locale code padded to width, prefixed with its flag.
func langCell(spec string, width int) string {
	flag := locale.Describe(spec).Flag
	if flag == "" {
		flag = "  "
	}
	return fmt.Sprintf("%s %-*s", flag, width, spec)
}

// ---------------------------------------------------------------------------
// handles
// ---------------------------------------------------------------------------

func newHandlesCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "handles PATH...",
		Short: "Report whether paths are localizable source files",
		Long: `Classify each path as source, localized or unhandled and print the
governing mapping pattern. Paths are relative to --root.

With --quiet nothing is printed and the exit status is non-zero unless
every path is a source file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			rejected := 0
			for _, path := range args {
				res := p.Classify(path)
				if res.Kind != mapping.Source {
					rejected++
				}
				if quiet {
					continue
				}
				fmt.Fprintln(out, describeResult(path, res))
			}
			if quiet && rejected > 0 {
				return fmt.Errorf(i18n.N("%d path is not a localizable source", "%d paths are not localizable sources", rejected), rejected)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Print nothing, report through the exit status")
	return cmd
}

func describeResult(path string, res mapping.Result) string {
	switch res.Kind {
	case mapping.Source:
		return fmt.Sprintf("%s\t%s\t%s", path, res.Kind, res.Rule.Pattern)
	case mapping.Localized:
		return fmt.Sprintf("%s\t%s\t%s\t%s", path, res.Kind, res.Rule.Pattern, res.Locale)
	}
	return fmt.Sprintf("%s\t%s", path, res.Kind)
}

// ---------------------------------------------------------------------------
// localize
// ---------------------------------------------------------------------------

func newLocalizeCmd() *cobra.Command {
	var locales []string

	cmd := &cobra.Command{
		Use:   "localize PATH",
		Short: "Print the localized output paths of a source file",
		Long: `Render the mapping template of a source file for each target locale.
Without --locale every locale from the config is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject()
			if err != nil {
				return err
			}
			targets, err := resolveLocales(locales, p.Config().TargetLocales())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, l := range targets {
				path, ok := p.OutputPath(args[0], l)
				if !ok {
					return fmt.Errorf(i18n.T("%s is not a localizable source file"), args[0])
				}
				fmt.Fprintf(out, "%s\t%s\n", l, path)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&locales, "locale", "l", nil, "Target locale (repeatable)")
	return cmd
}

// resolveLocales validates and canonicalizes explicit locales or falls
// back to the configured ones.
func resolveLocales(explicit, configured []string) ([]string, error) {
	if len(explicit) == 0 {
		if len(configured) == 0 {
			return nil, errors.New(i18n.T("no target locales configured, pass --locale"))
		}
		return configured, nil
	}
	out := make([]string, 0, len(explicit))
	for _, l := range explicit {
		l = strings.TrimSpace(l)
		if err := locale.Validate(l); err != nil {
			return nil, err
		}
		out = append(out, locale.Parse(l).String())
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// locale
// ---------------------------------------------------------------------------

func newLocaleCmd() *cobra.Command {
	var describe bool

	cmd := &cobra.Command{
		Use:   "locale PATH",
		Short: "Print the locale recovered from a path",
		Long: `Match a path against its mapping template and print the locale it
encodes. Source files report the source locale.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject()
			if err != nil {
				return err
			}
			res := p.Classify(args[0])
			var spec string
			switch res.Kind {
			case mapping.Unhandled:
				return fmt.Errorf(i18n.T("%s is not handled by any mapping"), args[0])
			case mapping.Source:
				spec = p.Classifier().SourceLocale().String()
			default:
				spec = res.Locale.String()
			}

			if describe {
				spec = langLabel(spec)
			}
			fmt.Fprintln(cmd.OutOrStdout(), spec)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&describe, "describe", "d", false, "Show the language name and flag")
	return cmd
}

// ---------------------------------------------------------------------------
// schema
// ---------------------------------------------------------------------------

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "List or print registered schema references",
	}
	cmd.AddCommand(newSchemaListCmd(), newSchemaGetCmd())
	return cmd
}

func newSchemaListCmd() *cobra.Command {
	var documents bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every registered reference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject()
			if err != nil {
				return err
			}
			items := p.Registry().URIs()
			if documents {
				items = p.Registry().Documents()
			}
			out := cmd.OutOrStdout()
			for _, s := range items {
				fmt.Fprintln(out, s)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&documents, "documents", false, "List loaded documents instead of references")
	return cmd
}

func newSchemaGetCmd() *cobra.Command {
	var sel string

	cmd := &cobra.Command{
		Use:   "get URI",
		Short: "Print the schema node registered under a reference",
		Long: `Print the object registered under URI as indented JSON. --select
applies a JSONPath expression to it first, printing every match.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject()
			if err != nil {
				return err
			}
			n, ok := p.Registry().Get(args[0])
			if !ok {
				return fmt.Errorf(i18n.T("no schema registered under %q"), args[0])
			}

			nodes := []schema.Node{n}
			if sel != "" {
				if nodes, err = schema.Select(n, sel); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			for _, n := range nodes {
				fmt.Fprintln(out, schema.Marshal(n))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&sel, "select", "s", "", "JSONPath expression applied to the node")
	return cmd
}

// ---------------------------------------------------------------------------
// scan
// ---------------------------------------------------------------------------

func newScanCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Walk the project and group files by locale",
		Long: `Walk --root and print every source file, then every localized file
grouped by locale. Hidden directories are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			res, err := p.Scan(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				fmt.Fprintln(out, scanJSON(res))
				return nil
			}
			printScan(out, res)
			if len(res.Sources) == 0 {
				logWarning(i18n.T("No localizable source files found under %s"), p.Root())
			} else {
				logSuccess(i18n.N("%d source file, %d locales", "%d source files, %d locales", len(res.Sources)),
					len(res.Sources), len(res.Locales))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func printScan(w io.Writer, res *project.ScanResult) {
	for _, s := range res.Sources {
		fmt.Fprintf(w, "source\t%s\n", s)
	}
	for _, l := range res.Locales {
		for _, f := range res.Localized[l] {
			fmt.Fprintf(w, "%s\t%s\n", l, f)
		}
	}
}

func scanJSON(res *project.ScanResult) string {
	localized := make(map[string]any, len(res.Localized))
	for l, files := range res.Localized {
		sorted := append([]string(nil), files...)
		sort.Strings(sorted)
		localized[l] = toAny(sorted)
	}
	return oj.JSON(map[string]any{
		"sources":   toAny(res.Sources),
		"localized": localized,
		"locales":   toAny(res.Locales),
	}, &oj.Options{Indent: 2, Sort: true})
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = filepath.ToSlash(s)
	}
	return out
}
