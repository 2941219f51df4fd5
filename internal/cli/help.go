package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

// SourceDirPlaceholder stands in for the source directory when help shows
// defaults that are resolved relative to it.
const SourceDirPlaceholder = "<source-dir>"

// FlagGroups are the help sections, in display order. Flag fields select
// one with a `group:"<key>"` tag; untagged flags are listed first.
var FlagGroups = []kong.Group{
	{Key: "metadata", Title: "Metadata", Description: "Where the album and track tags come from."},
	{Key: "capture", Title: "Capture", Description: "Dump the tags already in the files before they are replaced."},
	{Key: "output", Title: "Output", Description: "Staging, loudness analysis and normalization."},
	{Key: "logging", Title: "Logging"},
}

var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A40000")).
			MarginBottom(1)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Italic(true)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFA500"))

	helpGroupDescStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#888888"))

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AA00")).
			Bold(true)

	helpArgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AAAA")).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#888888")).
				Italic(true)
)

// StyledHelpPrinter returns a kong help printer that lists flags by group.
// resolved maps flag names to defaults that depend on the source
// directory; they are shown where a flag has no static default.
func StyledHelpPrinter(resolved map[string]string) kong.HelpPrinter {
	return func(_ kong.HelpOptions, ctx *kong.Context) error {
		h := &helpWriter{resolved: resolved}

		h.title(ctx.Model.Name, ctx.Model.Help)
		h.section("Usage")
		h.line("  %s [flags] %s", ctx.Model.Name, SourceDirPlaceholder)

		if args := ctx.Model.Node.Positional; len(args) > 0 {
			h.section("Arguments")
			for _, arg := range args {
				h.entry(helpArgStyle.Render(arg.Summary()), arg.Help, "")
			}
		}

		sections := groupFlags(ctx.Model.Node.Flags)
		h.section("Flags")
		h.entry(helpFlagStyle.Render("-h, --help"), "Show context-sensitive help.", "")
		for _, f := range sections[""] {
			h.flag(f)
		}
		for _, g := range FlagGroups {
			flags := sections[g.Key]
			if len(flags) == 0 {
				continue
			}
			h.section(g.Title)
			if g.Description != "" {
				h.line("  %s", helpGroupDescStyle.Render(g.Description))
			}
			for _, f := range flags {
				h.flag(f)
			}
		}

		h.sb.WriteString("\n")
		_, err := fmt.Fprint(ctx.Stdout, h.sb.String())
		return err
	}
}

// groupFlags buckets visible flags by group key, keeping declaration order.
// Groups missing from FlagGroups fall back to the ungrouped section.
func groupFlags(flags []*kong.Flag) map[string][]*kong.Flag {
	known := make(map[string]bool, len(FlagGroups))
	for _, g := range FlagGroups {
		known[g.Key] = true
	}

	out := make(map[string][]*kong.Flag)
	for _, f := range flags {
		if f.Hidden || f.Name == "help" {
			continue
		}
		key := ""
		if f.Group != nil && known[f.Group.Key] {
			key = f.Group.Key
		}
		out[key] = append(out[key], f)
	}
	return out
}

type helpWriter struct {
	sb       strings.Builder
	resolved map[string]string
}

func (h *helpWriter) title(name, desc string) {
	h.sb.WriteString(helpTitleStyle.Render(name + " 💿"))
	h.sb.WriteString("\n")
	if desc != "" {
		h.sb.WriteString(helpDescStyle.Render(desc))
		h.sb.WriteString("\n")
	}
}

func (h *helpWriter) section(title string) {
	h.sb.WriteString("\n")
	h.sb.WriteString(helpSectionStyle.Render(title + ":"))
	h.sb.WriteString("\n")
}

func (h *helpWriter) line(format string, a ...any) {
	fmt.Fprintf(&h.sb, format, a...)
	h.sb.WriteString("\n")
}

func (h *helpWriter) entry(name, help, annotations string) {
	h.sb.WriteString("  ")
	h.sb.WriteString(name)
	if help != "" {
		h.sb.WriteString("  ")
		h.sb.WriteString(help)
	}
	h.sb.WriteString(annotations)
	h.sb.WriteString("\n")
}

func (h *helpWriter) flag(f *kong.Flag) {
	h.entry(helpFlagStyle.Render(flagSyntax(f)), f.Help, h.annotations(f))
}

// annotations renders the env var and the default of f, preferring a
// static default over one resolved from the source directory.
func (h *helpWriter) annotations(f *kong.Flag) string {
	var sb strings.Builder
	if len(f.Envs) > 0 {
		sb.WriteString(" ")
		sb.WriteString(helpDefaultStyle.Render("($" + strings.Join(f.Envs, ", $") + ")"))
	}

	def := f.Default
	if def == "" {
		def = h.resolved[f.Name]
	}
	if def != "" {
		sb.WriteString(" ")
		sb.WriteString(helpDefaultStyle.Render("(default: " + def + ")"))
	}
	if len(f.Enum) > 0 && !f.IsBool() {
		sb.WriteString(" ")
		sb.WriteString(helpDefaultStyle.Render("[" + strings.ReplaceAll(f.Enum, ",", "|") + "]"))
	}
	return sb.String()
}

func flagSyntax(f *kong.Flag) string {
	s := "--" + f.Name
	if f.Short != 0 {
		s = fmt.Sprintf("-%c, %s", f.Short, s)
	}
	if !f.IsBool() {
		s += "=" + placeholder(f)
	}
	return s
}

func placeholder(f *kong.Flag) string {
	switch {
	case f.PlaceHolder != "":
		return strings.ToUpper(f.PlaceHolder)
	case f.Tag != nil && f.Tag.Type == "path":
		return "PATH"
	default:
		return strings.ToUpper(f.Name)
	}
}
