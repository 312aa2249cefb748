package format

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/sambeau/caliper/pkg/caliper/unit"
)

// CatalogMarkdown renders units as Markdown, one table per unit type.
// Units whose base symbol cannot be computed are listed with "?".
func CatalogMarkdown(title string, units []*unit.Unit) string {
	groups := make(map[unit.Type][]*unit.Unit)
	for _, u := range units {
		groups[u.Type()] = append(groups[u.Type()], u)
	}
	types := make([]unit.Type, 0, len(groups))
	for t := range groups {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	for _, t := range types {
		fmt.Fprintf(&sb, "## %s\n\n", typeHeading(t))
		sb.WriteString("| Symbol | Name | Shape | Base symbol | Conversion | Bridge |\n")
		sb.WriteString("|---|---|---|---|---|---|\n")
		members := groups[t]
		sort.Slice(members, func(i, j int) bool { return members[i].Symbol() < members[j].Symbol() })
		for _, u := range members {
			base, err := u.BaseSymbol()
			if err != nil {
				base = "?"
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s |\n",
				cell(u.Symbol()), cell(u.Name()), u.Kind(), cell(base), conversionCell(u), bridgeCell(u))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// CatalogHTML renders the Markdown catalog to HTML.
func CatalogHTML(title string, units []*unit.Unit) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.Table),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	var buf bytes.Buffer
	if err := md.Convert([]byte(CatalogMarkdown(title, units)), &buf); err != nil {
		return "", fmt.Errorf("rendering catalog: %w", err)
	}
	return buf.String(), nil
}

func typeHeading(t unit.Type) string {
	words := strings.Split(strings.ToLower(string(t)), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func conversionCell(u *unit.Unit) string {
	c := u.Conversion()
	if c.Abscissa == u {
		return ""
	}
	s := fmt.Sprintf("%s %s", c.Factor, c.Abscissa.Symbol())
	if c.HasOffset() {
		s += fmt.Sprintf(" + %s", c.Offset)
	}
	return cell(s)
}

func bridgeCell(u *unit.Unit) string {
	b, ok := u.Bridge()
	if !ok {
		return ""
	}
	return cell(fmt.Sprintf("%s %s", b.Factor, b.Abscissa.Symbol()))
}

// cell escapes characters that would break a Markdown table cell.
func cell(s string) string {
	return strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`).Replace(s)
}
