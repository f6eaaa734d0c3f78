package site

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-magic-lair/internal/model"
	"go-magic-lair/internal/view"
)

// WriteTerminal 以终端表格输出一个已推导的视图；颜色由 w 的终端能力决定。
func WriteTerminal(w io.Writer, title string, v view.View) error {
	r := lipgloss.NewRenderer(w)
	var (
		head  = r.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
		badge = r.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
		dim   = r.NewStyle().Foreground(lipgloss.Color("8"))
	)
	nameW := 0
	for _, c := range v.Cards {
		nameW = max(nameW, lipgloss.Width(c.Name))
	}
	name := r.NewStyle().Width(nameW + 2)

	var b strings.Builder
	b.WriteString(head.Render(title))
	if v.Latest != "" {
		b.WriteString(dim.Render(fmt.Sprintf("  (latest %s)", v.Latest)))
	}
	b.WriteByte('\n')
	if v.Empty() {
		b.WriteString("No decks found\n")
	}
	for _, c := range v.Cards {
		b.WriteString("  ")
		b.WriteString(name.Render(c.Name))
		b.WriteString(dim.Render(displayDate(c.LastUpdated)))
		if c.IsNew {
			b.WriteString("  " + badge.Render("NEW"))
		}
		b.WriteByte('\n')
	}
	if !v.Changes.Empty() {
		b.WriteString("\n" + head.Render("Last Changes") + "\n")
		writeGroup(&b, "Now Free", v.Changes.Free)
		writeGroup(&b, "Now Banned", v.Changes.Banned)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeGroup(b *strings.Builder, label string, decks []model.Deck) {
	if len(decks) == 0 {
		return
	}
	names := make([]string, len(decks))
	for i, d := range decks {
		names[i] = d.Name
	}
	fmt.Fprintf(b, "  %s: %s\n", label, strings.Join(names, ", "))
}
