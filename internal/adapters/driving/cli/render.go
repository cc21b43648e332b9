package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
)

const botName = "나비얌"

// renderer formats dialogue output, with colour only on a terminal.
type renderer struct {
	styled bool
	bot    lipgloss.Style
	user   lipgloss.Style
	shop   lipgloss.Style
	dim    lipgloss.Style
}

func newRenderer(w io.Writer) renderer {
	return renderer{
		styled: isTerminal(w),
		bot:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF8C42")),
		user:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4FA3FF")),
		shop:   lipgloss.NewStyle().Bold(true),
		dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (r renderer) paint(style lipgloss.Style, text string) string {
	if !r.styled {
		return text
	}
	return style.Render(text)
}

func (r renderer) prompt() string {
	return r.paint(r.user, "나") + "> "
}

// turn renders the bot reply followed by its recommendations.
func (r renderer) turn(result domain.TurnResult) string {
	var b strings.Builder
	b.WriteString(r.paint(r.bot, botName+":"))
	b.WriteString(" ")
	b.WriteString(result.ResponseText)
	b.WriteString("\n")
	b.WriteString(r.results(result.Recommendations))
	return b.String()
}

// results renders shops as a numbered list with up to three menus each.
func (r renderer) results(results []domain.SearchResult) string {
	var b strings.Builder
	for i := range results {
		res := &results[i]
		fmt.Fprintf(&b, "  [%d] %s", i+1, r.paint(r.shop, res.ShopName))
		if res.Category != "" {
			fmt.Fprintf(&b, " (%s)", res.Category)
		}
		b.WriteString(r.paint(r.dim, fmt.Sprintf(" %.2f", res.Score)))
		b.WriteString("\n")

		menus := res.Menus
		if len(res.AffordableMenus) > 0 {
			menus = res.AffordableMenus
		}
		for _, m := range menus[:min(len(menus), 3)] {
			fmt.Fprintf(&b, "      - %s %s\n", m.Name, menuPrice(m))
		}
	}
	return b.String()
}

// unpricedLabel stands in for the price of a menu listed without one.
const unpricedLabel = "가격 미정"

func menuPrice(m domain.Menu) string {
	if m.Unpriced {
		return unpricedLabel
	}
	return formatWon(m.Price)
}

// formatWon renders a price with thousands separators, e.g. "15,000원".
func formatWon(amount int) string {
	digits := strconv.Itoa(amount)
	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteString("원")
	return b.String()
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
