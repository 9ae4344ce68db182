package lockman

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

type (
	// SnapshotEntry groups the locks one strategy holds within one
	// boundary.
	SnapshotEntry struct {
		Strategy StrategyId
		Locks    []LockInfo
	}

	// Snapshot is a debug-time view of every lock currently held, grouped
	// by boundary (spec §4.I).
	Snapshot map[BoundaryId][]SnapshotEntry
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(`205`))
	tableCellStyle   = lipgloss.NewStyle().PaddingRight(2)
)

// FormatTable renders s as a table with columns
// {Strategy, Boundary, ActionId/UniqueId, AdditionalInfo}, in the style of
// the engine's debug pretty-printer (spec §4.I).
func FormatTable(s Snapshot) string {
	type row struct {
		strategy, boundary, ids, extra string
	}

	var rows []row
	boundaries := make([]string, 0, len(s))
	byKey := make(map[string]BoundaryId, len(s))
	for b := range s {
		key := fmt.Sprint(b)
		boundaries = append(boundaries, key)
		byKey[key] = b
	}
	slices.Sort(boundaries)

	for _, key := range boundaries {
		b := byKey[key]
		for _, entry := range s[b] {
			for _, info := range entry.Locks {
				rows = append(rows, row{
					strategy: string(entry.Strategy),
					boundary: key,
					ids:      fmt.Sprintf(`%s / %s`, info.ActionId(), info.UniqueId()),
					extra:    info.DebugDescription(),
				})
			}
		}
	}

	if len(rows) == 0 {
		return tableHeaderStyle.Render(`(no locks held)`)
	}

	widths := [4]int{len(`Strategy`), len(`Boundary`), len(`ActionId/UniqueId`), len(`AdditionalInfo`)}
	for _, r := range rows {
		widths[0] = maxOf(widths[0], len(r.strategy))
		widths[1] = maxOf(widths[1], len(r.boundary))
		widths[2] = maxOf(widths[2], len(r.ids))
		widths[3] = maxOf(widths[3], len(r.extra))
	}

	var b strings.Builder
	writeRow := func(cols [4]string, style lipgloss.Style) {
		for i, col := range cols {
			b.WriteString(style.Width(widths[i]).Render(tableCellStyle.Render(col)))
		}
		b.WriteByte('\n')
	}

	writeRow([4]string{`Strategy`, `Boundary`, `ActionId/UniqueId`, `AdditionalInfo`}, tableHeaderStyle)
	for _, r := range rows {
		writeRow([4]string{r.strategy, r.boundary, r.ids, r.extra}, lipgloss.NewStyle())
	}

	return strings.TrimRight(b.String(), "\n")
}

func maxOf[E constraints.Ordered](a, b E) E {
	if a > b {
		return a
	}
	return b
}
