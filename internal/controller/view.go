package controller

import (
	"fmt"

	"mercadito/internal/domain"
	"mercadito/internal/schema"
)

// PageSize is the fixed number of rows per table page.
const PageSize = 10

// maxPageButtons is the width of the numbered-page window in the pager.
const maxPageButtons = 5

// Cell is one rendered table cell.
type Cell struct {
	Header string `json:"header"`
	Value  string `json:"value"`
	// Image marks the value as an image URL rather than text.
	Image bool `json:"image,omitempty"`
}

// Row is one rendered table row with the actions it supports.
type Row struct {
	ID    string `json:"id"`
	Cells []Cell `json:"cells"`
	// CanRestore is set for hidden rows of entities that allow restore.
	CanRestore bool `json:"can_restore,omitempty"`
}

// Pager is the pagination strip: a window of up to five numbered
// buttons centered on the current page, plus first/prev/next/last.
type Pager struct {
	Current    int   `json:"current"`
	TotalPages int   `json:"total_pages"`
	Pages      []int `json:"pages"`
	// Label is the "Página X de Y" info string.
	Label string `json:"label"`

	FirstEnabled bool `json:"first_enabled"`
	PrevEnabled  bool `json:"prev_enabled"`
	NextEnabled  bool `json:"next_enabled"`
	LastEnabled  bool `json:"last_enabled"`
}

// TableView is the complete render state of one table page. It is a
// pure projection: building it never mutates controller state.
type TableView struct {
	Entity  string   `json:"entity"`
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
	Pager   Pager    `json:"pager"`

	// TotalRows counts all rows matching the current filter.
	TotalRows int `json:"total_rows"`
	// Empty is set when the filter matches nothing; EmptyMessage then
	// carries the user-facing text instead of a zero-row table.
	Empty        bool   `json:"empty"`
	EmptyMessage string `json:"empty_message,omitempty"`

	AllowCreate bool `json:"allow_create"`
}

// buildPager computes the numbered-button window. The window slides to
// keep the current page centered until it hits either end.
func buildPager(current, totalPages int) Pager {
	p := Pager{
		Current:    current,
		TotalPages: totalPages,
		Label:      fmt.Sprintf("Página %d de %d", current, totalPages),
	}
	if totalPages < 1 {
		return p
	}

	start := current - maxPageButtons/2
	if start < 1 {
		start = 1
	}
	end := start + maxPageButtons - 1
	if end > totalPages {
		end = totalPages
		start = end - maxPageButtons + 1
		if start < 1 {
			start = 1
		}
	}
	for i := start; i <= end; i++ {
		p.Pages = append(p.Pages, i)
	}

	p.FirstEnabled = current > 1
	p.PrevEnabled = current > 1
	p.NextEnabled = current < totalPages
	p.LastEnabled = current < totalPages
	return p
}

// formatCell renders one record value according to the column format.
func formatCell(rec domain.Record, col schema.Column) string {
	switch col.Format {
	case schema.FormatMoney:
		return fmt.Sprintf("Bs. %s", rec.GetDecimal(col.Path).StringFixed(2))
	case schema.FormatTruncate:
		return truncate(rec.GetString(col.Path), col.TruncateAt)
	default:
		return rec.GetString(col.Path)
	}
}

// truncate cuts s at limit runes and appends an ellipsis. Short values
// pass through untouched.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
