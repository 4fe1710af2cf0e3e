package controller

import (
	"testing"

	"mercadito/internal/domain"
	"mercadito/internal/schema"
)

func TestBuildPager_Window(t *testing.T) {
	tests := []struct {
		name       string
		current    int
		totalPages int
		wantPages  []int
		wantFirst  bool
		wantLast   bool
	}{
		{"single page", 1, 1, []int{1}, false, false},
		{"start of short range", 1, 3, []int{1, 2, 3}, false, true},
		{"centered window", 5, 9, []int{3, 4, 5, 6, 7}, true, true},
		{"window clamps at start", 2, 9, []int{1, 2, 3, 4, 5}, true, true},
		{"window clamps at end", 9, 9, []int{5, 6, 7, 8, 9}, true, false},
		{"no pages", 1, 0, nil, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := buildPager(tt.current, tt.totalPages)

			if len(p.Pages) != len(tt.wantPages) {
				t.Fatalf("pages mismatch\nwant: %v\ngot:  %v", tt.wantPages, p.Pages)
			}
			for i := range tt.wantPages {
				if p.Pages[i] != tt.wantPages[i] {
					t.Fatalf("pages mismatch\nwant: %v\ngot:  %v", tt.wantPages, p.Pages)
				}
			}
			if p.FirstEnabled != tt.wantFirst || p.PrevEnabled != tt.wantFirst {
				t.Errorf("first/prev enabled = %v/%v, want %v", p.FirstEnabled, p.PrevEnabled, tt.wantFirst)
			}
			if p.NextEnabled != tt.wantLast || p.LastEnabled != tt.wantLast {
				t.Errorf("next/last enabled = %v/%v, want %v", p.NextEnabled, p.LastEnabled, tt.wantLast)
			}
		})
	}
}

func TestFormatCell_Money(t *testing.T) {
	rec := domain.Record{"precio": "12.5"}
	got := formatCell(rec, schema.Column{Path: "precio", Format: schema.FormatMoney})
	if got != "Bs. 12.50" {
		t.Errorf("want Bs. 12.50, got %q", got)
	}
}

func TestFormatCell_Truncate(t *testing.T) {
	long := "Miel de abeja pura de los valles de Chuquisaca, cosecha artesanal"
	rec := domain.Record{"descripcion": long}
	got := formatCell(rec, schema.Column{Path: "descripcion", Format: schema.FormatTruncate, TruncateAt: 50})

	if len([]rune(got)) != 53 {
		t.Errorf("truncated length = %d runes, want 50 + ellipsis", len([]rune(got)))
	}

	short := "Miel de abeja"
	rec = domain.Record{"descripcion": short}
	got = formatCell(rec, schema.Column{Path: "descripcion", Format: schema.FormatTruncate, TruncateAt: 50})
	if got != short {
		t.Errorf("short value must pass through, got %q", got)
	}
}
