package schema

import (
	"strings"
	"testing"
)

func TestRegister_RejectsEditableIDField(t *testing.T) {
	r := NewRegistry()
	err := r.Register(&Entity{
		Name:    "broken",
		Table:   "broken",
		IDField: "id",
		FormFields: []Field{
			{Name: "id", Kind: KindText},
		},
	})
	if err == nil {
		t.Fatal("expected error for editable id field")
	}
}

func TestRegister_AllowsHiddenOrDisabledID(t *testing.T) {
	r := NewRegistry()
	err := r.Register(&Entity{
		Name:    "ok",
		Table:   "ok",
		IDField: "id",
		FormFields: []Field{
			{Name: "id", Kind: KindHidden, Disabled: true},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegister_RejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	def := &Entity{Name: "dup", Table: "dup", IDField: "id"}
	if err := r.Register(def); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if err := r.Register(def); err == nil {
		t.Fatal("expected error for duplicate entity")
	}
}

func TestRegister_RejectsPathAndExpr(t *testing.T) {
	r := NewRegistry()
	err := r.Register(&Entity{
		Name:    "both",
		Table:   "both",
		IDField: "id",
		Columns: []Column{
			{Header: "X", Path: "a", Expr: `str(row.a)`},
		},
	})
	if err == nil {
		t.Fatal("expected error for column with both Path and Expr")
	}
}

func TestDefault_RegistersAllEntities(t *testing.T) {
	r := Default()

	want := []string{
		"producto", "categoria", "usuario", "direccion", "orden",
		"orden_detalle", "departamento", "municipio", "localidad", "zona",
	}
	for _, name := range want {
		if _, ok := r.Get(name); !ok {
			t.Errorf("entity %s not registered", name)
		}
	}
	if got := len(r.List()); got != len(want) {
		t.Errorf("registered %d entities, want %d", got, len(want))
	}
}

func TestEvalColumn_FullName(t *testing.T) {
	r := Default()

	tests := []struct {
		name string
		row  map[string]any
		want string
	}{
		{
			name: "both names",
			row:  map[string]any{"primer_nombre": "María", "segundo_nombre": "Elena"},
			want: "María Elena",
		},
		{
			name: "null second name",
			row:  map[string]any{"primer_nombre": "María", "segundo_nombre": nil},
			want: "María",
		},
		{
			name: "empty second name",
			row:  map[string]any{"primer_nombre": "María", "segundo_nombre": ""},
			want: "María",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.EvalColumn("usuario", "Nombre Completo", tt.row)
			if err != nil {
				t.Fatalf("EvalColumn failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestEvalColumn_ComposedAddress(t *testing.T) {
	r := Default()

	row := map[string]any{
		"direccion": map[string]any{
			"calle_avenida":        "Av. Ballivián",
			"numero_casa_edificio": "1234",
			"zona": map[string]any{
				"nombre": "Calacoto",
				"localidad": map[string]any{
					"nombre": "Zona Sur",
					"municipio": map[string]any{
						"nombre": "Nuestra Señora de La Paz",
						"departamento": map[string]any{
							"nombre": "La Paz",
						},
					},
				},
			},
		},
	}

	got, err := r.EvalColumn("orden", "Dirección Completa", row)
	if err != nil {
		t.Fatalf("EvalColumn failed: %v", err)
	}
	want := "Av. Ballivián Nº 1234, Calacoto, Zona Sur, Nuestra Señora de La Paz (La Paz)"
	if got != want {
		t.Errorf("address mismatch\nwant: %s\ngot:  %s", want, got)
	}
}

func TestEvalColumn_NoExpression(t *testing.T) {
	r := Default()
	got, err := r.EvalColumn("producto", "Nombre de Producto", map[string]any{"nombre": "x"})
	if err != nil {
		t.Fatalf("EvalColumn failed: %v", err)
	}
	if got != "" {
		t.Errorf("want empty for path column, got %q", got)
	}
}

func TestCascadeChildren_ZonaChain(t *testing.T) {
	r := Default()
	zona, _ := r.Get("zona")

	children := zona.CascadeChildren("id_departamento")
	if len(children) != 1 || children[0].Name != "id_municipio" {
		t.Fatalf("unexpected children of id_departamento: %+v", children)
	}
	children = zona.CascadeChildren("id_municipio")
	if len(children) != 1 || children[0].Name != "id_localidad" {
		t.Fatalf("unexpected children of id_municipio: %+v", children)
	}
	if got := zona.CascadeChildren("id_localidad"); len(got) != 0 {
		t.Fatalf("id_localidad should have no dependents, got %+v", got)
	}
}

func TestDefault_CategoriaHidesVisibleColumn(t *testing.T) {
	r := Default()
	categoria, _ := r.Get("categoria")
	for _, col := range categoria.Columns {
		if strings.EqualFold(col.Path, "visible") {
			t.Error("categoria must not expose the visible column")
		}
	}
}
