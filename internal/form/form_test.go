package form

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"mercadito/internal/core/apperror"
	"mercadito/internal/domain"
	"mercadito/internal/schema"
)

// stubRepo answers GetByID from a fixed record map and ListOptions from
// a per-parent option map ("" keys the unscoped list).
type stubRepo struct {
	records map[string]domain.Record
	options map[string][]domain.Option

	created []domain.Payload
	updated map[string]domain.Payload
}

func (s *stubRepo) FetchVisible(ctx context.Context) ([]domain.Record, error) { return nil, nil }

func (s *stubRepo) FetchByParent(ctx context.Context, parentID string) ([]domain.Record, error) {
	return nil, nil
}

func (s *stubRepo) GetByID(ctx context.Context, id string) (domain.Record, error) {
	if rec, ok := s.records[id]; ok {
		return rec, nil
	}
	return nil, apperror.NewNotFound("stub", id)
}

func (s *stubRepo) Create(ctx context.Context, payload domain.Payload) error {
	s.created = append(s.created, payload)
	return nil
}

func (s *stubRepo) Update(ctx context.Context, id string, payload domain.Payload) error {
	if s.updated == nil {
		s.updated = make(map[string]domain.Payload)
	}
	s.updated[id] = payload
	return nil
}

func (s *stubRepo) SetVisibility(ctx context.Context, id string, targetVisible bool) (bool, error) {
	return targetVisible, nil
}

func (s *stubRepo) ListOptions(ctx context.Context, filterParentID string) ([]domain.Option, error) {
	return s.options[filterParentID], nil
}

type stubRepos map[string]*stubRepo

func (s stubRepos) Repo(entity string) (domain.Repository, bool) {
	r, ok := s[entity]
	return r, ok
}

func mustEntity(t *testing.T, name string) *schema.Entity {
	t.Helper()
	def, ok := schema.Default().Get(name)
	if !ok {
		t.Fatalf("entity %s not registered", name)
	}
	return def
}

func geoRepos() stubRepos {
	return stubRepos{
		"zona": {
			records: map[string]domain.Record{
				"z1": {"id_zona": "z1", "nombre": "Calacoto", "id_localidad": "l1", "visible": true},
			},
		},
		"localidad": {
			records: map[string]domain.Record{
				"l1": {"id_localidad": "l1", "nombre": "Zona Sur", "id_municipio": "m1"},
			},
			options: map[string][]domain.Option{
				"m1": {{Value: "l1", Label: "Zona Sur"}, {Value: "l2", Label: "Centro"}},
				"m2": {{Value: "l9", Label: "Ciudad Satélite"}},
			},
		},
		"municipio": {
			records: map[string]domain.Record{
				"m1": {"id_municipio": "m1", "nombre": "Nuestra Señora de La Paz", "id_departamento": "d1"},
			},
			options: map[string][]domain.Option{
				"d1": {{Value: "m1", Label: "Nuestra Señora de La Paz"}, {Value: "m2", Label: "El Alto"}},
				"d2": {{Value: "m9", Label: "Cercado"}},
			},
		},
		"departamento": {
			options: map[string][]domain.Option{
				"": {{Value: "d1", Label: "La Paz"}, {Value: "d2", Label: "Cochabamba"}},
			},
		},
	}
}

func TestOpen_EditResolvesGeoChainTopDown(t *testing.T) {
	repos := geoRepos()
	s := NewSession(mustEntity(t, "zona"), repos, nil)

	if err := s.Open(context.Background(), "z1"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if s.Mode() != ModeEdit {
		t.Fatalf("mode = %s, want edit", s.Mode())
	}
	if got := s.Value("id_localidad"); got != "l1" {
		t.Errorf("id_localidad = %q, want l1", got)
	}
	if got := s.Value("id_municipio"); got != "m1" {
		t.Errorf("id_municipio = %q, want m1 (recovered from localidad)", got)
	}
	if got := s.Value("id_departamento"); got != "d1" {
		t.Errorf("id_departamento = %q, want d1 (recovered from municipio)", got)
	}

	muni := s.Select("id_municipio")
	if muni == nil || !muni.Enabled || len(muni.Options) != 2 {
		t.Fatalf("municipio select not scoped to d1: %+v", muni)
	}
	loc := s.Select("id_localidad")
	if loc == nil || !loc.Enabled || len(loc.Options) != 2 {
		t.Fatalf("localidad select not scoped to m1: %+v", loc)
	}
}

func TestOpen_CreateDisablesDependentSelects(t *testing.T) {
	s := NewSession(mustEntity(t, "zona"), geoRepos(), nil)
	if err := s.Open(context.Background(), ""); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if s.Mode() != ModeCreate {
		t.Fatalf("mode = %s, want create", s.Mode())
	}
	dep := s.Select("id_departamento")
	if dep == nil || !dep.Enabled || len(dep.Options) != 2 {
		t.Fatalf("departamento select must load unscoped: %+v", dep)
	}
	for _, name := range []string{"id_municipio", "id_localidad"} {
		sel := s.Select(name)
		if sel == nil || sel.Enabled || len(sel.Options) != 0 {
			t.Errorf("%s must start disabled and empty: %+v", name, sel)
		}
	}
}

func TestSetValue_CascadeClearsInvalidatedDescendants(t *testing.T) {
	ctx := context.Background()
	s := NewSession(mustEntity(t, "zona"), geoRepos(), nil)
	if err := s.Open(ctx, ""); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := s.SetValue(ctx, "id_departamento", "d1"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := s.SetValue(ctx, "id_municipio", "m1"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := s.SetValue(ctx, "id_localidad", "l1"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	// Switching departamento invalidates the whole chain below it.
	if err := s.SetValue(ctx, "id_departamento", "d2"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if got := s.Value("id_municipio"); got != "" {
		t.Errorf("id_municipio must clear, got %q", got)
	}
	if got := s.Value("id_localidad"); got != "" {
		t.Errorf("id_localidad must clear, got %q", got)
	}
	if sel := s.Select("id_localidad"); sel == nil || sel.Enabled {
		t.Errorf("id_localidad select must disable, got %+v", sel)
	}
	if sel := s.Select("id_municipio"); sel == nil || len(sel.Options) != 1 {
		t.Errorf("id_municipio must rescope to d2, got %+v", sel)
	}
}

func TestSetValue_KeepsSelectionStillInScope(t *testing.T) {
	ctx := context.Background()
	repos := geoRepos()
	// A second departamento that still contains m1.
	repos["municipio"].options["d3"] = []domain.Option{{Value: "m1", Label: "Nuestra Señora de La Paz"}}

	s := NewSession(mustEntity(t, "zona"), repos, nil)
	if err := s.Open(ctx, ""); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	_ = s.SetValue(ctx, "id_departamento", "d1")
	_ = s.SetValue(ctx, "id_municipio", "m1")

	if err := s.SetValue(ctx, "id_departamento", "d3"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if got := s.Value("id_municipio"); got != "m1" {
		t.Errorf("selection surviving the rescope must be kept, got %q", got)
	}
}

func TestSetValue_RejectsDisabledAndUnknownFields(t *testing.T) {
	ctx := context.Background()
	s := NewSession(mustEntity(t, "orden_detalle"), stubRepos{}, nil)

	if err := s.SetValue(ctx, "precio_unitario", "99.99"); err == nil {
		t.Error("disabled field must reject writes")
	}
	if err := s.SetValue(ctx, "no_existe", "x"); err == nil {
		t.Error("unknown field must reject writes")
	}
}

func TestSubmit_CreateUsuario(t *testing.T) {
	ctx := context.Background()
	repo := &stubRepo{}
	s := NewSession(mustEntity(t, "usuario"), stubRepos{"usuario": repo}, nil)
	if err := s.Open(ctx, ""); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	s.ApplyValues(map[string]string{
		"ci":                 "1234567",
		"primer_nombre":      "María",
		"segundo_nombre":     "",
		"apellido_paterno":   "Flores",
		"apellido_materno":   "Quispe",
		"celular":            "71234567",
		"correo_electronico": "maria@example.com",
		"contrasena":         "Secreta1!",
	})
	if err := s.Submit(ctx, nil); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if len(repo.created) != 1 {
		t.Fatalf("created %d rows, want 1", len(repo.created))
	}
	payload := repo.created[0]

	if id, _ := payload["id"].(string); id == "" {
		t.Error("usuario create must assign a generated id")
	}
	if visible, _ := payload["visible"].(bool); !visible {
		t.Error("created rows start visible")
	}
	hash, _ := payload["contrasena"].(string)
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("Secreta1!")); err != nil {
		t.Errorf("contrasena must be stored as a bcrypt hash: %v", err)
	}
	if payload["rol"] != "cliente" {
		t.Errorf("new accounts must start as cliente, got %v", payload["rol"])
	}
	if payload["segundo_nombre"] != nil {
		t.Errorf("empty optional field must persist as NULL, got %v", payload["segundo_nombre"])
	}
}

func TestSubmit_EditKeepsPasswordWhenEmpty(t *testing.T) {
	ctx := context.Background()
	repo := &stubRepo{
		records: map[string]domain.Record{
			"u1": {
				"id": "u1", "ci": "1234567", "primer_nombre": "María",
				"apellido_paterno": "Flores", "apellido_materno": "Quispe",
				"celular": "71234567", "correo_electronico": "maria@example.com",
				"rol": "vendedor", "visible": true,
			},
		},
	}
	s := NewSession(mustEntity(t, "usuario"), stubRepos{"usuario": repo}, nil)
	if err := s.Open(ctx, "u1"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	s.ApplyValues(map[string]string{"celular": "76543210", "contrasena": ""})
	if err := s.Submit(ctx, nil); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	payload, ok := repo.updated["u1"]
	if !ok {
		t.Fatal("update not issued for u1")
	}
	if _, present := payload["contrasena"]; present {
		t.Error("empty password on edit must leave the stored hash untouched")
	}
	if payload["celular"] != "76543210" {
		t.Errorf("celular = %v, want 76543210", payload["celular"])
	}
	if payload["rol"] != "vendedor" {
		t.Errorf("edit must carry the stored role, got %v", payload["rol"])
	}
	if _, present := payload["visible"]; present {
		t.Error("edit must not touch visibility")
	}
}

func TestSubmit_ProductoConvertsNumbers(t *testing.T) {
	ctx := context.Background()
	repo := &stubRepo{}
	repos := stubRepos{
		"producto":  repo,
		"categoria": {options: map[string][]domain.Option{"": {{Value: "3", Label: "Granos"}}}},
	}
	s := NewSession(mustEntity(t, "producto"), repos, nil)
	if err := s.Open(ctx, ""); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	s.ApplyValues(map[string]string{
		"nombre":       "Quinua Real",
		"descripcion":  "",
		"precio":       "19.99",
		"stock":        "40",
		"id_categoria": "3",
	})
	if err := s.Submit(ctx, nil); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	payload := repo.created[0]
	precio, ok := payload["precio"].(decimal.Decimal)
	if !ok || !precio.Equal(decimal.RequireFromString("19.99")) {
		t.Errorf("precio = %v, want decimal 19.99", payload["precio"])
	}
	if _, present := payload["file_upload"]; present {
		t.Error("file fields never reach the payload")
	}
	if _, present := payload["imagen_url"]; present {
		t.Error("empty image URL must be omitted")
	}
	if payload["descripcion"] != nil {
		t.Errorf("empty optional field must persist as NULL, got %v", payload["descripcion"])
	}

	s.ApplyValues(map[string]string{"precio": "no-numérico"})
	if err := s.Submit(ctx, nil); err == nil {
		t.Error("non-numeric price must fail")
	}
}
