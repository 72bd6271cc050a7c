package staff

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestNewRoster_RejectsDuplicateIDs(t *testing.T) {
	_, err := NewRoster([]Doctor{
		{Employee: Employee{ID: 1, Name: "A"}},
		{Employee: Employee{ID: 1, Name: "B"}},
	}, nil)
	if err == nil {
		t.Fatal("expected error for duplicate doctor id")
	}
}

func TestNewRoster_RejectsNonPositiveID(t *testing.T) {
	if _, err := NewRoster([]Doctor{{Employee: Employee{Name: "A"}}}, nil); err == nil {
		t.Fatal("expected error for zero id")
	}
}

func TestRoster_FindDoctor(t *testing.T) {
	r, err := LoadRoster("")
	if err != nil {
		t.Fatalf("LoadRoster: %v", err)
	}
	d, ok := r.FindDoctor(2)
	if !ok {
		t.Fatal("expected doctor 2 in default seed")
	}
	if d.LicenseID != "CRM/PR 54321" {
		t.Errorf("unexpected license %q", d.LicenseID)
	}
	if _, ok := r.FindDoctor(99); ok {
		t.Error("expected doctor 99 to be absent")
	}
	if got := d.String(); got != "Dra. Grey (Cardiologia)" {
		t.Errorf("String() = %q", got)
	}
}

func TestRoster_ReturnsCopies(t *testing.T) {
	r, _ := LoadRoster("")
	list := r.Doctors()
	list[0].Name = "mutated"
	d, _ := r.FindDoctor(list[0].ID)
	if d.Name == "mutated" {
		t.Error("roster mutated through Doctors() slice")
	}
}

func TestRoster_Members(t *testing.T) {
	r, _ := LoadRoster("")
	members := r.Members()
	if len(members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(members))
	}
	if members[2].Record().Name != "Ana Souza" {
		t.Errorf("expected secretary last, got %q", members[2].Record().Name)
	}
}

func TestLoadRoster_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roster.yaml")
	content := `doctors:
  - id: 7
    name: Dr. Strange
    national_id: "000.000.000-07"
    salary: 21000
    license_id: CRM/SP 777
    specialty: Neurologia
secretaries:
  - id: 70
    name: Wong
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r, err := LoadRoster(path)
	if err != nil {
		t.Fatalf("LoadRoster: %v", err)
	}
	d, ok := r.FindDoctor(7)
	if !ok {
		t.Fatal("expected doctor 7")
	}
	if d.Name != "Dr. Strange" || d.Specialty != "Neurologia" || d.LicenseID != "CRM/SP 777" {
		t.Errorf("unexpected doctor %+v", d)
	}
	if len(r.Secretaries()) != 1 {
		t.Errorf("expected 1 secretary, got %d", len(r.Secretaries()))
	}
}

func TestLoadRoster_MissingFile(t *testing.T) {
	if _, err := LoadRoster(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestHandler_GetDoctor(t *testing.T) {
	r, _ := LoadRoster("")
	h := NewHandler(r)
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.GetDoctor(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("50")
	err := h.GetDoctor(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}
