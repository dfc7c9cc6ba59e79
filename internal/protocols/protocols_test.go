package protocols

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestSearchByTerm(t *testing.T) {
	got := Search("sepse", "")
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	if got[0].ID != "sepsis-2021" {
		t.Fatalf("unexpected result %q", got[0].ID)
	}
}

func TestSearchMatchesDescription(t *testing.T) {
	got := Search("anafilática", "")
	if len(got) != 1 || got[0].ID != "anafilaxia" {
		t.Fatalf("unexpected results %+v", got)
	}
}

func TestSearchByCategory(t *testing.T) {
	for _, p := range Search("", "Cardiologia") {
		if p.Category != "Cardiologia" {
			t.Fatalf("category filter leaked %q", p.ID)
		}
	}
	if len(Search("", "Cardiologia")) == 0 {
		t.Fatal("expected cardiology protocols")
	}
}

func TestSearchCatchAllReturnsEverything(t *testing.T) {
	if len(Search("", "Todos")) != len(catalog) {
		t.Fatal("catch-all category should match the whole catalog")
	}
	if len(Search("", "")) != len(catalog) {
		t.Fatal("empty filters should match the whole catalog")
	}
}

func TestGetUnknown(t *testing.T) {
	if _, ok := Get("nope"); ok {
		t.Fatal("expected miss")
	}
}

func TestHandlerListAndDetail(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/protocols", NewHandler().MountRoutes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protocols?q=acls", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "acls-2025") {
		t.Fatalf("list body missing match: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protocols/atls-11", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("detail status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protocols/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing protocol status %d", rec.Code)
	}
}
