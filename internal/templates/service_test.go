package templates

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/MattyO101/Legalassist-MPV/internal/shared/apierr"
	"github.com/MattyO101/Legalassist-MPV/internal/templates/export"
)

func newSeededService(t *testing.T) *Service {
	t.Helper()
	clock := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	svc := &Service{
		Templates:     NewMemoryRepo(),
		UserTemplates: NewMemoryUserRepo(),
		Exporter:      export.New(t.TempDir()),
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	}
	n, err := svc.Seed(context.Background())
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 seeded templates, got %d", n)
	}
	return svc
}

func assertAPIError(t *testing.T, err error, status int, message string) {
	t.Helper()
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *apierr.Error, got %v", err)
	}
	if apiErr.Status != status || apiErr.Message != message {
		t.Fatalf("expected %d %q, got %d %q", status, message, apiErr.Status, apiErr.Message)
	}
}

func findByTitle(t *testing.T, svc *Service, title string) Template {
	t.Helper()
	tpls, err := svc.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, tpl := range tpls {
		if tpl.Title == title {
			return tpl
		}
	}
	t.Fatalf("template %q not found", title)
	return Template{}
}

func TestSeedIsIdempotent(t *testing.T) {
	svc := newSeededService(t)
	n, err := svc.Seed(context.Background())
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no templates on second seed, got %d", n)
	}
}

func TestListFiltersByCategoryAndCategoriesAreSorted(t *testing.T) {
	svc := newSeededService(t)
	forms, err := svc.List(context.Background(), CategoryForm)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(forms) != 1 || forms[0].Title != "Invoice" {
		t.Fatalf("unexpected forms %+v", forms)
	}
	cats, err := svc.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(cats) != 2 || cats[0] != CategoryAgreement || cats[1] != CategoryForm {
		t.Fatalf("unexpected categories %v", cats)
	}
}

func TestGetHidesInactiveTemplates(t *testing.T) {
	svc := newSeededService(t)
	repo := svc.Templates.(*MemoryRepo)
	_ = repo.InsertMany(context.Background(), []Template{{ID: "retired", Title: "Old", Category: CategoryOther, IsActive: false}})

	_, err := svc.Get(context.Background(), "retired")
	assertAPIError(t, err, http.StatusNotFound, "Template not found")
	_, err = svc.Get(context.Background(), "nope")
	assertAPIError(t, err, http.StatusNotFound, "Template not found")
}

func TestCustomizeRequiresData(t *testing.T) {
	svc := newSeededService(t)
	nda := findByTitle(t, svc, "Non-Disclosure Agreement")

	_, err := svc.Customize(context.Background(), nda.ID, map[string]any{})
	assertAPIError(t, err, http.StatusBadRequest, "Template data is required")

	out, err := svc.Customize(context.Background(), nda.ID, map[string]any{"partyOne": "Acme"})
	if err != nil {
		t.Fatalf("Customize: %v", err)
	}
	if out.Template.ID != nda.ID || out.CustomizedData["partyOne"] != "Acme" {
		t.Fatalf("unexpected customize result %+v", out)
	}
}

func TestExportValidatesInput(t *testing.T) {
	svc := newSeededService(t)
	invoice := findByTitle(t, svc, "Invoice")

	_, err := svc.Export(context.Background(), "u1", invoice.ID, ExportRequest{})
	assertAPIError(t, err, http.StatusBadRequest, "Template data is required")

	_, err = svc.Export(context.Background(), "u1", invoice.ID, ExportRequest{Data: map[string]any{"a": "b"}, Format: "odt"})
	assertAPIError(t, err, http.StatusBadRequest, "Invalid export format")

	res, err := svc.Export(context.Background(), "u1", invoice.ID, ExportRequest{Data: map[string]any{"companyName": "Acme"}, Format: "docx"})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Format != export.FormatDOCX || res.Size == 0 {
		t.Fatalf("unexpected export result %+v", res)
	}
}

func TestUserTemplateUpsertListAndDelete(t *testing.T) {
	svc := newSeededService(t)
	ctx := context.Background()
	nda := findByTitle(t, svc, "Non-Disclosure Agreement")
	invoice := findByTitle(t, svc, "Invoice")

	_, err := svc.SaveUserTemplate(ctx, "u1", SaveUserTemplateRequest{TemplateID: nda.ID, Title: "My NDA"})
	assertAPIError(t, err, http.StatusBadRequest, "Template ID, title and data are required")
	_, err = svc.SaveUserTemplate(ctx, "u1", SaveUserTemplateRequest{TemplateID: "missing", Title: "x", Data: map[string]any{}})
	assertAPIError(t, err, http.StatusNotFound, "Template not found")

	first, err := svc.SaveUserTemplate(ctx, "u1", SaveUserTemplateRequest{TemplateID: nda.ID, Title: "My NDA", Data: map[string]any{"partyOne": "A"}})
	if err != nil {
		t.Fatalf("SaveUserTemplate: %v", err)
	}
	second, err := svc.SaveUserTemplate(ctx, "u1", SaveUserTemplateRequest{TemplateID: nda.ID, Title: "My NDA v2", Data: map[string]any{"partyOne": "B"}})
	if err != nil {
		t.Fatalf("SaveUserTemplate: %v", err)
	}
	if first.ID != second.ID || second.Title != "My NDA v2" {
		t.Fatalf("expected upsert onto the same row, got %s and %s", first.ID, second.ID)
	}
	if _, err := svc.SaveUserTemplate(ctx, "u1", SaveUserTemplateRequest{TemplateID: invoice.ID, Title: "Bill", Data: map[string]any{}}); err != nil {
		t.Fatalf("SaveUserTemplate: %v", err)
	}

	rows, err := svc.ListUserTemplates(ctx, "u1")
	if err != nil {
		t.Fatalf("ListUserTemplates: %v", err)
	}
	if len(rows) != 2 || rows[0].Title != "Bill" || rows[1].Template == nil || rows[1].Template.ID != nda.ID {
		t.Fatalf("unexpected rows %+v", rows)
	}

	err = svc.DeleteUserTemplate(ctx, "someone-else", first.ID)
	assertAPIError(t, err, http.StatusNotFound, "Template not found")
	if err := svc.DeleteUserTemplate(ctx, "u1", first.ID); err != nil {
		t.Fatalf("DeleteUserTemplate: %v", err)
	}
	rows, _ = svc.ListUserTemplates(ctx, "u1")
	if len(rows) != 1 {
		t.Fatalf("expected 1 active row after delete, got %d", len(rows))
	}

	again, err := svc.SaveUserTemplate(ctx, "u1", SaveUserTemplateRequest{TemplateID: nda.ID, Title: "Fresh", Data: map[string]any{}})
	if err != nil {
		t.Fatalf("SaveUserTemplate: %v", err)
	}
	if again.ID == first.ID {
		t.Fatalf("expected a new row after soft delete")
	}
}

func TestCatalogFieldsParse(t *testing.T) {
	tpls, err := Catalog(time.Now())
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	var invoice Template
	for _, tpl := range tpls {
		if tpl.Title == "Invoice" {
			invoice = tpl
		}
		if tpl.ID == "" || !tpl.IsActive {
			t.Fatalf("expected stamped template, got %+v", tpl)
		}
	}
	if len(invoice.Fields) != 7 || invoice.Fields[5].Label != "Invoice Items (format: item, quantity, price)" {
		t.Fatalf("unexpected invoice fields %+v", invoice.Fields)
	}
}
