package shared

import (
	"net/http/httptest"
	"testing"
)

func TestValidatorPeriod(t *testing.T) {
	v := NewValidator()
	if !v.Period("year", 2026, "month", 2) {
		t.Fatal("expected valid period to pass")
	}
	if v.HasIssues() {
		t.Fatalf("unexpected issues %v", v.Issues())
	}

	v = NewValidator()
	if v.Period("year", 1999, "month", 13) {
		t.Fatal("expected invalid period to fail")
	}
	issues := v.Issues()
	if len(issues) != 2 {
		t.Fatalf("expected two issues, got %v", issues)
	}
}

func TestValidatorPositiveAmount(t *testing.T) {
	v := NewValidator()
	amount, ok := v.PositiveAmount("amount", " 150.25 ")
	if !ok || amount.String() != "150.25" {
		t.Fatalf("expected parsed amount, got %v ok=%v", amount, ok)
	}

	for _, raw := range []string{"", "abc", "0", "-5"} {
		v := NewValidator()
		if _, ok := v.PositiveAmount("amount", raw); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
		if !v.HasIssues() {
			t.Fatalf("expected issue recorded for %q", raw)
		}
	}
}

func TestValidatorIssuesAreSorted(t *testing.T) {
	v := NewValidator()
	v.Add("zulu", "last")
	v.Add("alpha", "first")
	v.Add("alpha", "also first")

	issues := v.Issues()
	if issues[0].Field != "alpha" || issues[0].Reason != "also first" {
		t.Fatalf("unexpected ordering %v", issues)
	}
	if issues[2].Field != "zulu" {
		t.Fatalf("unexpected ordering %v", issues)
	}
}

func TestValidUUID(t *testing.T) {
	if !ValidUUID("b3e1f1a0-8c5d-4f2e-9a6b-1c2d3e4f5a6b") {
		t.Fatal("expected canonical uuid to pass")
	}
	for _, raw := range []string{"", "latest", "123", "b3e1f1a0-8c5d-4f2e-9a6b"} {
		if ValidUUID(raw) {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestParseDateFormats(t *testing.T) {
	if parsed, err := ParseDate("2026-02-14"); err != nil || parsed.Day() != 14 {
		t.Fatalf("expected calendar date, got %v %v", parsed, err)
	}
	if parsed, err := ParseDate("2026-02-14T09:30:00Z"); err != nil || parsed.Hour() != 9 {
		t.Fatalf("expected RFC3339 date, got %v %v", parsed, err)
	}
	if _, err := ParseDate("14/02/2026"); err == nil {
		t.Fatal("expected unsupported format to fail")
	}
	if parsed, err := ParseDate(""); err != nil || !parsed.IsZero() {
		t.Fatalf("expected empty value to yield zero time, got %v %v", parsed, err)
	}
}

func TestParsePage(t *testing.T) {
	req := httptest.NewRequest("GET", "/?limit=500&offset=20", nil)
	page := ParsePage(req)
	if page.Limit != MaxPageSize || page.Offset != 20 {
		t.Fatalf("expected clamped page, got %+v", page)
	}

	req = httptest.NewRequest("GET", "/?limit=bad&offset=-3", nil)
	page = ParsePage(req)
	if page.Limit != DefaultPageSize || page.Offset != 0 {
		t.Fatalf("expected defaults, got %+v", page)
	}
}
