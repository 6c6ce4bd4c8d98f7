package parser

import (
	"strings"
	"testing"
)

func TestTaxonomyNormalize(t *testing.T) {
	tax := DefaultTaxonomy()
	cases := []struct {
		label, fallback string
		want            string
		fellBack        bool
	}{
		{"临床兽医学", "", "临床兽医学", false},
		{"预防", "", "预防兽医学", false},
		{"兽医内科学基础", "", "临床兽医学", false},
		{"第三章 兽医传染病学", "", "预防兽医学", false},
		{"天文学", "预防", "预防兽医学", true},
		{"天文学", "", "临床兽医学", true},
		{"", "综合应用", "综合应用", true},
	}
	for _, tc := range cases {
		got, fell := tax.Normalize(tc.label, tc.fallback)
		if got != tc.want || fell != tc.fellBack {
			t.Fatalf("Normalize(%q, %q) = %q,%v want %q,%v", tc.label, tc.fallback, got, fell, tc.want, tc.fellBack)
		}
	}
}

func TestTaxonomyValidate(t *testing.T) {
	if err := DefaultTaxonomy().Validate(); err != nil {
		t.Fatalf("default taxonomy invalid: %v", err)
	}
	bad := &Taxonomy{
		Canonical: []string{"Anatomy"},
		Aliases:   []Alias{{Key: "bones", Subject: "Osteology"}},
	}
	err := bad.Validate()
	if err == nil || !strings.Contains(err.Error(), "Osteology") {
		t.Fatalf("expected unknown subject error, got %v", err)
	}
	if err := (&Taxonomy{}).Validate(); err == nil {
		t.Fatalf("expected error for empty taxonomy")
	}
}

func TestTaxonomyCustom(t *testing.T) {
	tax := &Taxonomy{
		Canonical: []string{"Anatomy", "Pharmacology"},
		Aliases:   []Alias{{Key: "drug", Subject: "Pharmacology"}},
	}
	if s, ok := tax.Resolve("anatomy"); !ok || s != "Anatomy" {
		t.Fatalf("case-insensitive canonical = %q,%v", s, ok)
	}
	if s, ok := tax.Resolve("Drug interactions"); !ok || s != "Pharmacology" {
		t.Fatalf("contained alias = %q,%v", s, ok)
	}
	if s, _ := tax.Normalize("", ""); s != "Anatomy" {
		t.Fatalf("fallback without default = %q", s)
	}
}
