package parser

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// Alias maps a free-form subject key to a canonical category.
type Alias struct {
	Key     string `yaml:"key" json:"key"`
	Subject string `yaml:"subject" json:"subject"`
}

// Taxonomy is the closed set of subject categories plus the aliases that
// resolve onto it.
type Taxonomy struct {
	Canonical []string `yaml:"canonical" json:"canonical"`
	Aliases   []Alias  `yaml:"aliases" json:"aliases"`
	Default   string   `yaml:"default" json:"default,omitempty"`
}

// DefaultTaxonomy returns the veterinary licensing exam categories.
func DefaultTaxonomy() *Taxonomy {
	return &Taxonomy{
		Canonical: []string{"基础兽医学", "预防兽医学", "临床兽医学", "综合应用"},
		Aliases: []Alias{
			{Key: "基础", Subject: "基础兽医学"},
			{Key: "基础兽医", Subject: "基础兽医学"},
			{Key: "预防", Subject: "预防兽医学"},
			{Key: "预防兽医", Subject: "预防兽医学"},
			{Key: "临床", Subject: "临床兽医学"},
			{Key: "临床兽医", Subject: "临床兽医学"},
			{Key: "综合", Subject: "综合应用"},
			{Key: "兽医法规", Subject: "基础兽医学"},
			{Key: "兽医内科学", Subject: "临床兽医学"},
			{Key: "兽医外科学", Subject: "临床兽医学"},
			{Key: "兽医传染病学", Subject: "预防兽医学"},
			{Key: "兽医药理学", Subject: "基础兽医学"},
		},
		Default: "临床兽医学",
	}
}

// Validate checks that every alias and the default point at a canonical
// category.
func (t *Taxonomy) Validate() error {
	if len(t.Canonical) == 0 {
		return errors.New("taxonomy: no canonical subjects")
	}
	for _, c := range t.Canonical {
		if strings.TrimSpace(c) == "" {
			return errors.New("taxonomy: empty canonical subject")
		}
	}
	for _, a := range t.Aliases {
		if strings.TrimSpace(a.Key) == "" {
			return fmt.Errorf("taxonomy: alias for %q has an empty key", a.Subject)
		}
		if !t.isCanonical(a.Subject) {
			return fmt.Errorf("taxonomy: alias %q targets unknown subject %q", a.Key, a.Subject)
		}
	}
	if t.Default != "" && !t.isCanonical(t.Default) {
		return fmt.Errorf("taxonomy: default %q is not canonical", t.Default)
	}
	return nil
}

func (t *Taxonomy) isCanonical(s string) bool {
	return slices.Contains(t.Canonical, s)
}

// Resolve maps a label onto a canonical category: exact canonical match,
// exact alias match, then the longest alias key contained in the label.
func (t *Taxonomy) Resolve(label string) (string, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", false
	}
	for _, c := range t.Canonical {
		if strings.EqualFold(c, label) {
			return c, true
		}
	}
	for _, a := range t.Aliases {
		if strings.EqualFold(a.Key, label) {
			return a.Subject, true
		}
	}
	lower := strings.ToLower(label)
	var best *Alias
	for i := range t.Aliases {
		a := &t.Aliases[i]
		if !strings.Contains(lower, strings.ToLower(a.Key)) {
			continue
		}
		if best == nil || utf8.RuneCountInString(a.Key) > utf8.RuneCountInString(best.Key) {
			best = a
		}
	}
	if best != nil {
		return best.Subject, true
	}
	return "", false
}

// Normalize always returns a canonical category. fellBack reports that the
// label could not be resolved and fallback was used instead.
func (t *Taxonomy) Normalize(label, fallback string) (subject string, fellBack bool) {
	if s, ok := t.Resolve(label); ok {
		return s, false
	}
	if s, ok := t.Resolve(fallback); ok {
		return s, true
	}
	return t.fallback(), true
}

func (t *Taxonomy) fallback() string {
	if t.Default != "" {
		return t.Default
	}
	return t.Canonical[0]
}
