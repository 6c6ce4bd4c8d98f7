package parser

import (
	"slices"
	"testing"
)

func TestParseAnswerKey(t *testing.T) {
	key := "参考答案\n1.A 2.BD 3、c\n4．E：肝脏是主要代谢器官\n解毒也在肝脏完成。\n05) A,C 解析：两者都对\n2.B"
	k, warns := ParseAnswerKey(key)

	if k.Len() != 5 {
		t.Fatalf("expected 5 entries, got %d: %+v", k.Len(), k.Entries())
	}
	want := map[string][]int{"1": {0}, "2": {1}, "3": {2}, "4": {4}, "5": {0, 2}}
	for ord, ans := range want {
		e, ok := k.Lookup(ord)
		if !ok || !slices.Equal(e.Answer, ans) {
			t.Fatalf("entry %s = %+v, want %v", ord, e, ans)
		}
	}
	if e, _ := k.Lookup("4"); e.Explanation != "肝脏是主要代谢器官 解毒也在肝脏完成。" {
		t.Fatalf("explanation 4 = %q", e.Explanation)
	}
	if e, _ := k.Lookup("5"); e.Explanation != "两者都对" {
		t.Fatalf("explanation 5 = %q", e.Explanation)
	}
	if e, _ := k.Lookup("1"); e.Explanation != "" {
		t.Fatalf("compact entry should have no explanation, got %q", e.Explanation)
	}
	if !hasWarning(warns, WarnKeyLineIgnored) {
		t.Fatalf("header line should be reported, got %+v", warns)
	}
	var order []string
	for _, e := range k.Entries() {
		order = append(order, e.Ordinal)
	}
	if !slices.Equal(order, []string{"1", "2", "3", "4", "5"}) {
		t.Fatalf("entry order = %v", order)
	}
}

func TestParseAnswerKeyBareLabel(t *testing.T) {
	k, _ := ParseAnswerKey("1.E 解析因为这样\n2.A 答案解析：肝脏\n解析写在续行时保留")
	if e, _ := k.Lookup("1"); e.Explanation != "因为这样" {
		t.Fatalf("explanation 1 = %q", e.Explanation)
	}
	if e, _ := k.Lookup("2"); e.Explanation != "肝脏 解析写在续行时保留" {
		t.Fatalf("explanation 2 = %q", e.Explanation)
	}
}

func TestParseAnswerKeyRejectsWords(t *testing.T) {
	k, _ := ParseAnswerKey("1. Apple\n2 days")
	if k.Len() != 0 {
		t.Fatalf("prose parsed as key entries: %+v", k.Entries())
	}
}

func TestAnswerKeyApply(t *testing.T) {
	drafts := []Draft{
		{Block: 0, Ordinal: "1", Options: []string{"a", "b"}, RawAnswer: "A", HasAnswer: true},
		{Block: 1, Ordinal: "2", Options: []string{"a", "b", "c"}, RawAnswer: "A", HasAnswer: true},
		{Block: 2, Ordinal: "3", Options: []string{"a", "b"}, RawAnswer: "A", HasAnswer: true},
		{Block: 3, Ordinal: "4", Options: []string{"a", "b", "c", "d"}},
		{Block: 4, Options: []string{"a", "b"}},
	}
	k, _ := ParseAnswerKey("2.C\n3.D\n4.B 解析：from the key")
	m, warns := k.Apply(drafts)

	if m != (KeyMatch{Entries: 3, Matched: 2, Total: 5}) {
		t.Fatalf("match = %+v", m)
	}
	if drafts[0].KeyAnswer != nil || drafts[2].KeyAnswer != nil {
		t.Fatalf("unmatched or out-of-range drafts were overwritten")
	}
	if !slices.Equal(drafts[1].KeyAnswer, []int{2}) {
		t.Fatalf("draft 2 key answer = %v", drafts[1].KeyAnswer)
	}
	if !slices.Equal(drafts[3].KeyAnswer, []int{1}) || drafts[3].Explanation != "from the key" {
		t.Fatalf("draft 4 = %+v", drafts[3])
	}
	if len(warns) != 1 || warns[0].Kind != WarnKeyOutOfRange || warns[0].Ordinal != "3" {
		t.Fatalf("warnings = %+v", warns)
	}
}
