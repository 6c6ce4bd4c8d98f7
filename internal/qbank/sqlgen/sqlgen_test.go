package sqlgen

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mind-engage/mindengage-qbank/internal/qbank/parser"
)

func questions() []parser.Question {
	return []parser.Question{
		{
			Stem:          "Which drug's half-life is longest?",
			Options:       []string{"A drug", `B "quoted"`},
			AnswerIndices: []int{1},
			Type:          parser.Single,
			Explanation:   "It's B",
			Subject:       "基础兽医学",
			Difficulty:    2,
		},
		{
			Stem:          "反刍动物",
			Options:       []string{"牛", "犬", "羊"},
			AnswerIndices: []int{0, 2},
			Type:          parser.Multiple,
			Explanation:   parser.DefaultExplanation,
			Subject:       "临床兽医学",
			Difficulty:    4,
		},
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	if err := Write(&buf, questions(), Options{GeneratedAt: at}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"-- generated: 2024-05-01 09:30:00\n",
		"-- questions: 2\n",
		"-- question 1: single\nINSERT INTO vet_exam_questions (question_type, stem, options, correct_answer, explanation, subject)\nVALUES (\n",
		"    'Which drug''s half-life is longest?',\n",
		`    '["A drug","B \"quoted\""]',` + "\n",
		"    '1',\n",
		"    'It''s B',\n",
		"-- question 2: multiple\n",
		`    '["牛","犬","羊"]',` + "\n",
		"    '[0,2]',\n",
		"    '临床兽医学'\n);\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Count(out, "INSERT INTO") != 2 {
		t.Fatalf("expected two statements:\n%s", out)
	}
}

func TestWriteOptions(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, questions()[:1], Options{Table: "bank.items", WithDifficulty: true}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "INSERT INTO bank.items (") || !strings.Contains(out, ", difficulty)") || !strings.Contains(out, "'基础兽医学',\n    2\n);") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "-- generated") {
		t.Fatalf("zero GeneratedAt should omit the timestamp:\n%s", out)
	}
}

func TestWriteRejectsBadTable(t *testing.T) {
	for _, table := range []string{"x; DROP TABLE y", "1abc", "a.b.c"} {
		if err := Write(&bytes.Buffer{}, questions(), Options{Table: table}); err == nil {
			t.Fatalf("table %q: expected error", table)
		}
	}
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil, Options{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.String() != "-- no questions to insert\n" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestQuote(t *testing.T) {
	if got := Quote("O'Brien"); got != "'O''Brien'" {
		t.Fatalf("Quote = %s", got)
	}
}
