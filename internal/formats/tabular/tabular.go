// Package tabular renders spreadsheet-like rows as question text.
//
// A sheet whose first non-empty row names the question column (题目, question,
// stem ...) is read as one question per row and rendered in the labelled
// layout the parser understands, with a "---" line between rows. Any other
// sheet is flattened cell by cell, one non-empty cell per line.
package tabular

import (
	"fmt"
	"strings"
)

type column int

const (
	colNone column = iota
	colOrdinal
	colStem
	colOptionA
	colOptionB
	colOptionC
	colOptionD
	colOptionE
	colOptions
	colAnswer
	colExplanation
	colSubject
	colDifficulty
)

var headerAliases = map[string]column{
	"题号": colOrdinal, "序号": colOrdinal, "no": colOrdinal, "ordinal": colOrdinal, "number": colOrdinal, "#": colOrdinal,

	"题目": colStem, "题干": colStem, "试题": colStem, "问题": colStem,
	"question": colStem, "stem": colStem, "questiontext": colStem,

	"选项": colOptions, "options": colOptions, "choices": colOptions,

	"答案": colAnswer, "正确答案": colAnswer, "参考答案": colAnswer, "answer": colAnswer, "key": colAnswer,
	"解析": colExplanation, "答案解析": colExplanation, "explanation": colExplanation, "analysis": colExplanation,
	"科目": colSubject, "分类": colSubject, "subject": colSubject, "category": colSubject,
	"难度": colDifficulty, "difficulty": colDifficulty, "level": colDifficulty,
}

func init() {
	for i, l := range []string{"a", "b", "c", "d", "e"} {
		c := colOptionA + column(i)
		for _, k := range []string{l, "选项" + l, "option" + l, "choice" + l} {
			headerAliases[k] = c
		}
	}
}

func headerKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "", "　", "", ":", "", "：", "").Replace(s)
}

// header maps each cell of row to a known column. ok is false unless the row
// names a question column and at least one other known column.
func header(row []string) (cols []column, ok bool) {
	cols = make([]column, len(row))
	known, stem := 0, false
	for i, cell := range row {
		c := headerAliases[headerKey(cell)]
		cols[i] = c
		if c != colNone {
			known++
		}
		if c == colStem {
			stem = true
		}
	}
	return cols, stem && known >= 2
}

// Render turns the rows of one sheet into newline-delimited text.
func Render(rows [][]string) string {
	return RenderSheets([][][]string{rows})
}

// RenderSheets renders each sheet in turn. Consecutive question sheets are
// kept apart by a "---" line so that every row stays its own block.
func RenderSheets(sheets [][][]string) string {
	var b strings.Builder
	prevQuestions := false
	for _, rows := range sheets {
		start := firstNonEmpty(rows)
		if start < 0 {
			continue
		}
		cols, ok := header(rows[start])
		if !ok {
			b.WriteString(renderCells(rows[start:]))
			prevQuestions = false
			continue
		}
		out := renderQuestions(cols, rows[start+1:])
		if out == "" {
			continue
		}
		if prevQuestions {
			b.WriteString("---\n")
		}
		b.WriteString(out)
		prevQuestions = true
	}
	return b.String()
}

func renderCells(rows [][]string) string {
	var b strings.Builder
	for _, row := range rows {
		for _, cell := range row {
			for _, line := range strings.Split(cell, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					b.WriteString(line)
					b.WriteByte('\n')
				}
			}
		}
	}
	return b.String()
}

func renderQuestions(cols []column, rows [][]string) string {
	var b strings.Builder
	n := 0
	for _, row := range rows {
		rec := map[column]string{}
		var options []string
		for i, cell := range row {
			if i >= len(cols) || cols[i] == colNone {
				continue
			}
			switch c := cols[i]; {
			case c == colOptions:
				options = append(options, splitLines(cell)...)
			default:
				rec[c] = oneLine(cell)
			}
		}
		if rec[colStem] == "" && len(options) == 0 && rec[colAnswer] == "" {
			continue
		}
		n++
		if n > 1 {
			b.WriteString("---\n")
		}
		ordinal := strings.TrimRight(rec[colOrdinal], ".。、) ")
		if !isDigits(ordinal) {
			ordinal = fmt.Sprint(n)
		}
		fmt.Fprintf(&b, "%s. %s\n", ordinal, rec[colStem])
		for c := colOptionA; c <= colOptionE; c++ {
			if v := rec[c]; v != "" {
				fmt.Fprintf(&b, "%c. %s\n", 'A'+rune(c-colOptionA), v)
			}
		}
		for _, o := range options {
			b.WriteString(o)
			b.WriteByte('\n')
		}
		for _, f := range []struct {
			c     column
			label string
		}{
			{colAnswer, "答案"},
			{colExplanation, "解析"},
			{colSubject, "科目"},
			{colDifficulty, "难度"},
		} {
			if v := rec[f.c]; v != "" {
				fmt.Fprintf(&b, "%s：%s\n", f.label, v)
			}
		}
	}
	return b.String()
}

func firstNonEmpty(rows [][]string) int {
	for i, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return i
			}
		}
	}
	return -1
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func splitLines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
