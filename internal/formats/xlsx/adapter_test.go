package xlsx

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Sheet1"
	rows := [][]any{
		{"题目", "选项A", "选项B", "选项C", "答案", "难度"},
		{"犬瘟热的病原是", "细菌", "病毒", "真菌", "B", 4},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	if _, err := f.NewSheet("Notes"); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	_ = f.SetCellValue("Notes", "A1", "来源：2024 真题")
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf
}

func TestFlattenWorkbook(t *testing.T) {
	got, err := New().Flatten(context.Background(), workbook(t))
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	want := strings.Join([]string{
		"1. 犬瘟热的病原是",
		"A. 细菌",
		"B. 病毒",
		"C. 真菌",
		"答案：B",
		"难度：4",
		"来源：2024 真题",
	}, "\n") + "\n"
	if got != want {
		t.Fatalf("Flatten =\n%s\nwant\n%s", got, want)
	}
}

func TestFlattenRejectsGarbage(t *testing.T) {
	if _, err := New().Flatten(context.Background(), strings.NewReader("not a workbook")); err == nil {
		t.Fatalf("expected error")
	}
}
