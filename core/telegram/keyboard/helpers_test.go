package keyboard

import (
	"strconv"
	"strings"
	"testing"
)

func TestInlineButtonsNPerRow(t *testing.T) {
	var buttons []InlineBtn
	for i := 2; i <= 10; i++ {
		buttons = append(buttons, InlineBtn{Text: strconv.Itoa(i), Unique: "reg", Data: "min|s|0|" + strconv.Itoa(i)})
	}
	markup := InlineButtonsNPerRow(buttons, 5)
	if len(markup.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d, want 2", len(markup.InlineKeyboard))
	}
	if len(markup.InlineKeyboard[0]) != 5 || len(markup.InlineKeyboard[1]) != 4 {
		t.Fatalf("row sizes = %d/%d", len(markup.InlineKeyboard[0]), len(markup.InlineKeyboard[1]))
	}
	first := markup.InlineKeyboard[0][0]
	if first.Unique != "reg" || !strings.HasSuffix(first.Data, "min|s|0|2") {
		t.Fatalf("first button = %+v", first)
	}
}

func TestRowsSingleColumn(t *testing.T) {
	rows := Rows([]InlineBtn{{Text: "a"}, {Text: "b"}}, 0)
	if len(rows) != 2 || len(rows[0]) != 1 {
		t.Fatalf("rows = %v", rows)
	}
}

func TestPager(t *testing.T) {
	if row := Pager("list", 1, 1, "<", ">"); row != nil {
		t.Fatalf("single page should have no pager: %v", row)
	}
	row := Pager("list", 1, 3, "<", ">")
	if len(row) != 1 || row[0].Data != "2" {
		t.Fatalf("first page pager = %v", row)
	}
	row = Pager("list", 2, 3, "<", ">")
	if len(row) != 2 || row[0].Data != "1" || row[1].Data != "3" {
		t.Fatalf("middle page pager = %v", row)
	}
	row = Pager("list", 3, 3, "<", ">")
	if len(row) != 1 || row[0].Text != "<" {
		t.Fatalf("last page pager = %v", row)
	}
}

func TestCancelButton(t *testing.T) {
	btn := CancelButton("reg_cancel", "", "❌ 취소")
	if btn.Data != "cancel" || btn.Text != "❌ 취소" || btn.Unique != "reg_cancel" {
		t.Fatalf("cancel button = %+v", btn)
	}
}
