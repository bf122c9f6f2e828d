// Package keyboard builds inline keyboards from flat button lists.
package keyboard

import (
	"strconv"

	tele "gopkg.in/telebot.v4"
)

// InlineBtn describes a convenience wrapper for inline button properties.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

const defaultCancelButtonText = "❌ Cancel"

// InlineButtonsRows builds an inline keyboard from rows of InlineBtn.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tele.InlineButton, len(row))
		for j, btn := range row {
			r[j] = *markup.Data(btn.Text, btn.Unique, btn.Data).Inline()
		}
		inline = append(inline, r)
	}
	markup.InlineKeyboard = inline
	return markup
}

// Rows splits a flat list of buttons into rows with up to n buttons each.
func Rows(buttons []InlineBtn, n int) [][]InlineBtn {
	if n < 1 {
		n = 1
	}
	rows := make([][]InlineBtn, 0, (len(buttons)+n-1)/n)
	for i := 0; i < len(buttons); i += n {
		end := min(i+n, len(buttons))
		rows = append(rows, buttons[i:end])
	}
	return rows
}

// InlineButtonsNPerRow lays buttons out with up to n per row.
func InlineButtonsNPerRow(buttons []InlineBtn, n int) *tele.ReplyMarkup {
	return InlineButtonsRows(Rows(buttons, n)...)
}

// CancelButton returns a cancel button for unique. Optional values override
// the payload (first) and the label (second).
func CancelButton(unique string, options ...string) InlineBtn {
	btn := InlineBtn{Text: defaultCancelButtonText, Unique: unique, Data: "cancel"}
	if len(options) > 0 && options[0] != "" {
		btn.Data = options[0]
	}
	if len(options) > 1 && options[1] != "" {
		btn.Text = options[1]
	}
	return btn
}

// Pager returns a row of previous/next buttons around page out of pages.
// Buttons leading outside 1..pages are omitted; a single page yields no row.
func Pager(unique string, page, pages int, prev, next string) []InlineBtn {
	if pages <= 1 {
		return nil
	}
	var row []InlineBtn
	if page > 1 {
		row = append(row, InlineBtn{Text: prev, Unique: unique, Data: strconv.Itoa(page - 1)})
	}
	if page < pages {
		row = append(row, InlineBtn{Text: next, Unique: unique, Data: strconv.Itoa(page + 1)})
	}
	return row
}
