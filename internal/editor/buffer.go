package editor

import (
	"unicode/utf16"
	"unicode/utf8"
)

// Buffer is the code input of the analyzer page: the text and the cursor
// offset inside it. Offsets count code points. Browsers report textarea
// selections in UTF-16 code units; convert with RuneOffset and UTF16Offset.
type Buffer struct {
	Text   string `json:"text"`
	Cursor int    `json:"cursor"`
}

// Edit replaces the text wholesale and moves the cursor, clamping it into
// the new text.
func (b *Buffer) Edit(text string, cursor int) {
	b.Text = text
	b.Cursor = clamp(cursor, 0, utf8.RuneCountInString(text))
}

// InsertTab replaces the selection [start, end) with a single tab character
// and leaves the cursor right after it. A reversed selection is normalized.
func (b *Buffer) InsertTab(start, end int) {
	runes := []rune(b.Text)
	start = clamp(start, 0, len(runes))
	end = clamp(end, 0, len(runes))
	if end < start {
		start, end = end, start
	}

	out := make([]rune, 0, len(runes)-(end-start)+1)
	out = append(out, runes[:start]...)
	out = append(out, '\t')
	out = append(out, runes[end:]...)

	b.Text = string(out)
	b.Cursor = start + 1
}

// CharCount is the number shown under the textarea.
func (b Buffer) CharCount() int {
	return utf8.RuneCountInString(b.Text)
}

// UTF16Cursor is the cursor as a browser selection offset.
func (b Buffer) UTF16Cursor() int {
	return UTF16Offset(b.Text, b.Cursor)
}

// RuneOffset converts an offset in UTF-16 code units into a code point
// offset of text. An offset inside a surrogate pair lands after the pair.
func RuneOffset(text string, units int) int {
	n, u := 0, 0
	for _, r := range text {
		if u >= units {
			break
		}
		u += utf16.RuneLen(r)
		n++
	}
	return n
}

// UTF16Offset converts a code point offset of text into UTF-16 code units.
func UTF16Offset(text string, runes int) int {
	n, u := 0, 0
	for _, r := range text {
		if n >= runes {
			break
		}
		u += utf16.RuneLen(r)
		n++
	}
	return u
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
