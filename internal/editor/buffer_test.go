package editor

import "testing"

func TestInsertTab(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		start, end int
		wantText   string
		wantCursor int
	}{
		{"empty", "", 0, 0, "\t", 1},
		{"at start", "abc", 0, 0, "\tabc", 1},
		{"middle", "abc", 1, 1, "a\tbc", 2},
		{"at end", "abc", 3, 3, "abc\t", 4},
		{"replaces selection", "abcdef", 1, 4, "a\tef", 2},
		{"reversed selection", "abcdef", 4, 1, "a\tef", 2},
		{"out of range", "ab", 10, 12, "ab\t", 3},
		{"multibyte", "é€x", 2, 2, "é€\tx", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Buffer{Text: tt.text}
			b.InsertTab(tt.start, tt.end)
			if b.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", b.Text, tt.wantText)
			}
			if b.Cursor != tt.wantCursor {
				t.Errorf("Cursor = %d, want %d", b.Cursor, tt.wantCursor)
			}
		})
	}
}

func TestInsertTab_SingleCharacterAdded(t *testing.T) {
	b := Buffer{Text: "for i := range xs {}"}
	before := b.CharCount()
	b.InsertTab(5, 5)
	if got := b.CharCount(); got != before+1 {
		t.Errorf("CharCount = %d, want %d", got, before+1)
	}
}

func TestEdit_ClampsCursor(t *testing.T) {
	var b Buffer
	b.Edit("hello", 99)
	if b.Cursor != 5 {
		t.Errorf("Cursor = %d, want 5", b.Cursor)
	}
	b.Edit("hi", -3)
	if b.Cursor != 0 {
		t.Errorf("Cursor = %d, want 0", b.Cursor)
	}
}

func TestCharCount_CountsCodePoints(t *testing.T) {
	b := Buffer{Text: "O(n²)"}
	if got := b.CharCount(); got != 5 {
		t.Errorf("CharCount = %d, want 5", got)
	}
}

func TestOffsetConversion(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		units  int
		runes  int
		backTo int
	}{
		{"ascii", "abc", 2, 2, 2},
		{"bmp", "é€x", 2, 2, 2},
		{"after emoji", "😀ab", 3, 2, 3},
		{"before emoji", "a😀b", 1, 1, 1},
		{"inside surrogate pair", "😀ab", 1, 1, 2},
		{"past end", "😀", 9, 1, 2},
		{"negative", "abc", -1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RuneOffset(tt.text, tt.units)
			if got != tt.runes {
				t.Errorf("RuneOffset(%q, %d) = %d, want %d", tt.text, tt.units, got, tt.runes)
			}
			if back := UTF16Offset(tt.text, got); back != tt.backTo {
				t.Errorf("UTF16Offset(%q, %d) = %d, want %d", tt.text, got, back, tt.backTo)
			}
		})
	}
}

func TestInsertTab_AfterAstralCharacter(t *testing.T) {
	text := "😀ab"
	// the browser reports the caret between "a" and "b" as offset 3
	caret := RuneOffset(text, 3)

	var b Buffer
	b.Edit(text, caret)
	b.InsertTab(caret, caret)

	if b.Text != "😀a\tb" {
		t.Errorf("Text = %q, want %q", b.Text, "😀a\tb")
	}
	if b.Cursor != 3 || b.UTF16Cursor() != 4 {
		t.Errorf("Cursor = %d (utf16 %d), want 3 (utf16 4)", b.Cursor, b.UTF16Cursor())
	}
}
