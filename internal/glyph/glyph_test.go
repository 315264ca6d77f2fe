package glyph

import (
	"errors"
	"strings"
	"testing"
)

func TestCatalogSizes(t *testing.T) {
	tests := []struct {
		mode Mode
		want int
	}{
		{Uppercase, 26},
		{Lowercase, 26},
		{NativeScript, 36},
		{Numbers, 50},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			gs := Glyphs(tt.mode)
			if len(gs) != tt.want {
				t.Errorf("Expected %d glyphs, got %d", tt.want, len(gs))
			}
			if Len(tt.mode) != tt.want {
				t.Errorf("Expected Len %d, got %d", tt.want, Len(tt.mode))
			}
		})
	}
}

func TestCatalogContents(t *testing.T) {
	upper := Glyphs(Uppercase)
	if upper[0].Symbol != "A" || upper[25].Symbol != "Z" {
		t.Errorf("Expected A..Z, got %s..%s", upper[0].Symbol, upper[25].Symbol)
	}

	lower := Glyphs(Lowercase)
	if lower[0].Pronunciation != "a" {
		t.Errorf("Expected pronunciation %q, got %q", "a", lower[0].Pronunciation)
	}

	nums := Glyphs(Numbers)
	if nums[22].Symbol != "23" || nums[22].Pronunciation != "23" {
		t.Errorf("Expected 23, got %+v", nums[22])
	}
	if nums[49].Symbol != "50" {
		t.Errorf("Expected last number 50, got %s", nums[49].Symbol)
	}

	native := Glyphs(NativeScript)
	if native[0].Symbol != "क" || native[0].Pronunciation != "ka" {
		t.Errorf("Expected क/ka, got %+v", native[0])
	}
	if native[35].Symbol != "ज्ञ" || native[35].Pronunciation != "gya" {
		t.Errorf("Expected ज्ञ/gya, got %+v", native[35])
	}
}

func TestCatalogsAreDisjointAndUnique(t *testing.T) {
	seen := make(map[string]Mode)
	for _, m := range Modes() {
		local := make(map[string]bool)
		for _, g := range Glyphs(m) {
			if local[g.Symbol] {
				t.Errorf("Duplicate symbol %q in %s", g.Symbol, m)
			}
			local[g.Symbol] = true
			if other, ok := seen[g.Symbol]; ok {
				t.Errorf("Symbol %q appears in both %s and %s", g.Symbol, other, m)
			}
			seen[g.Symbol] = m
		}
	}
}

func TestGlyphsReturnsCopy(t *testing.T) {
	gs := Glyphs(Uppercase)
	gs[0].Symbol = "changed"

	if Glyphs(Uppercase)[0].Symbol != "A" {
		t.Error("Catalog was mutated through the returned slice")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"uppercase", Uppercase},
		{"UPPER", Uppercase},
		{"small", Lowercase},
		{" nepali ", NativeScript},
		{"native", NativeScript},
		{"digits", Numbers},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if err != nil {
			t.Errorf("ParseMode(%q) returned error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q): expected %s, got %s", tt.in, tt.want, got)
		}
	}

	if _, err := ParseMode("klingon"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("Expected ErrUnknownMode, got %v", err)
	}
}

func TestModeCycling(t *testing.T) {
	if Numbers.Next() != Uppercase {
		t.Errorf("Expected Numbers.Next() to wrap to Uppercase, got %s", Numbers.Next())
	}
	if Uppercase.Prev() != Numbers {
		t.Errorf("Expected Uppercase.Prev() to wrap to Numbers, got %s", Uppercase.Prev())
	}
	for _, m := range Modes() {
		if m.Next().Prev() != m {
			t.Errorf("Next/Prev not inverse for %s", m)
		}
	}
}

func TestScript(t *testing.T) {
	for _, m := range Modes() {
		want := Latin
		if m == NativeScript {
			want = Devanagari
		}
		if m.Script() != want {
			t.Errorf("Expected %s script %d, got %d", m, want, m.Script())
		}
	}
}

func TestFind(t *testing.T) {
	g, i, ok := Find(NativeScript, "क्ष")
	if !ok {
		t.Fatal("Expected to find क्ष")
	}
	if g.Pronunciation != "ksha" || i != 33 {
		t.Errorf("Expected ksha at 33, got %s at %d", g.Pronunciation, i)
	}

	if _, _, ok := Find(Uppercase, " Q "); !ok {
		t.Error("Expected padded symbol to be found")
	}

	if _, _, ok := Find(Uppercase, "a"); ok {
		t.Error("Did not expect lowercase symbol in uppercase catalog")
	}
}

func TestTitlesAndInstructions(t *testing.T) {
	if Title(NativeScript) != "🇳🇵 Nepali Letters (36 Letters)" {
		t.Errorf("Unexpected native title: %s", Title(NativeScript))
	}
	if Title(Numbers) != "🔢 Numbers (1-50)" {
		t.Errorf("Unexpected numbers title: %s", Title(Numbers))
	}
	if !strings.Contains(Instructions(Lowercase), "lowercase letter") {
		t.Errorf("Expected lowercase instructions to name the mode, got %s", Instructions(Lowercase))
	}
	if !strings.Contains(Instructions(NativeScript), "all 36 letters") {
		t.Errorf("Unexpected native instructions: %s", Instructions(NativeScript))
	}
}

func TestColumns(t *testing.T) {
	widths := []int{0, BreakpointSmall, BreakpointMedium, BreakpointLarge}
	want := map[Mode][4]int{
		Uppercase:    {3, 4, 6, 7},
		Lowercase:    {3, 4, 6, 7},
		NativeScript: {4, 5, 6, 8},
		Numbers:      {5, 6, 8, 10},
	}
	for m, cols := range want {
		for i, w := range widths {
			if got := Columns(m, w); got != cols[i] {
				t.Errorf("Expected %d columns for %s at width %d, got %d", cols[i], m, w, got)
			}
		}
	}

	for _, w := range append(widths, 500) {
		latin := Columns(Uppercase, w)
		if native := Columns(NativeScript, w); native < latin {
			t.Errorf("Expected native grid at least as dense as %d at width %d, got %d", latin, w, native)
		}
		if nums := Columns(Numbers, w); nums <= latin {
			t.Errorf("Expected numbers grid denser than %d at width %d, got %d", latin, w, nums)
		}
	}

	if got := Columns(Numbers, 500); got != 10 {
		t.Errorf("Expected 10 columns for numbers on a wide terminal, got %d", got)
	}
	if got := Columns(Uppercase, 10); got != 3 {
		t.Errorf("Expected 3 columns on a narrow terminal, got %d", got)
	}
}

func TestColorCycles(t *testing.T) {
	if Color(0) != Color(8) {
		t.Errorf("Expected color to repeat every 8 cells")
	}
	if Color(0).Name != "red" || Color(7).Name != "orange" {
		t.Errorf("Unexpected palette order: %s, %s", Color(0).Name, Color(7).Name)
	}
	if Color(-1).Name != "orange" {
		t.Errorf("Expected negative index to wrap, got %s", Color(-1).Name)
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(NativeScript)
	if !strings.HasPrefix(md, "## "+Title(NativeScript)) {
		t.Errorf("Expected title heading, got %q", md[:40])
	}
	if !strings.Contains(md, "| 1 | क | ka |") {
		t.Error("Expected first Devanagari row")
	}
	if rows := strings.Count(md, "\n|") - 2; rows != Len(NativeScript) {
		t.Errorf("Expected %d rows, got %d", Len(NativeScript), rows)
	}
}
