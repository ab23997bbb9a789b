package chunker

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{"valid", 400, 50, false},
		{"zero overlap", 400, 0, false},
		{"zero size", 0, 0, true},
		{"negative overlap", 400, -1, true},
		{"overlap equals size", 400, 400, true},
		{"overlap exceeds size", 400, 500, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.size, tc.overlap)
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate(%d, %d) error = %v, wantErr %v", tc.size, tc.overlap, err, tc.wantErr)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize("  hello\n\tworld   again \r\n")
	want := "hello world again"
	if got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
	if Normalize("   \n\t ") != "" {
		t.Error("Normalize of whitespace-only input should be empty")
	}
}

func TestSplit_Empty(t *testing.T) {
	if got := Split("", 400, 50); got != nil {
		t.Errorf("expected nil chunks for empty input, got %d", len(got))
	}
	if got := Split("   \t\n", 400, 50); got != nil {
		t.Errorf("expected nil chunks for whitespace input, got %d", len(got))
	}
}

func TestSplit_ShortInput(t *testing.T) {
	text := "a short document"
	chunks := Split(text, 400, 50)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != text {
		t.Errorf("single chunk should equal input, got %q", chunks[0])
	}
}

func TestSplit_OverlappingWindows(t *testing.T) {
	text := strings.Repeat("x", 1000)
	chunks := Split(text, 400, 50)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks for 1000 runes at size=400 overlap=50, got %d", len(chunks))
	}
	wantLens := []int{400, 400, 300}
	for i, c := range chunks {
		if len([]rune(c)) != wantLens[i] {
			t.Errorf("chunk %d length = %d, want %d", i, len([]rune(c)), wantLens[i])
		}
	}
}

func TestSplit_OverlapInvariant(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog. " + strings.Repeat("Pack my box with five dozen liquor jugs. ", 20)
	text = Normalize(text)
	const size, overlap = 100, 20

	chunks := Split(text, size, overlap)
	if len(chunks) < 2 {
		t.Fatalf("test input too short, got %d chunks", len(chunks))
	}
	for i := 0; i < len(chunks)-1; i++ {
		cur := []rune(chunks[i])
		next := []rune(chunks[i+1])
		suffix := string(cur[len(cur)-overlap:])
		prefix := string(next[:overlap])
		if suffix != prefix {
			t.Errorf("chunks %d/%d do not share %d runes of overlap", i, i+1, overlap)
		}
	}
}

// Concatenating chunks after stripping each chunk's leading overlap must
// reconstruct the normalized source text in original order.
func TestSplit_Reconstruction(t *testing.T) {
	text := Normalize(strings.Repeat("abcdefghij ", 137))
	const size, overlap = 256, 32

	chunks := Split(text, size, overlap)
	var b strings.Builder
	for i, c := range chunks {
		runes := []rune(c)
		if i == 0 {
			b.WriteString(c)
			continue
		}
		b.WriteString(string(runes[overlap:]))
	}
	if b.String() != text {
		t.Error("reconstructed text does not match source")
	}
}

func TestSplit_MultibyteRunes(t *testing.T) {
	text := strings.Repeat("héllo wörld ", 50)
	chunks := Split(text, 64, 8)
	for i, c := range chunks {
		if n := len([]rune(c)); n > 64 {
			t.Errorf("chunk %d has %d runes, want <= 64", i, n)
		}
		if c == "" {
			t.Errorf("chunk %d is empty", i)
		}
	}
}
