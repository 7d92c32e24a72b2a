package textproc

import "testing"

func TestBasicCleanNormalizesPunctuationAndWhitespace(t *testing.T) {
	n := NewNormalizer(NormalizerConfig{})

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty input",
			in:   "",
			want: "",
		},
		{
			name: "whitespace only",
			in:   " \n\t ",
			want: "",
		},
		{
			name: "smart punctuation to ascii",
			in:   "“Smart” ‘quotes’ – dash here",
			want: `"Smart" 'quotes' - dash here`,
		},
		{
			name: "whitespace runs collapse",
			in:   "a   b\t\tc\n\n\n\nd  \n  e",
			want: "a b c\n\nd\ne",
		},
		{
			name: "paragraph break survives",
			in:   "first paragraph.\n\nsecond paragraph.",
			want: "first paragraph.\n\nsecond paragraph.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeStopwordFiltering(t *testing.T) {
	n := NewNormalizer(NormalizerConfig{RemoveStopwords: true})

	got := n.Normalize("The capital of France is Paris")
	want := "capital france paris"
	if got != want {
		t.Errorf("Normalize = %q, want %q", got, want)
	}
}

func TestNormalizeFallsBackWhenFilterDestroysContent(t *testing.T) {
	n := NewNormalizer(NormalizerConfig{RemoveStopwords: true})

	// Every token is a stopword, so filtering would remove everything. The
	// safety rule must return the basic cleaning instead.
	in := "is the a of to in it"
	if got := n.Normalize(in); got != in {
		t.Errorf("Normalize = %q, want fallback %q", got, in)
	}
}

func TestNormalizeKeepsPunctuationBoundTokens(t *testing.T) {
	n := NewNormalizer(NormalizerConfig{RemoveStopwords: true})

	got := n.Normalize("Paris is the capital. France won.")
	want := "paris capital. france won."
	if got != want {
		t.Errorf("Normalize = %q, want %q", got, want)
	}
}
