package analysis

import (
	"strings"
	"testing"
)

func TestGenerateSummary(t *testing.T) {
	t.Parallel()

	long := "Go " + strings.Repeat("x", 60)
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "short verbatim", in: "Inventory tracker for a bakery", want: "Inventory tracker for a bakery"},
		{name: "exactly fifty", in: strings.Repeat("a", 50), want: strings.Repeat("a", 50)},
		{
			name: "break at last space",
			in:   "The quick brown fox jumps over the lazy dog and keeps running fast",
			want: "The quick brown fox jumps over the lazy dog and...",
		},
		{
			name: "comma and space considered",
			in:   "Build a mobile banking app, with offline sync and biometric login for retail customers",
			want: "Build a mobile banking app, with offline sync and...",
		},
		{name: "break too early keeps fifty", in: long, want: long[:50] + "..."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := GenerateSummary(tc.in)
			if got != tc.want {
				t.Fatalf("GenerateSummary(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestGenerateSummaryCountsRunes(t *testing.T) {
	t.Parallel()

	in := strings.Repeat("é", 40) + " " + strings.Repeat("ü", 20)
	got := GenerateSummary(in)
	want := strings.Repeat("é", 40) + "..."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
