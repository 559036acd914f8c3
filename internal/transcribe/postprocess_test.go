package transcribe

import "testing"

func TestPostProcess(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "collapses whitespace and keeps lyric lines",
			in:   "  Hold me close tonight.\n\nWe will never   die in your heart.  ",
			want: "Hold me close tonight. We will never die in your heart",
		},
		{
			name: "drops short and noise fragments",
			in:   "Oh. La la. Yeah yeah. The moon is rising high. Ah",
			want: "The moon is rising high",
		},
		{
			name: "drops single words",
			in:   "Tonight. Dancing under the stars",
			want: "Dancing under the stars",
		},
		{
			name: "strips stray characters but keeps apostrophes and accents",
			in:   "I'm gonna ♪ fly, so free! Corazón de fuego (hey)",
			want: "I'm gonna  fly, so free! Corazón de fuego hey",
		},
		{
			name: "empty input",
			in:   "   ",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PostProcess(tt.in); got != tt.want {
				t.Fatalf("PostProcess(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsNoise(t *testing.T) {
	for _, line := range []string{"la la", "Yeah", "oh  yeah"} {
		if !isNoise(line) {
			t.Errorf("expected %q to be noise", line)
		}
	}
	for _, line := range []string{"we run free", "love 4 ever", "don't stop"} {
		if isNoise(line) {
			t.Errorf("expected %q to be kept", line)
		}
	}
}
