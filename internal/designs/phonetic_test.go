package designs

import "testing"

func TestSoundsAlike(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want bool
	}{
		{"stamna", "Stamina", true},
		{"STAMINA", "stamina", true},
		{"stamna", "Firefighting", false},
		{"", "Stamina", false},
	}
	for _, tt := range tests {
		if got := soundsAlike(tt.a, tt.b); got != tt.want {
			t.Errorf("soundsAlike(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
