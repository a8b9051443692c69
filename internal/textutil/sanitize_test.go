package textutil

import "testing"

func TestSecureFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"My cool movie.mp4", "My_cool_movie.mp4"},
		{"../../../etc/passwd", "etc_passwd"},
		{"Café déjà vu.mp4", "Cafe_deja_vu.mp4"},
		{"i contain cool \u00fcml\u00e4uts.txt", "i_contain_cool_umlauts.txt"},
		{"broken \xffbyte.mp4", "broken_byte.mp4"},
		{"  spaced\tout  .mov ", "spaced_out_.mov"},
		{"CON.mp4", "_CON.mp4"},
		{"..", ""},
		{"日本語.mp4", "mp4"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SecureFileName(tt.input); got != tt.want {
				t.Errorf("SecureFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
