package sepa

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain ascii", in: "Smith, John", want: "Smith, John"},
		{name: "lowercase umlauts", in: "Müller, Jörg", want: "Mueller, Joerg"},
		{name: "uppercase umlauts", in: "Özdemir, Ülkü", want: "Oezdemir, Uelkue"},
		{name: "sharp s", in: "Weiß, Jürgen", want: "Weiss, Juergen"},
		{name: "generic diacritics", in: "André Fañas", want: "Andre Fanas"},
		{name: "mixed", in: "Müller-Lüdenscheidt, André", want: "Mueller-Luedenscheidt, Andre"},
		{name: "unmappable runes dropped", in: "Ragnarök 𝄞", want: "Ragnaroek "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
