package cpf

import (
	"fmt"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid plain", "11144477735", true},
		{"valid formatted", "111.444.777-35", true},
		{"valid with spaces", " 111 444 777 35 ", true},
		{"valid second", "52998224725", true},
		{"check digit zero", "12345678909", true},
		{"wrong first check digit", "11144477745", false},
		{"wrong second check digit", "11144477736", false},
		{"too short", "1114447773", false},
		{"too long", "111444777350", false},
		{"empty", "", false},
		{"letters only", "abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Validate(tt.input); got != tt.want {
				t.Errorf("Validate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateRejectsRepeatedDigits(t *testing.T) {
	for d := 0; d <= 9; d++ {
		s := fmt.Sprintf("%d%d%d%d%d%d%d%d%d%d%d", d, d, d, d, d, d, d, d, d, d, d)
		if Validate(s) {
			t.Errorf("Validate(%q) = true, want false", s)
		}
	}
}

func TestValidateRejectsAnyAlteredCheckDigit(t *testing.T) {
	base := "11144477735"
	for pos := 9; pos <= 10; pos++ {
		for d := byte('0'); d <= '9'; d++ {
			if d == base[pos] {
				continue
			}
			altered := base[:pos] + string(d) + base[pos+1:]
			if Validate(altered) {
				t.Errorf("Validate(%q) = true, want false", altered)
			}
		}
	}
}

func TestDigits(t *testing.T) {
	if got := Digits("111.444.777-35"); got != "11144477735" {
		t.Errorf("Digits() = %q", got)
	}
	if got := Digits("a1b2"); got != "12" {
		t.Errorf("Digits() = %q", got)
	}
}

func TestFormatAndMask(t *testing.T) {
	if got := Format("11144477735"); got != "111.444.777-35" {
		t.Errorf("Format() = %q", got)
	}
	if got := Format("123"); got != "123" {
		t.Errorf("Format() = %q", got)
	}
	if got := Mask("111.444.777-35"); got != "***.***.*77-35" {
		t.Errorf("Mask() = %q", got)
	}
	if got := Mask("123"); got != "***" {
		t.Errorf("Mask() = %q", got)
	}
}

func ExampleValidate() {
	fmt.Println(Validate("111.444.777-35"))
	fmt.Println(Validate("111.111.111-11"))
	// Output:
	// true
	// false
}
