package model

import (
	"errors"
	"strings"
	"testing"
)

func TestPassengerValidate(t *testing.T) {
	valid := Passenger{Name: "Asha Verma", Age: 34, Gender: GenderFemale}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid passenger rejected: %v", err)
	}

	cases := []struct {
		name string
		p    Passenger
	}{
		{"empty name", Passenger{Name: "", Age: 30, Gender: GenderMale}},
		{"one rune name", Passenger{Name: "A", Age: 30, Gender: GenderMale}},
		{"name of spaces", Passenger{Name: "   ", Age: 30, Gender: GenderMale}},
		{"name too long", Passenger{Name: strings.Repeat("x", 101), Age: 30, Gender: GenderMale}},
		{"zero age", Passenger{Name: "Asha Verma", Age: 0, Gender: GenderFemale}},
		{"negative age", Passenger{Name: "Asha Verma", Age: -4, Gender: GenderFemale}},
		{"age above cap", Passenger{Name: "Asha Verma", Age: 121, Gender: GenderFemale}},
		{"unknown gender", Passenger{Name: "Asha Verma", Age: 34, Gender: "unknown"}},
		{"empty gender", Passenger{Name: "Asha Verma", Age: 34}},
		{"upper-case gender", Passenger{Name: "Asha Verma", Age: 34, Gender: "FEMALE"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.p.Validate(); !errors.Is(err, ErrInvalidPassenger) {
				t.Errorf("Validate() = %v, want ErrInvalidPassenger", err)
			}
		})
	}
}

func TestPassengerValidateBounds(t *testing.T) {
	// Two-rune names and the age endpoints are legal.
	for _, p := range []Passenger{
		{Name: "Al", Age: 1, Gender: GenderOther},
		{Name: strings.Repeat("x", 100), Age: 120, Gender: GenderMale},
	} {
		if err := p.Validate(); err != nil {
			t.Errorf("Validate(%q, %d) = %v, want nil", p.Name, p.Age, err)
		}
	}
}
