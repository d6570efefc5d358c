package security

import (
	"errors"
	"fmt"
	"testing"
)

func TestScreen_RejectsDangerousFragments(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"space os", "please use os.system to list files"},
		{"space io", "open io streams for me"},
		{"dot os", "via pandas.os do something"},
		{"quoted os", "import module 'os' please"},
		{"double quoted io", `use the "io" module`},
		{"chr call", "decode with chr(104)"},
		{"b64decode", "run b64decode on this payload"},
	}
	s := NewScreen(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Check(tt.query)
			if err == nil {
				t.Fatal("expected rejection")
			}
			if !errors.Is(err, ErrMaliciousQuery) {
				t.Errorf("error = %v, want ErrMaliciousQuery", err)
			}
			var mqe *MaliciousQueryError
			if !errors.As(err, &mqe) {
				t.Errorf("error type = %T, want *MaliciousQueryError", err)
			}
		})
	}
}

func TestScreen_AllowsBenignQueries(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"plain question", "what is the average gdp per country?"},
		{"word containing os", "show me the cosine of the angle"},
		{"word chrome", "how many users are on chrome?"},
	}
	s := NewScreen(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Check(tt.query); err != nil {
				t.Errorf("Check(%q) = %v, want nil", tt.query, err)
			}
		})
	}
}

func TestScreen_PolicyRunsAfterDenylist(t *testing.T) {
	called := false
	s := NewScreen(PolicyFunc(func(q string) (bool, error) {
		called = true
		return true, nil
	}))
	err := s.Check("delete everything")
	if !errors.Is(err, ErrMaliciousQuery) {
		t.Errorf("error = %v, want ErrMaliciousQuery", err)
	}
	if !called {
		t.Error("policy was not consulted")
	}
}

func TestScreen_PolicyError(t *testing.T) {
	wantErr := fmt.Errorf("policy backend down")
	s := NewScreen(PolicyFunc(func(q string) (bool, error) {
		return false, wantErr
	}))
	if err := s.Check("hello"); !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want the policy's error", err)
	}
}

func TestContainsDangerousFragment(t *testing.T) {
	if ContainsDangerousFragment("total gdp by region") {
		t.Error("benign query flagged")
	}
	if !ContainsDangerousFragment("use .io for reading") {
		t.Error("dot io fragment missed")
	}
}
