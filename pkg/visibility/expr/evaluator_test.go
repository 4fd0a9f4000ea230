package expr

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tourforms/pkg/visibility"
)

func TestEvaluatorStringComparison(t *testing.T) {
	t.Parallel()

	eval := New()

	ok, err := eval.Eval("country", `tourType == "International"`, visibility.Context{
		Values: map[string]any{"tourType": "International"},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected true")
	}

	ok, err = eval.Eval("country", `tourType == 'International'`, visibility.Context{
		Values: map[string]any{"tourType": "Domestic"},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected false for Domestic")
	}
}

func TestEvaluatorConjunction(t *testing.T) {
	t.Parallel()

	rule := `businessType == "B2B" && source == "Referral"`
	cases := []struct {
		name   string
		values map[string]any
		want   bool
	}{
		{name: "both hold", values: map[string]any{"businessType": "B2B", "source": "Referral"}, want: true},
		{name: "wrong source", values: map[string]any{"businessType": "B2B", "source": "Direct"}, want: false},
		{name: "wrong business type", values: map[string]any{"businessType": "B2C", "source": "Referral"}, want: false},
		{name: "missing values", values: map[string]any{}, want: false},
	}

	eval := New()
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := eval.Eval("referralBy", rule, visibility.Context{Values: tc.values})
			if err != nil {
				t.Fatalf("Eval returned error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestEvaluatorTruthyNotAndRadioBooleans(t *testing.T) {
	t.Parallel()

	eval := New()

	ok, err := eval.Eval("x", "!country", visibility.Context{Values: map[string]any{"country": "  "}})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected blank string to be falsy")
	}

	ok, err = eval.Eval("x", "transport == true", visibility.Context{Values: map[string]any{"transport": "Yes"}})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected Yes to compare equal to true")
	}

	ok, err = eval.Eval("x", "dob", visibility.Context{Values: map[string]any{"dob": time.Time{}}})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected zero date to be falsy")
	}
}

func TestEvaluatorNullAndNumbers(t *testing.T) {
	t.Parallel()

	eval := New()

	ok, err := eval.Eval("x", "dob == null", visibility.Context{Values: map[string]any{"dob": nil}})
	if err != nil || !ok {
		t.Fatalf("expected nil date to equal null, got %v (%v)", ok, err)
	}

	ok, err = eval.Eval("x", "adults != 0", visibility.Context{Values: map[string]any{"adults": "2"}})
	if err != nil || !ok {
		t.Fatalf("expected numeric string compare, got %v (%v)", ok, err)
	}
}

func TestEvaluatorInList(t *testing.T) {
	t.Parallel()

	eval := New()
	rule := `source in ("Referral", "Website") || extras.role == "admin"`

	ok, err := eval.Eval("x", rule, visibility.Context{Values: map[string]any{"source": "Website"}})
	if err != nil || !ok {
		t.Fatalf("expected membership match, got %v (%v)", ok, err)
	}

	ok, err = eval.Eval("x", rule, visibility.Context{
		Values: map[string]any{"source": "Direct"},
		Extras: map[string]any{"role": "admin"},
	})
	if err != nil || !ok {
		t.Fatalf("expected extras fallback, got %v (%v)", ok, err)
	}

	ok, err = eval.Eval("x", rule, visibility.Context{Values: map[string]any{"source": "Direct"}})
	if err != nil || ok {
		t.Fatalf("expected false, got %v (%v)", ok, err)
	}
}

func TestCompileDependencies(t *testing.T) {
	t.Parallel()

	program, err := Compile(`(businessType == "B2B" && source == Referral) || !businessType`)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"businessType", "source"}, program.Dependencies()); diff != "" {
		t.Fatalf("dependencies mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileEmptyRuleAlwaysHolds(t *testing.T) {
	t.Parallel()

	program, err := Compile("   ")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	ok, err := program.Eval(visibility.Context{})
	if err != nil || !ok {
		t.Fatalf("expected empty program to hold, got %v (%v)", ok, err)
	}
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	for _, rule := range []string{
		`tourType = "International"`,
		`tourType == "International`,
		`(tourType == "International"`,
		`a & b`,
		`source in "Referral"`,
		`== "x"`,
	} {
		if _, err := Compile(rule); err == nil {
			t.Fatalf("expected error for %q", rule)
		}
	}
}

func TestEvaluatorAnnotatesFieldOnError(t *testing.T) {
	t.Parallel()

	_, err := New().Eval("country", `tourType = 1`, visibility.Context{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := err.Error(); got[:len("country: ")] != "country: " {
		t.Fatalf("expected field prefix, got %q", got)
	}
}
