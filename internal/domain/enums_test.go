package domain

import "testing"

func TestConvention_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		conv Convention
		want bool
	}{
		{ConventionJSON, true},
		{ConventionGenericText, true},
		{ConventionBNatureTestList, true},
		{ConventionBNLITTestAnnotation, true},
		{ConventionIrrelevant, true},
		{Convention("XML"), false},
		{Convention(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.conv), func(t *testing.T) {
			t.Parallel()
			if got := tt.conv.IsValid(); got != tt.want {
				t.Errorf("Convention(%q).IsValid() = %v, want %v", tt.conv, got, tt.want)
			}
		})
	}
}

func TestConvention_String(t *testing.T) {
	t.Parallel()
	if got := ConventionBNatureTestList.String(); got != "BNATURE_TEST_LIST" {
		t.Errorf("got %q, want BNATURE_TEST_LIST", got)
	}
}
