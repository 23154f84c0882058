package domain

import "testing"

func TestRRClass_Mnemonic(t *testing.T) {
	cases := []struct {
		value RRClass
		want  string
	}{
		{1, "IN"}, {2, "CS"}, {3, "CH"}, {4, "HS"}, {255, "ANY"},
		{0, "IN"}, {5, "IN"}, {254, "IN"}, {1000, "IN"},
	}
	for _, tc := range cases {
		if got := tc.value.Mnemonic(); got != tc.want {
			t.Errorf("Mnemonic(%d) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestRRClass_StringAndKnown(t *testing.T) {
	if RRClassCH.String() != "CH" || !RRClassCH.IsKnown() {
		t.Errorf("CH: got %q known=%v", RRClassCH.String(), RRClassCH.IsKnown())
	}
	if got := RRClass(254).String(); got != "CLASS254" {
		t.Errorf("String(254) = %q", got)
	}
	if RRClass(254).IsKnown() {
		t.Errorf("IsKnown(254) = true")
	}
}

func TestRRClassFromMnemonic(t *testing.T) {
	for code, name := range rrClassMnemonics {
		got, ok := RRClassFromMnemonic(name)
		if !ok || got != code {
			t.Errorf("RRClassFromMnemonic(%q) = %d,%v want %d,true", name, got, ok, code)
		}
	}
	if _, ok := RRClassFromMnemonic("NONE"); ok {
		t.Errorf("RRClassFromMnemonic(NONE) unexpectedly ok")
	}
}
