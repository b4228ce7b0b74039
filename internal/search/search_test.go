package search

import "testing"

func TestFieldSetRejectsOverflowAndDuplicates(t *testing.T) {
	var fs FieldSet
	for _, f := range []Field{FieldDescription, FieldName, FieldVendor, FieldModel, FieldSerial} {
		if err := fs.TryInsert(f); err != nil {
			t.Fatalf("TryInsert(%v) = %v, want nil", f, err)
		}
	}
	var partial FieldSet
	partial.TryInsert(FieldDescription)
	if err := partial.TryInsert(FieldDescription); err != ErrFieldAlreadyInside {
		t.Errorf("duplicate insert: got %v, want ErrFieldAlreadyInside", err)
	}

	var full FieldSet
	full.FillDefault()
	if err := full.TryInsert(FieldDescription); err != ErrFieldSetFull {
		t.Errorf("overflow insert: got %v, want ErrFieldSetFull", err)
	}
}

func TestSingleSearchTextFormRoundTrip(t *testing.T) {
	cases := []string{"/eDP-1", "%HDMI", "=Generic Monitor", "dnm/Dell.*", "v=Dell"}
	for _, s := range cases {
		ss, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", s, err)
		}
		if got := ss.String(); got != s {
			t.Errorf("round trip %q: got %q", s, got)
		}
	}
}

func TestMultiSearchTextFormRoundTrip(t *testing.T) {
	cases := []string{"n=eDP-1", "n=DP-1;v%Dell", "d/HDMI.*;%27GL850;s=12345"}
	for _, s := range cases {
		ms, err := ParseMulti(s)
		if err != nil {
			t.Fatalf("ParseMulti(%q) error: %v", s, err)
		}
		if got := ms.String(); got != s {
			t.Errorf("round trip %q: got %q", s, got)
		}
	}
}

func TestMultiSearchRequiresEveryInnerMatch(t *testing.T) {
	ms, err := ParseMulti("n=eDP-1;v=Acme")
	if err != nil {
		t.Fatal(err)
	}
	if !ms.Run(Query{Name: "eDP-1", Vendor: "Acme"}).IsOK() {
		t.Error("expected both inner searches to match")
	}
	if ms.Run(Query{Name: "eDP-1", Vendor: "Other"}).IsOK() {
		t.Error("expected failure when one inner search misses")
	}
}

func TestSubstringWeightFavorsLongerNeedle(t *testing.T) {
	short := Pattern{Kind: KindSubstring, Literal: "DP"}
	long := Pattern{Kind: KindSubstring, Literal: "eDP-1"}
	_, wShort := short.Matches("eDP-1")
	_, wLong := long.Matches("eDP-1")
	if wLong <= wShort {
		t.Errorf("expected longer needle to score higher: short=%d long=%d", wShort, wLong)
	}
}

func TestSingleSearchIsOK(t *testing.T) {
	var fs FieldSet
	fs.TryInsert(FieldName)
	fs.TryInsert(FieldVendor)
	ss := SingleSearch{
		Fields:  fs,
		Pattern: Pattern{Kind: KindFulltext, Literal: "eDP-1"},
		Method:  Exact,
	}
	q := Query{Name: "eDP-1", Vendor: "Acme"}
	res := ss.Run(q)
	if res.IsOK() {
		t.Fatal("expected Exact to fail: vendor literal does not match \"eDP-1\"")
	}

	atLeastOne := ss
	atLeastOne.Method = AtLeastOne
	res = atLeastOne.Run(q)
	if !res.IsOK() {
		t.Fatal("expected AtLeastOne to succeed on name match alone")
	}
}

func TestSpecificityOrdersByFieldPosition(t *testing.T) {
	var fs FieldSet
	fs.TryInsert(FieldVendor)
	fs.TryInsert(FieldName)
	ss := SingleSearch{Fields: fs, Pattern: Pattern{Kind: KindSubstring, Literal: "X"}, Method: Exact}

	// Both fields match; the first satisfied field (vendor) carries the
	// larger positional multiplier, so the better match there ranks higher.
	vendorBetter := ss.Run(Query{Vendor: "X", Name: "XXXX"})
	nameBetter := ss.Run(Query{Vendor: "XXXX", Name: "X"})
	if vendorBetter.Specificity() <= nameBetter.Specificity() {
		t.Errorf("vendor (satisfied first) should outweigh name: vendor-better=%d name-better=%d",
			vendorBetter.Specificity(), nameBetter.Specificity())
	}
}

func TestFieldSetDefaultWeightFallback(t *testing.T) {
	var empty FieldSet
	w, ok := empty.Weight(FieldDescription)
	if !ok {
		t.Fatal("expected default weight for Description")
	}
	wName, _ := empty.Weight(FieldName)
	if w <= wName {
		t.Errorf("Description should outweigh Name in default order: %d <= %d", w, wName)
	}
}
