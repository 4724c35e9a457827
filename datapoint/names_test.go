package datapoint

import "testing"

func TestLookupPointKnownAndUnknown(t *testing.T) {
	p, err := LookupPoint("grid_power")
	if err != nil {
		t.Fatal(err)
	}
	if p != GridPower {
		t.Fatalf("got %#04x, want GridPower", p)
	}
	if _, err := LookupPoint("not_a_point"); err == nil {
		t.Fatal("expected error for unknown point name")
	}
}

func TestLookupAveragingRoundTripsWithString(t *testing.T) {
	for _, a := range []Averaging{Current, Ms20, Ms100, S1, S30, Min1, Min10, Min30, Hr1, Hr24} {
		got, err := LookupAveraging(a.String())
		if err != nil {
			t.Fatalf("LookupAveraging(%q): %v", a.String(), err)
		}
		if got != a {
			t.Fatalf("LookupAveraging(%q) = %v, want %v", a.String(), got, a)
		}
	}
	if _, err := LookupAveraging("bogus"); err == nil {
		t.Fatal("expected error for unknown averaging name")
	}
}

func TestPointNamesNonEmpty(t *testing.T) {
	names := PointNames()
	if len(names) == 0 {
		t.Fatal("PointNames() returned none")
	}
}
