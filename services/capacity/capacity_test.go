package capacity

import "testing"

func TestPeriodsFor_Layouts(t *testing.T) {
	tests := []struct {
		packageType int
		periods     int
		ceiling     int
		first       string
		last        string
	}{
		{8, 4, 15, "08:00–11:00", "17:00–20:00"},
		{10, 3, 10, "08:00–12:00", "16:00–20:00"},
		{12, 2, 5, "08:00–14:00", "14:00–20:00"},
	}

	for _, tt := range tests {
		periods := PeriodsFor(tt.packageType)
		if len(periods) != tt.periods {
			t.Errorf("package %d: got %d periods, want %d", tt.packageType, len(periods), tt.periods)
		}
		if periods[0].Label != tt.first {
			t.Errorf("package %d: first period %q, want %q", tt.packageType, periods[0].Label, tt.first)
		}
		if periods[len(periods)-1].Label != tt.last {
			t.Errorf("package %d: last period %q, want %q", tt.packageType, periods[len(periods)-1].Label, tt.last)
		}
		if got := CeilingFor(tt.packageType); got != tt.ceiling {
			t.Errorf("package %d: ceiling %d, want %d", tt.packageType, got, tt.ceiling)
		}
	}
}

func TestPeriodsFor_ContiguousAndOrdered(t *testing.T) {
	for _, pkg := range PackageTypes() {
		periods := PeriodsFor(pkg)
		for i, p := range periods {
			if p.Start >= p.End {
				t.Errorf("package %d period %q: start %d not before end %d", pkg, p.Label, p.Start, p.End)
			}
			if i > 0 && periods[i-1].End != p.Start {
				t.Errorf("package %d: gap between %q and %q", pkg, periods[i-1].Label, p.Label)
			}
		}
		if periods[0].Start != 8*60 {
			t.Errorf("package %d: day starts at %d, want 08:00", pkg, periods[0].Start)
		}
		if periods[len(periods)-1].End != 20*60 {
			t.Errorf("package %d: day ends at %d, want 20:00", pkg, periods[len(periods)-1].End)
		}
	}
}

func TestFindPeriod(t *testing.T) {
	p, ok := FindPeriod(8, "11:00–14:00")
	if !ok {
		t.Fatalf("FindPeriod(8, 11:00–14:00) not found")
	}
	if p.Start != 11*60 || p.End != 14*60 {
		t.Errorf("unexpected bounds: %d–%d", p.Start, p.End)
	}

	// Labels belong to a single layout; a label from another package must not resolve.
	if _, ok := FindPeriod(8, "08:00–12:00"); ok {
		t.Errorf("10-visit period resolved under package 8")
	}
}

func TestUnknownPackagePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("PeriodsFor(9) did not panic")
		}
	}()
	PeriodsFor(9)
}
