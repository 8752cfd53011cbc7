package filter

import "testing"

func TestRestrict(t *testing.T) {
	tests := []struct {
		name       string
		courts     []string
		area       string
		since      int
		wantMust   int
		wantShould int
	}{
		{"nothing", nil, "", 0, 0, 0},
		{"single court is must", []string{"Hoge Raad"}, "", 0, 1, 0},
		{"several courts are should", []string{"Hoge Raad", " ", "Gerechtshof Amsterdam"}, "", 0, 0, 2},
		{"area and year", nil, "Huurrecht", 2015, 2, 0},
		{"all", []string{"Hoge Raad", "Gerechtshof Den Haag"}, "Huurrecht", 2015, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := Restrict(tt.courts, tt.area, tt.since)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(expr.Must()) != tt.wantMust || len(expr.Should()) != tt.wantShould {
				t.Errorf("must=%d should=%d, want %d/%d", len(expr.Must()), len(expr.Should()), tt.wantMust, tt.wantShould)
			}
		})
	}
}

func TestRestrict_Since(t *testing.T) {
	expr, err := Restrict(nil, "", 2019)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := expr.Must()[0].String(); got != "decision_year:[2019,+inf)" {
		t.Errorf("got %q", got)
	}
}
