package catalog

import "testing"

func TestApplyWear(t *testing.T) {
	cases := []struct {
		name       string
		durability int
		wear       int
		want       int
		wantStatus Status
	}{
		{"partial wear", 100, 10, 90, StatusAvailable},
		{"wear to exactly zero", 10, 10, 0, StatusBroken},
		{"wear past zero clamps", 3, 10, 0, StatusBroken},
		{"zero wear", 50, 0, 50, StatusAvailable},
		{"already worn out", 0, 10, 0, StatusBroken},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, status := applyWear(c.durability, c.wear)
			if got != c.want {
				t.Fatalf("durability = %d, want %d", got, c.want)
			}
			if got < 0 {
				t.Fatalf("durability went negative: %d", got)
			}
			if status != c.wantStatus {
				t.Fatalf("status = %s, want %s", status, c.wantStatus)
			}
		})
	}
}
