package metrics

import "testing"

func TestCost(t *testing.T) {
	party := []AdventurerInput{
		{DailyRate: 100, Experience: 10},
		{DailyRate: 150, Experience: 20},
	}

	if got := Cost(party, 5); got != 1250 {
		t.Fatalf("Cost = %d, want 1250", got)
	}

	// Cost scales linearly with the duration.
	if got := Cost(party, 10); got != 2500 {
		t.Fatalf("Cost with doubled duration = %d, want 2500", got)
	}

	if got := Cost(nil, 5); got != 0 {
		t.Fatalf("Cost with no adventurers = %d, want 0", got)
	}
}

func TestContribution(t *testing.T) {
	tests := []struct {
		name          string
		experience    int
		recommendedXP int
		want          float64
	}{
		{"half", 50, 100, 0.5},
		{"saturated", 150, 100, 1},
		{"exact", 100, 100, 1},
		{"zero experience", 0, 100, 0},
		{"negative experience", -5, 100, 0},
		{"zero recommended xp", 50, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Contribution(tt.experience, tt.recommendedXP); got != tt.want {
				t.Fatalf("Contribution(%d, %d) = %v, want %v", tt.experience, tt.recommendedXP, got, tt.want)
			}
		})
	}
}

func TestSuccessRate(t *testing.T) {
	tests := []struct {
		name          string
		adventurers   []AdventurerInput
		recommendedXP int
		want          float64
	}{
		{
			name:        "empty party",
			adventurers: nil, recommendedXP: 100,
			want: 0,
		},
		{
			// Contributions 0.5 + 0.3 = 0.8 against denominator 1.6.
			name: "two partially experienced",
			adventurers: []AdventurerInput{
				{Experience: 50}, {Experience: 30},
			},
			recommendedXP: 100,
			want:          0.40,
		},
		{
			// Two fully experienced adventurers saturate the cap.
			name: "saturated pair",
			adventurers: []AdventurerInput{
				{Experience: 100}, {Experience: 200},
			},
			recommendedXP: 100,
			want:          0.80,
		},
		{
			// Single veteran: denominator clamps at 1, still capped at 0.80.
			name:          "single veteran",
			adventurers:   []AdventurerInput{{Experience: 500}},
			recommendedXP: 100,
			want:          0.80,
		},
		{
			name: "recommended xp zero",
			adventurers: []AdventurerInput{
				{Experience: 50}, {Experience: 30},
			},
			recommendedXP: 0,
			want:          0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuccessRate(tt.adventurers, tt.recommendedXP)
			if got != tt.want {
				t.Fatalf("SuccessRate = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 0.80 {
				t.Fatalf("SuccessRate = %v, out of [0, 0.80]", got)
			}
		})
	}
}

func TestDecomposeAmount(t *testing.T) {
	tests := []struct {
		amount   int64
		hundreds int64
		tens     int64
		units    int64
	}{
		{1250, 12, 5, 0},
		{0, 0, 0, 0},
		{7, 0, 0, 7},
		{99, 0, 9, 9},
		{100, 1, 0, 0},
		{54321, 543, 2, 1},
	}
	for _, tt := range tests {
		d := DecomposeAmount(tt.amount)
		if d.Hundreds != tt.hundreds || d.Tens != tt.tens || d.Units != tt.units {
			t.Fatalf("DecomposeAmount(%d) = %+v, want {%d %d %d}", tt.amount, d, tt.hundreds, tt.tens, tt.units)
		}
		if back := ComposeAmount(d); back != tt.amount {
			t.Fatalf("ComposeAmount(%+v) = %d, want %d", d, back, tt.amount)
		}
	}
}
