package matchup

import "testing"

func TestMoneyline(t *testing.T) {
	tests := []struct {
		prob float64
		want int64
	}{
		{0.5, -100},
		{0.75, -300},
		{0.25, 300},
		{0.6, -150},
		{0.4, 150},
		{0.740775, -286},
	}

	for _, tt := range tests {
		if got := Moneyline(tt.prob); got != tt.want {
			t.Errorf("Moneyline(%v) = %v, want %v", tt.prob, got, tt.want)
		}
	}
}

func TestDecimalOdds(t *testing.T) {
	tests := []struct {
		prob float64
		want string
	}{
		{0.5, "2"},
		{0.25, "4"},
		{0.8, "1.25"},
	}

	for _, tt := range tests {
		if got := DecimalOdds(tt.prob); got.String() != tt.want {
			t.Errorf("DecimalOdds(%v) = %s, want %s", tt.prob, got, tt.want)
		}
	}
}

func TestMoneylines_Complementary(t *testing.T) {
	r := Result{AwayWinProbability: 0.3, HomeWinProbability: 0.7}
	pair := Moneylines(r)

	if pair.Away <= 0 {
		t.Errorf("Away = %v, want positive underdog line", pair.Away)
	}
	if pair.Home >= 0 {
		t.Errorf("Home = %v, want negative favorite line", pair.Home)
	}
}
