package safemath

import "testing"

func TestParseAndString(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"100", "100.000000"},
		{"100.5", "100.500000"},
		{"0.000001", "0.000001"},
		{"0.0000015", "0.000001"}, // truncated, not rounded up
		{"-5.25", "-5.250000"},
		{"0", "0.000000"},
	}
	for _, tc := range cases {
		d, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.in, err)
		}
		if got := d.String(); got != tc.want {
			t.Errorf("Parse(%q).String() = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "1.2.3", "--1"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) expected error, got nil", in)
		}
	}
}

func TestAddOverflow(t *testing.T) {
	if _, err := Add(MaxTokenSupply, FromWhole(1)); err == nil {
		t.Fatal("expected overflow error")
	}
	sum, err := Add(FromWhole(1), FromWhole(2))
	if err != nil {
		t.Fatal(err)
	}
	if sum.String() != "3.000000" {
		t.Errorf("got %s", sum.String())
	}
}

func TestSubtractUnderflow(t *testing.T) {
	if _, err := Subtract(FromWhole(1), FromWhole(2)); err == nil {
		t.Fatal("expected underflow error")
	}
}

func TestDivideByZero(t *testing.T) {
	if _, err := Divide(FromWhole(1), Zero); err == nil {
		t.Fatal("expected division by zero error")
	}
}

func TestMultiplyRoundsDown(t *testing.T) {
	// 1.000001 * 0.5 = 0.5000005 -> truncates to 0.500000
	a, _ := Parse("1.000001")
	half := FromScaledUnits(500_000)
	got, err := Multiply(a, half)
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "0.500000" {
		t.Errorf("got %s", got.String())
	}
}

func TestPercentage(t *testing.T) {
	// A 40% share of MaxTokenSupply: the raw amount*pct product
	// (1,000,000,000 * 40) vastly exceeds MaxTokenSupply, but the
	// post-division result does not and must not be rejected.
	got, err := Percentage(MaxTokenSupply, FromWhole(40))
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "400000000.000000" {
		t.Errorf("got %s", got.String())
	}

	got, err = Percentage(FromWhole(200), FromWhole(50))
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "100.000000" {
		t.Errorf("got %s", got.String())
	}
}

func TestRewardClamp(t *testing.T) {
	got, err := Reward(FromWhole(50_000))
	if err != nil {
		t.Fatal(err)
	}
	if got.Cmp(MaxRewardAmount) != 0 {
		t.Errorf("expected clamp to MaxRewardAmount, got %s", got.String())
	}
}

func TestValidateBalanceOperation(t *testing.T) {
	if err := ValidateBalanceOperation(FromWhole(10), FromWhole(5), Debit); err != nil {
		t.Fatal(err)
	}
	if err := ValidateBalanceOperation(FromWhole(10), FromWhole(11), Debit); err == nil {
		t.Fatal("expected underflow")
	}
	if err := ValidateBalanceOperation(MaxTokenSupply, FromWhole(1), Credit); err == nil {
		t.Fatal("expected overflow")
	}
}
