package token

import (
	"testing"

	"github.com/archivechain/archivechain/safemath"
)

func parseOrFatal(t *testing.T, s string) safemath.Decimal {
	t.Helper()
	d, err := safemath.Parse(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func safemathHugeAmount() (safemath.Decimal, error) {
	return safemath.MaxTokenSupply, nil
}
