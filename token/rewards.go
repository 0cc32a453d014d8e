package token

import (
	"fmt"
	"strings"

	"github.com/archivechain/archivechain/safemath"
)

// decimalFromFloat converts a float64 reward-curve input (rarity, size,
// duration) into a Decimal at the API boundary; every reward curve below
// computes entirely in fixed-point from this point on (spec §4.2 "all
// monetary arithmetic uses fixed-point decimal").
func decimalFromFloat(f float64) (safemath.Decimal, error) {
	return safemath.Parse(fmt.Sprintf("%.6f", f))
}

// clampDecimal bounds x into [lo, hi].
func clampDecimal(x, lo, hi safemath.Decimal) safemath.Decimal {
	if x.Cmp(lo) < 0 {
		return lo
	}
	if x.Cmp(hi) > 0 {
		return hi
	}
	return x
}

// interpolateDecimal returns lo + (hi-lo)*t for t in [0,1], via
// safemath.Subtract/Multiply/Add rather than bare float64 arithmetic.
func interpolateDecimal(lo, hi, t safemath.Decimal) (safemath.Decimal, error) {
	span, err := safemath.Subtract(hi, lo)
	if err != nil {
		return safemath.Decimal{}, err
	}
	scaled, err := safemath.Multiply(span, t)
	if err != nil {
		return safemath.Decimal{}, err
	}
	return safemath.Add(lo, scaled)
}

// contentTypeMultiplier returns the reward multiplier for a MIME content
// type (spec §4.4): html 1.0, pdf 1.2, video/* 0.8, image/* 0.9, json 1.1,
// else 1.0.
func contentTypeMultiplier(contentType string) safemath.Decimal {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "html"):
		return safemath.FromScaledUnits(1_000_000)
	case strings.Contains(ct, "pdf"):
		return safemath.FromScaledUnits(1_200_000)
	case strings.HasPrefix(ct, "video/"):
		return safemath.FromScaledUnits(800_000)
	case strings.HasPrefix(ct, "image/"):
		return safemath.FromScaledUnits(900_000)
	case strings.Contains(ct, "json"):
		return safemath.FromScaledUnits(1_100_000)
	default:
		return safemath.FromScaledUnits(1_000_000)
	}
}

// InitialArchiveReward computes the reward for a first-time archive
// capture (spec §4.4): a base range [100,500] ARC interpolated by archive
// size, scaled by a clamped rarity factor and a content-type multiplier,
// then clamped to MAX_REWARD_AMOUNT.
func InitialArchiveReward(sizeBytes int64, rarity float64, contentType string) (safemath.Decimal, error) {
	sizeFrac, err := safemath.Divide(safemath.FromWhole(sizeBytes), safemath.FromWhole(100*1024*1024))
	if err != nil {
		return safemath.Decimal{}, err
	}
	sizeFrac = clampDecimal(sizeFrac, safemath.Zero, safemath.FromWhole(1))

	base, err := interpolateDecimal(safemath.FromWhole(100), safemath.FromWhole(500), sizeFrac)
	if err != nil {
		return safemath.Decimal{}, err
	}

	rarityDecimal, err := decimalFromFloat(rarity)
	if err != nil {
		return safemath.Decimal{}, err
	}
	rarityFactor := clampDecimal(rarityDecimal, safemath.FromScaledUnits(100_000), safemath.FromWhole(2))

	reward, err := safemath.Multiply(base, rarityFactor)
	if err != nil {
		return safemath.Decimal{}, err
	}
	reward, err = safemath.Multiply(reward, contentTypeMultiplier(contentType))
	if err != nil {
		return safemath.Decimal{}, err
	}
	return safemath.Reward(reward)
}

// MonthlyStorageReward computes the per-archive monthly storage reward
// (spec §4.4): a per-GiB-month rate interpolated from [10,50] ARC by
// clamp(size_gb/100, 0, 1), multiplied by size in GiB and months held.
func MonthlyStorageReward(sizeGB float64, months float64) (safemath.Decimal, error) {
	sizeGBDecimal, err := decimalFromFloat(sizeGB)
	if err != nil {
		return safemath.Decimal{}, err
	}
	monthsDecimal, err := decimalFromFloat(months)
	if err != nil {
		return safemath.Decimal{}, err
	}

	ratio, err := safemath.Divide(sizeGBDecimal, safemath.FromWhole(100))
	if err != nil {
		return safemath.Decimal{}, err
	}
	ratio = clampDecimal(ratio, safemath.Zero, safemath.FromWhole(1))

	rate, err := interpolateDecimal(safemath.FromWhole(10), safemath.FromWhole(50), ratio)
	if err != nil {
		return safemath.Decimal{}, err
	}

	reward, err := safemath.Multiply(rate, sizeGBDecimal)
	if err != nil {
		return safemath.Decimal{}, err
	}
	reward, err = safemath.Multiply(reward, monthsDecimal)
	if err != nil {
		return safemath.Decimal{}, err
	}
	return safemath.Reward(reward)
}

// BandwidthReward computes the bandwidth-serving reward (spec §4.4): a
// per-GiB-served rate interpolated from [1,5] ARC by clamp(gb/1000, 0, 1).
func BandwidthReward(gbServed float64) (safemath.Decimal, error) {
	gbDecimal, err := decimalFromFloat(gbServed)
	if err != nil {
		return safemath.Decimal{}, err
	}

	ratio, err := safemath.Divide(gbDecimal, safemath.FromWhole(1000))
	if err != nil {
		return safemath.Decimal{}, err
	}
	ratio = clampDecimal(ratio, safemath.Zero, safemath.FromWhole(1))

	rate, err := interpolateDecimal(safemath.FromWhole(1), safemath.FromWhole(5), ratio)
	if err != nil {
		return safemath.Decimal{}, err
	}

	reward, err := safemath.Multiply(rate, gbDecimal)
	if err != nil {
		return safemath.Decimal{}, err
	}
	return safemath.Reward(reward)
}

// DiscoveryReward computes the discovery-bounty reward (spec §4.4):
// 25 + rarity * 75 ARC.
func DiscoveryReward(rarity float64) (safemath.Decimal, error) {
	rarityDecimal, err := decimalFromFloat(rarity)
	if err != nil {
		return safemath.Decimal{}, err
	}
	term, err := safemath.Multiply(rarityDecimal, safemath.FromWhole(75))
	if err != nil {
		return safemath.Decimal{}, err
	}
	reward, err := safemath.Add(safemath.FromWhole(25), term)
	if err != nil {
		return safemath.Decimal{}, err
	}
	return safemath.Reward(reward)
}

// MiningReward is the fixed coinbase reward paid to a block's producer
// (spec §4.8): 50 ARC, minted outside any pool (spec §9 open question).
var MiningReward = safemath.FromWhole(50)
