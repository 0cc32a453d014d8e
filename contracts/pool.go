package contracts

import (
	"fmt"

	"github.com/archivechain/archivechain/safemath"
	"github.com/archivechain/archivechain/token"
)

const distributionWindowSeconds = 30 * 24 * 3600

// PoolData is PreservationPool's per-contract storage (spec §4.7).
type PoolData struct {
	TotalFunding       safemath.Decimal
	TargetArchives     []string
	RegisteredNodes    map[string][]string // node -> archives it claims to hold
	VerifiedThisWindow map[string]bool
	LastDistribution   uint64
}

func poolEscrowAddress(contractID string) string {
	return "arc-contract-" + contractID
}

// NewPreservationPool registers an empty PreservationPool over
// targetArchives; contributors fund it afterward via the "fund" call.
func NewPreservationPool(reg *Registry, id, creator string, targetArchives []string, now uint64) *Contract {
	c := &Contract{
		ID:        id,
		Creator:   creator,
		CreatedAt: now,
		State:     StateActive,
		Kind:      KindPool,
		Pool: &PoolData{
			TotalFunding:       safemath.Zero,
			TargetArchives:     targetArchives,
			RegisteredNodes:    make(map[string][]string),
			VerifiedThisWindow: make(map[string]bool),
		},
	}
	c.emit("PoolCreated", now, map[string]any{"creator": creator})
	reg.Put(c)
	return c
}

func isSuperset(held, target []string) bool {
	set := make(map[string]bool, len(held))
	for _, a := range held {
		set[a] = true
	}
	for _, a := range target {
		if !set[a] {
			return false
		}
	}
	return true
}

// callPool dispatches PreservationPool's functions (spec §4.7).
func callPool(ledger *token.Ledger, c *Contract, functionName string, params map[string]any, caller string, now uint64) error {
	if c.Pool == nil {
		return newErr(ErrInvalidContractCall, "contract has no pool data")
	}
	p := c.Pool
	if c.State != StateActive {
		return newErr(ErrInvalidContractCall, "pool is not active")
	}

	switch functionName {
	case "fund":
		amount, ok := params["amount"].(safemath.Decimal)
		if !ok {
			return newErr(ErrInvalidContractCall, "amount is required")
		}
		if err := ledger.Transfer(caller, poolEscrowAddress(c.ID), amount, safemath.Zero); err != nil {
			return err
		}
		next, err := safemath.Add(p.TotalFunding, amount)
		if err != nil {
			return err
		}
		p.TotalFunding = next
		c.emit("PoolFunded", now, map[string]any{"contributor": caller, "amount": amount.String()})
		return nil

	case "registerNode":
		archives, _ := params["archives"].([]string)
		if !isSuperset(archives, p.TargetArchives) {
			return newErr(ErrInvalidContractCall, "node does not hold a superset of the target archives")
		}
		p.RegisteredNodes[caller] = archives
		c.emit("NodeRegistered", now, map[string]any{"node": caller})
		return nil

	case "verifyNode":
		node, _ := params["node"].(string)
		if _, registered := p.RegisteredNodes[node]; !registered {
			return newErr(ErrInvalidContractCall, "node is not registered")
		}
		p.VerifiedThisWindow[node] = true
		c.emit("NodeVerified", now, map[string]any{"node": node})
		return nil

	case "distributeRewards":
		if p.LastDistribution != 0 && now-p.LastDistribution < distributionWindowSeconds {
			return nil // idempotent within the 30-day window
		}
		preservers := make([]string, 0, len(p.VerifiedThisWindow))
		for node, verified := range p.VerifiedThisWindow {
			if verified {
				preservers = append(preservers, node)
			}
		}
		if len(preservers) == 0 {
			p.LastDistribution = now
			return nil
		}
		monthlyReward, err := safemath.Divide(p.TotalFunding, safemath.FromWhole(12))
		if err != nil {
			return err
		}
		share, err := safemath.Divide(monthlyReward, safemath.FromWhole(int64(len(preservers))))
		if err != nil {
			return err
		}
		escrow := poolEscrowAddress(c.ID)
		for _, node := range preservers {
			if err := ledger.Transfer(escrow, node, share, safemath.Zero); err != nil {
				return err
			}
		}
		debited, err := safemath.Multiply(share, safemath.FromWhole(int64(len(preservers))))
		if err != nil {
			return err
		}
		remaining, err := safemath.Subtract(p.TotalFunding, debited)
		if err != nil {
			return err
		}
		p.TotalFunding = remaining
		p.VerifiedThisWindow = make(map[string]bool)
		p.LastDistribution = now
		c.emit("RewardsDistributed", now, map[string]any{"preservers": preservers, "share": share.String()})
		return nil

	default:
		return newErr(ErrInvalidContractCall, fmt.Sprintf("unknown pool function %q", functionName))
	}
}
