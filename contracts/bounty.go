package contracts

import (
	"fmt"

	"github.com/archivechain/archivechain/safemath"
	"github.com/archivechain/archivechain/token"
)

// BountyStatus is ArchiveBounty's sub-state within the generic Active
// lifecycle state (spec §4.7).
type BountyStatus string

const (
	BountyOpen       BountyStatus = "Open"
	BountyInProgress BountyStatus = "InProgress"
)

const requiredBountyVotes = 3

// BountyData is ArchiveBounty's per-contract storage (spec §4.7).
type BountyData struct {
	Reward      safemath.Decimal
	Deadline    uint64
	Status      BountyStatus
	Claimant    string
	ArchiveHash string
	Votes       []bool
}

// NewArchiveBounty escrows reward out of creator's balance into the
// contract's own address and registers a new ArchiveBounty contract in
// state Open.
func NewArchiveBounty(reg *Registry, ledger *token.Ledger, id, creator string, reward safemath.Decimal, deadline, now uint64) (*Contract, error) {
	contractAddr := bountyEscrowAddress(id)
	if err := ledger.Transfer(creator, contractAddr, reward, safemath.Zero); err != nil {
		return nil, err
	}
	c := &Contract{
		ID:        id,
		Creator:   creator,
		CreatedAt: now,
		State:     StateActive,
		Kind:      KindBounty,
		Bounty: &BountyData{
			Reward:   reward,
			Deadline: deadline,
			Status:   BountyOpen,
		},
	}
	c.emit("BountyCreated", now, map[string]any{"creator": creator, "reward": reward.String()})
	reg.Put(c)
	return c, nil
}

func bountyEscrowAddress(contractID string) string {
	return "arc-contract-" + contractID
}

// callBounty dispatches ArchiveBounty's functions (spec §4.7).
func callBounty(ledger *token.Ledger, c *Contract, functionName string, params map[string]any, caller string, now uint64) error {
	if c.Bounty == nil {
		return newErr(ErrInvalidContractCall, "contract has no bounty data")
	}
	b := c.Bounty

	// now > deadline transitions Open -> Expired at next interaction,
	// regardless of which function was called.
	if c.State == StateActive && b.Status == BountyOpen && now > b.Deadline {
		c.State = StateExpired
		c.emit("BountyExpired", now, nil)
	}

	switch functionName {
	case "claimBounty":
		if c.State != StateActive || b.Status != BountyOpen {
			return newErr(ErrInvalidContractCall, "bounty is not open")
		}
		hash, _ := params["archive_hash"].(string)
		if hash == "" {
			return newErr(ErrInvalidContractCall, "archive_hash is required")
		}
		b.Status = BountyInProgress
		b.Claimant = caller
		b.ArchiveHash = hash
		b.Votes = nil
		c.emit("BountyClaimed", now, map[string]any{"claimant": caller, "archive_hash": hash})
		return nil

	case "verifySubmission":
		if c.State != StateActive || b.Status != BountyInProgress {
			return newErr(ErrInvalidContractCall, "bounty is not awaiting verification")
		}
		vote, ok := params["is_valid"].(bool)
		if !ok {
			return newErr(ErrInvalidContractCall, "is_valid is required")
		}
		b.Votes = append(b.Votes, vote)
		if len(b.Votes) < requiredBountyVotes {
			return nil
		}
		trueVotes := 0
		for _, v := range b.Votes {
			if v {
				trueVotes++
			}
		}
		if trueVotes*2 > len(b.Votes) {
			contractAddr := bountyEscrowAddress(c.ID)
			if err := ledger.Transfer(contractAddr, b.Claimant, b.Reward, safemath.Zero); err != nil {
				return err
			}
			c.State = StateCompleted
			c.emit("BountyCompleted", now, map[string]any{"claimant": b.Claimant, "reward": b.Reward.String()})
		} else {
			b.Status = BountyOpen
			b.Claimant = ""
			b.ArchiveHash = ""
			b.Votes = nil
			c.emit("BountyRejected", now, nil)
		}
		return nil

	case "cancelBounty":
		if caller != c.Creator {
			return newErr(ErrInvalidContractCall, "only the creator may cancel")
		}
		if c.State != StateActive || (b.Status != BountyOpen && b.Status != BountyInProgress) {
			return newErr(ErrInvalidContractCall, "bounty cannot be cancelled in its current state")
		}
		contractAddr := bountyEscrowAddress(c.ID)
		if err := ledger.Transfer(contractAddr, c.Creator, b.Reward, safemath.Zero); err != nil {
			return err
		}
		c.State = StateCancelled
		c.emit("BountyCancelled", now, nil)
		return nil

	default:
		return newErr(ErrInvalidContractCall, fmt.Sprintf("unknown bounty function %q", functionName))
	}
}
