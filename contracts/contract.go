// Package contracts implements ArchiveChain's typed smart-contract state
// machines — ArchiveBounty, PreservationPool, and ContentVerification — and
// their (contract_id, function_name) call dispatch (spec §4.7).
package contracts

import (
	"sync"

	"github.com/archivechain/archivechain/token"
)

// Kind names which typed state machine a Contract carries.
type Kind string

const (
	KindBounty       Kind = "bounty"
	KindPool         Kind = "pool"
	KindVerification Kind = "verification"
)

// State is the generic contract lifecycle shared by every kind (spec §4.7).
type State string

const (
	StateActive    State = "Active"
	StateCompleted State = "Completed"
	StateExpired   State = "Expired"
	StateCancelled State = "Cancelled"
)

// Event is one append-only entry in a contract's event log.
type Event struct {
	Name      string         `json:"name"`
	Data      map[string]any `json:"data"`
	Timestamp uint64         `json:"timestamp"`
}

// Contract is the common envelope for every typed state machine (spec §4.7):
// id, creator, creation time, generic lifecycle state, an append-only event
// log, and exactly one populated per-kind storage struct.
type Contract struct {
	ID        string
	Creator   string
	CreatedAt uint64
	State     State
	Events    []Event
	Kind      Kind

	Bounty       *BountyData
	Pool         *PoolData
	Verification *VerificationData
}

func (c *Contract) emit(name string, now uint64, data map[string]any) {
	c.Events = append(c.Events, Event{Name: name, Data: data, Timestamp: now})
}

// Registry holds every contract live on chain, keyed by id.
type Registry struct {
	mu        sync.Mutex
	contracts map[string]*Contract
}

// NewRegistry constructs an empty contract registry.
func NewRegistry() *Registry {
	return &Registry{contracts: make(map[string]*Contract)}
}

// Put stores c under its own ID, overwriting any prior contract of the same
// ID.
func (r *Registry) Put(c *Contract) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contracts[c.ID] = c
}

// Get returns the contract with the given id.
func (r *Registry) Get(id string) (*Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[id]
	if !ok {
		return nil, newErr(ErrContractNotFound, id)
	}
	return c, nil
}

// Call dispatches (contract_id, function_name) to the right typed handler,
// looking the contract up in r and locking around the whole call so
// concurrent calls against the same registry cannot interleave (spec §4.7
// "calls dispatch on (contract_id, function_name, params, caller)").
func (r *Registry) Call(ledger *token.Ledger, contractID, functionName string, params map[string]any, caller string, now uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[contractID]
	if !ok {
		return newErr(ErrContractNotFound, contractID)
	}

	switch c.Kind {
	case KindBounty:
		return callBounty(ledger, c, functionName, params, caller, now)
	case KindPool:
		return callPool(ledger, c, functionName, params, caller, now)
	case KindVerification:
		return callVerification(c, functionName, params, caller, now)
	default:
		return newErr(ErrInvalidContractCall, "unknown contract kind")
	}
}
