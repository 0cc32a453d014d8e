// Package token implements the ARC token ledger (spec §4.4): balances,
// staking, the genesis supply pools, the reward formulas, and the
// transfer/fee-burn model.
package token

import (
	"sync"

	"github.com/archivechain/archivechain/safemath"
)

// Pool names the genesis supply allocations plus the chain's internal
// transaction-fee holding pool (spec §4.4; the fee pool is this
// implementation's mechanism for keeping supply conservation exact between
// a Transfer debiting the sender and the eventual mining reward crediting
// the block's miner with the collected fees).
type Pool string

const (
	PoolArchivingRewards Pool = "archiving_rewards"
	PoolDevelopment      Pool = "development"
	PoolCommunity        Pool = "community"
	PoolPublicSale       Pool = "public_sale"
	poolTransactionFees  Pool = "transaction_fees"
)

// FeeBurnRate is the fraction of a transfer fee that is burned rather than
// paid to the mining block's producer (spec §4.4: "burn 10% of the fee").
var FeeBurnRate = safemath.FromScaledUnits(100_000) // 0.100000 = 10%

// Ledger is ArchiveChain's token state: balances, staked balances, supply
// pools, and running mint/burn totals.
type Ledger struct {
	mu          sync.RWMutex
	balances    map[string]safemath.Decimal
	staked      map[string]safemath.Decimal
	pools       map[Pool]safemath.Decimal
	totalMinted safemath.Decimal
	totalBurned safemath.Decimal
}

// NewLedger constructs an empty ledger (zero balances, zero pools).
func NewLedger() *Ledger {
	return &Ledger{
		balances:    make(map[string]safemath.Decimal),
		staked:      make(map[string]safemath.Decimal),
		pools:       make(map[Pool]safemath.Decimal),
		totalMinted: safemath.Zero,
		totalBurned: safemath.Zero,
	}
}

// Genesis mints the fixed supply into its four pools: 40% archiving
// rewards (held in the pool, debited as rewards are issued), and 25%/20%/15%
// development/community/public-sale minted directly to the given genesis
// addresses (spec §4.4).
func (l *Ledger) Genesis(developmentAddr, communityAddr, publicSaleAddr string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	archiving, err := safemath.Percentage(safemath.MaxTokenSupply, safemath.FromWhole(40))
	if err != nil {
		return err
	}
	development, err := safemath.Percentage(safemath.MaxTokenSupply, safemath.FromWhole(25))
	if err != nil {
		return err
	}
	community, err := safemath.Percentage(safemath.MaxTokenSupply, safemath.FromWhole(20))
	if err != nil {
		return err
	}
	publicSale, err := safemath.Percentage(safemath.MaxTokenSupply, safemath.FromWhole(15))
	if err != nil {
		return err
	}

	l.balances[developmentAddr], err = safemath.Add(l.balances[developmentAddr], development)
	if err != nil {
		return err
	}
	l.balances[communityAddr], err = safemath.Add(l.balances[communityAddr], community)
	if err != nil {
		return err
	}
	l.balances[publicSaleAddr], err = safemath.Add(l.balances[publicSaleAddr], publicSale)
	if err != nil {
		return err
	}
	l.pools[PoolArchivingRewards] = archiving

	minted, err := safemath.Add(development, community)
	if err != nil {
		return err
	}
	minted, err = safemath.Add(minted, publicSale)
	if err != nil {
		return err
	}
	minted, err = safemath.Add(minted, archiving)
	if err != nil {
		return err
	}
	l.totalMinted = minted
	return nil
}

// Balance returns addr's liquid balance (zero if never credited).
func (l *Ledger) Balance(addr string) safemath.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[addr]
}

// Staked returns addr's staked balance (zero if never staked).
func (l *Ledger) Staked(addr string) safemath.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.staked[addr]
}

// Pool returns the current balance of a named pool.
func (l *Ledger) Pool(p Pool) safemath.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.pools[p]
}

// TotalMinted returns the running total_minted counter.
func (l *Ledger) TotalMinted() safemath.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.totalMinted
}

// TotalBurned returns the running total_burned counter.
func (l *Ledger) TotalBurned() safemath.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.totalBurned
}

// credit adds amount to addr's balance, validating the supply bound first.
// Caller must hold l.mu.
func (l *Ledger) credit(addr string, amount safemath.Decimal) error {
	if err := safemath.ValidateBalanceOperation(l.balances[addr], amount, safemath.Credit); err != nil {
		return err
	}
	next, err := safemath.Add(l.balances[addr], amount)
	if err != nil {
		return err
	}
	l.balances[addr] = next
	return nil
}

// debit subtracts amount from addr's balance, failing with
// InsufficientBalance if addr does not hold enough. Caller must hold l.mu.
func (l *Ledger) debit(addr string, amount safemath.Decimal) error {
	if safemath.ValidateBalanceOperation(l.balances[addr], amount, safemath.Debit) != nil {
		return newErr(ErrInsufficientBalance, addr)
	}
	next, err := safemath.Subtract(l.balances[addr], amount)
	if err != nil {
		return newErr(ErrInsufficientBalance, addr)
	}
	l.balances[addr] = next
	return nil
}

// Transfer deducts amount+fee from sender, credits amount to receiver, and
// burns FeeBurnRate of the fee immediately; the remainder of the fee is
// held in the internal transaction-fee pool until DrainFeesToMiner credits
// it to a block's producer (spec §4.4, §4.8).
func (l *Ledger) Transfer(sender, receiver string, amount, fee safemath.Decimal) error {
	if err := safemath.ValidateAmount(amount); err != nil {
		return err
	}
	if fee.Sign() < 0 {
		return newErr(ErrInvalidAmount, "fee must be non-negative")
	}
	total, err := safemath.Add(amount, fee)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.debit(sender, total); err != nil {
		return err
	}
	if err := l.credit(receiver, amount); err != nil {
		return err
	}

	burned, err := safemath.Multiply(fee, FeeBurnRate)
	if err != nil {
		return err
	}
	netFee, err := safemath.Subtract(fee, burned)
	if err != nil {
		return err
	}
	l.totalBurned, err = safemath.Add(l.totalBurned, burned)
	if err != nil {
		return err
	}
	l.pools[poolTransactionFees], err = safemath.Add(l.pools[poolTransactionFees], netFee)
	if err != nil {
		return err
	}
	return nil
}

// Stake moves amount from addr's liquid balance into its staked balance.
func (l *Ledger) Stake(addr string, amount safemath.Decimal) error {
	if err := safemath.ValidateAmount(amount); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.debit(addr, amount); err != nil {
		return err
	}
	next, err := safemath.Add(l.staked[addr], amount)
	if err != nil {
		return err
	}
	l.staked[addr] = next
	return nil
}

// Unstake restores amount from addr's staked balance back to its liquid
// balance, failing with InsufficientStake if addr has not staked enough.
func (l *Ledger) Unstake(addr string, amount safemath.Decimal) error {
	if err := safemath.ValidateAmount(amount); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if amount.Cmp(l.staked[addr]) > 0 {
		return newErr(ErrInsufficientStake, addr)
	}
	next, err := safemath.Subtract(l.staked[addr], amount)
	if err != nil {
		return newErr(ErrInsufficientStake, addr)
	}
	l.staked[addr] = next
	return l.credit(addr, amount)
}

// CreditFromPool debits amount from pool p and credits it to addr, failing
// with PoolExhausted if the pool does not hold enough (spec §4.4 "the
// archiving-rewards pool is debited as rewards are issued").
func (l *Ledger) CreditFromPool(p Pool, addr string, amount safemath.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if amount.Cmp(l.pools[p]) > 0 {
		return newErr(ErrPoolExhausted, string(p))
	}
	remaining, err := safemath.Subtract(l.pools[p], amount)
	if err != nil {
		return newErr(ErrPoolExhausted, string(p))
	}
	l.pools[p] = remaining
	return l.credit(addr, amount)
}

// MintReward credits amount to addr as new issuance outside any pool (spec
// §9 open question, resolved in DESIGN.md: the mining reward is a distinct
// issuance, never debited against archiving_rewards).
func (l *Ledger) MintReward(addr string, amount safemath.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	minted, err := safemath.Add(l.totalMinted, amount)
	if err != nil {
		return err
	}
	if err := l.credit(addr, amount); err != nil {
		return err
	}
	l.totalMinted = minted
	return nil
}

// DrainFeesToMiner credits the entire accumulated transaction-fee pool to
// addr and resets the pool to zero. Called once per mined block.
func (l *Ledger) DrainFeesToMiner(addr string) (safemath.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fees := l.pools[poolTransactionFees]
	if fees.IsZero() {
		return fees, nil
	}
	if err := l.credit(addr, fees); err != nil {
		return safemath.Zero, err
	}
	l.pools[poolTransactionFees] = safemath.Zero
	return fees, nil
}

// Snapshot is the persisted form of a Ledger (spec §6 "token_system").
type Snapshot struct {
	Balances    map[string]safemath.Decimal `json:"balances"`
	Staked      map[string]safemath.Decimal `json:"staked"`
	Pools       map[Pool]safemath.Decimal   `json:"pools"`
	TotalMinted safemath.Decimal            `json:"total_minted"`
	TotalBurned safemath.Decimal            `json:"total_burned"`
}

// Snapshot returns a copy of l's state suitable for JSON persistence.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s := Snapshot{
		Balances:    make(map[string]safemath.Decimal, len(l.balances)),
		Staked:      make(map[string]safemath.Decimal, len(l.staked)),
		Pools:       make(map[Pool]safemath.Decimal, len(l.pools)),
		TotalMinted: l.totalMinted,
		TotalBurned: l.totalBurned,
	}
	for k, v := range l.balances {
		s.Balances[k] = v
	}
	for k, v := range l.staked {
		s.Staked[k] = v
	}
	for k, v := range l.pools {
		s.Pools[k] = v
	}
	return s
}

// FromSnapshot reconstructs a Ledger from a previously taken Snapshot.
func FromSnapshot(s Snapshot) *Ledger {
	l := NewLedger()
	for k, v := range s.Balances {
		l.balances[k] = v
	}
	for k, v := range s.Staked {
		l.staked[k] = v
	}
	for k, v := range s.Pools {
		l.pools[k] = v
	}
	l.totalMinted = s.TotalMinted
	l.totalBurned = s.TotalBurned
	return l
}

// ConservationTotal returns sum(balances) + sum(staked) + sum(pools) +
// total_burned, which must equal safemath.MaxTokenSupply at every committed
// state (spec §8 property 1).
func (l *Ledger) ConservationTotal() (safemath.Decimal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	total := l.totalBurned
	var err error
	for _, v := range l.balances {
		if total, err = safemath.Add(total, v); err != nil {
			return safemath.Zero, err
		}
	}
	for _, v := range l.staked {
		if total, err = safemath.Add(total, v); err != nil {
			return safemath.Zero, err
		}
	}
	for _, v := range l.pools {
		if total, err = safemath.Add(total, v); err != nil {
			return safemath.Zero, err
		}
	}
	return total, nil
}
