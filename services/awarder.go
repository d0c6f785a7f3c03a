// services/awarder.go
package services

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ChainAwarder is the on-chain call surface the awarder depends on.
// Implemented by chain.Client; tests substitute a fake.
type ChainAwarder interface {
	// Award submits award(to, amount, actionID) from the service signer and
	// blocks until the transaction is confirmed. alreadyApplied is true when
	// the contract rejected the actionID as previously consumed.
	Award(ctx context.Context, walletAddress string, amount int64, actionID common.Hash) (txHash string, alreadyApplied bool, err error)
}

// AwardOutcome classifies one award attempt. Exactly one of the three shapes
// occurs: success (TxHash set, or empty in shadow mode), already-applied
// (AlreadyApplied true), or failure (Err set).
type AwardOutcome struct {
	TxHash         string
	AlreadyApplied bool
	Err            error
}

type LedgerAwarder struct {
	Enabled bool
	Chain   ChainAwarder
	Timeout time.Duration
}

func NewLedgerAwarder(enabled bool, chain ChainAwarder, timeout time.Duration) *LedgerAwarder {
	return &LedgerAwarder{Enabled: enabled, Chain: chain, Timeout: timeout}
}

// Award grants one reward. In shadow mode no external call is made and the
// reward counts as granted off-ledger with no transaction reference. On-chain
// the call is bounded by Timeout; a timed-out submission surfaces as a
// failure and is retried on the next scheduled run, which is safe because the
// actionID is deterministic and the contract rejects duplicates.
func (a *LedgerAwarder) Award(ctx context.Context, walletAddress string, amount int64, actionID common.Hash) AwardOutcome {
	if !a.Enabled {
		return AwardOutcome{}
	}

	callCtx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()

	txHash, alreadyApplied, err := a.Chain.Award(callCtx, walletAddress, amount, actionID)
	if alreadyApplied {
		// The ledger's own idempotency guard fired. Success-equivalent: even
		// if the local log missed a prior confirmation, the reward exists.
		return AwardOutcome{TxHash: txHash, AlreadyApplied: true}
	}
	if err != nil {
		return AwardOutcome{Err: err}
	}
	return AwardOutcome{TxHash: txHash}
}
