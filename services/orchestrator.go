// services/orchestrator.go
package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"daily-rewards-system/models"
)

// AwardOrchestrator drives the select → derive → award → log pipeline over
// all eligible subjects. Processing is deliberately sequential: every
// submission comes from the single service signer, and serializing avoids
// nonce collisions on the ledger entirely. Runs are periodic and batches are
// capped, so throughput is not a concern.
type AwardOrchestrator struct {
	Eligibility *EligibilityService
	Awarder     *LedgerAwarder
	Log         *AwardLogService

	ActionKind  string
	Amount      int64 // whole tokens per award
	BatchSize   int
	PacingDelay time.Duration // between subjects in on-chain mode
}

func NewAwardOrchestrator(eligibility *EligibilityService, awarder *LedgerAwarder, logSvc *AwardLogService, actionKind string, amount int64, batchSize int, pacing time.Duration) *AwardOrchestrator {
	return &AwardOrchestrator{
		Eligibility: eligibility,
		Awarder:     awarder,
		Log:         logSvc,
		ActionKind:  actionKind,
		Amount:      amount,
		BatchSize:   batchSize,
		PacingDelay: pacing,
	}
}

// RunResults is what the trigger endpoint and the scheduler report. Per-subject
// failures land in Errors alongside the counts; only an eligibility-query
// failure aborts the run as a whole.
type RunResults struct {
	PeriodKey  string   `json:"period_key"`
	Processed  int      `json:"processed"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors"`
}

// RunDailyAward runs the pipeline for the current UTC day.
func (o *AwardOrchestrator) RunDailyAward(ctx context.Context) (*RunResults, error) {
	return o.RunAwardForPeriod(ctx, PeriodKeyFor(time.Now()))
}

// RunAwardForPeriod is safe to invoke repeatedly for the same period: every
// confirmed award shrinks the next run's eligibility set, and the ledger's
// duplicate-actionID rejection backstops any log/ledger divergence.
func (o *AwardOrchestrator) RunAwardForPeriod(ctx context.Context, periodKey string) (*RunResults, error) {
	results := &RunResults{PeriodKey: periodKey, Errors: []string{}}

	users, err := o.Eligibility.SelectEligible(periodKey, o.ActionKind)
	if err != nil {
		return nil, fmt.Errorf("select eligible subjects: %w", err)
	}
	if len(users) == 0 {
		log.Printf("[AWARD] no eligible subjects for %s/%s", o.ActionKind, periodKey)
		return results, nil
	}

	batches := partition(users, o.BatchSize)
	log.Printf("[AWARD] %d eligible subject(s) for %s/%s in %d batch(es)", len(users), o.ActionKind, periodKey, len(batches))

	for bi, batch := range batches {
		log.Printf("[AWARD] batch %d/%d (%d subjects)", bi+1, len(batches), len(batch))
		for _, user := range batch {
			if ctx.Err() != nil {
				results.Errors = append(results.Errors, fmt.Sprintf("run cancelled: %v", ctx.Err()))
				return results, nil
			}

			address := strings.ToLower(strings.TrimSpace(*user.WalletAddress))
			outcome, logErr := o.processSubject(ctx, address, periodKey)

			results.Processed++
			if outcome.Err != nil {
				results.Failed++
				results.Errors = append(results.Errors, fmt.Sprintf("%s: %v", address, outcome.Err))
			} else {
				results.Successful++
			}
			if logErr != nil {
				results.Errors = append(results.Errors, fmt.Sprintf("%s: audit log write failed: %v", address, logErr))
			}

			// Courtesy delay against the RPC endpoint's rate limit. Skipped
			// entirely in shadow mode, where no external call was made.
			if o.Awarder.Enabled && o.PacingDelay > 0 {
				time.Sleep(o.PacingDelay)
			}
		}
	}

	log.Printf("[AWARD] ✅ run complete for %s/%s: processed=%d successful=%d failed=%d",
		o.ActionKind, periodKey, results.Processed, results.Successful, results.Failed)
	return results, nil
}

// processSubject is the per-subject pipeline: derive the identifier, attempt
// the award, record the attempt. It is the composition the batch driver loops
// over and is callable on its own. The returned logErr reports an audit-log
// write failure; a successful on-ledger award is never rolled back for one —
// the contract's duplicate-actionID rejection is what prevents a double-award
// in that case, not the local log.
func (o *AwardOrchestrator) processSubject(ctx context.Context, address, periodKey string) (AwardOutcome, error) {
	actionID := DeriveActionID(address, o.ActionKind, periodKey)
	outcome := o.Awarder.Award(ctx, address, o.Amount, actionID)

	entry := &models.AwardLog{
		WalletAddress: address,
		ActionKind:    o.ActionKind,
		PeriodKey:     periodKey,
		ActionID:      actionID.Hex(),
		Amount:        o.Amount,
	}
	if outcome.Err != nil {
		entry.ErrorMessage = outcome.Err.Error()
	} else {
		entry.Confirmed = true
		if outcome.TxHash != "" {
			entry.TxHash = &outcome.TxHash
		}
	}

	if err := o.Log.LogAttempt(entry); err != nil {
		log.Printf("[AWARD] ⚠️ failed to record attempt for %s (%s): %v", address, actionID.Hex(), err)
		return outcome, err
	}
	return outcome, nil
}

func partition(users []models.User, size int) [][]models.User {
	if size <= 0 {
		return [][]models.User{users}
	}
	var batches [][]models.User
	for start := 0; start < len(users); start += size {
		end := start + size
		if end > len(users) {
			end = len(users)
		}
		batches = append(batches, users[start:end])
	}
	return batches
}
