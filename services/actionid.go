// services/actionid.go
package services

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DeriveActionID computes the idempotency token presented to the ledger for
// one (subject, action kind, period) triple. It is the only place this
// derivation happens; the awarder and the log both receive the value from
// here so the checked and submitted identifiers can never drift apart.
//
// The wallet address is lowercased first: ledger addresses are
// case-insensitive in canonical form but case-sensitive as strings, and the
// same subject must always map to the same token. The ':' separator cannot
// appear in an address, a slugged action kind, or a date-formatted period
// key, so the concatenation is unambiguous.
func DeriveActionID(walletAddress, actionKind, periodKey string) common.Hash {
	addr := strings.ToLower(strings.TrimSpace(walletAddress))
	payload := fmt.Sprintf("%s:%s:%s", addr, actionKind, periodKey)
	return crypto.Keccak256Hash([]byte(payload))
}
