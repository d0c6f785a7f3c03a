// chain/client.go
package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/params"
	"github.com/ethereum/go-ethereum/rpc"
)

// Caller-side surface of the reward contract. The contract enforces its own
// idempotency: a repeated actionId reverts with alreadyRewardedReason.
const rewardABIJSON = `[{"type":"function","name":"award","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"},{"name":"actionId","type":"bytes32"}],"outputs":[],"stateMutability":"nonpayable"}]`

// alreadyRewardedReason is the revert reason the reward contract uses when an
// action id was already consumed.
const alreadyRewardedReason = "action already rewarded"

// Client submits reward mints to the ledger from the single service-held
// signer account. Only one submission is ever in flight at a time (the
// orchestrator is sequential), which keeps nonce management trivial.
type Client struct {
	eth      *ethclient.Client
	contract *bind.BoundContract
	signer   *ecdsa.PrivateKey
	chainID  *big.Int
	address  common.Address
}

// Dial connects to the RPC endpoint, loads the service signer and binds the
// reward contract.
func Dial(ctx context.Context, rpcURL, signerKeyHex, contractAddr string) (*Client, error) {
	if !common.IsHexAddress(contractAddr) {
		return nil, fmt.Errorf("invalid reward contract address %q", contractAddr)
	}

	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial ledger RPC %s: %w", rpcURL, err)
	}

	signer, err := crypto.HexToECDSA(strings.TrimPrefix(signerKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse service signer key: %w", err)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch chain id: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(rewardABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parse reward contract ABI: %w", err)
	}

	address := common.HexToAddress(contractAddr)
	client := &Client{
		eth:      eth,
		contract: bind.NewBoundContract(address, parsed, eth, eth, eth),
		signer:   signer,
		chainID:  chainID,
		address:  address,
	}

	log.Printf("[CHAIN] connected to %s (chain id %s), reward contract %s, signer %s",
		rpcURL, chainID.String(), address.Hex(), crypto.PubkeyToAddress(signer.PublicKey).Hex())
	return client, nil
}

// Award submits award(to, amount, actionID) and blocks until the transaction
// is mined. amount is in whole tokens; the contract takes 18-decimal base
// units. Gas is paid from the service wallet on every real submission.
func (c *Client) Award(ctx context.Context, walletAddress string, amount int64, actionID common.Hash) (string, bool, error) {
	if !common.IsHexAddress(walletAddress) {
		return "", false, fmt.Errorf("invalid wallet address %q", walletAddress)
	}

	opts, err := bind.NewKeyedTransactorWithChainID(c.signer, c.chainID)
	if err != nil {
		return "", false, fmt.Errorf("build transactor: %w", err)
	}
	opts.Context = ctx

	units := new(big.Int).Mul(big.NewInt(amount), big.NewInt(params.Ether))
	tx, err := c.contract.Transact(opts, "award", common.HexToAddress(walletAddress), units, [32]byte(actionID))
	if err != nil {
		if isAlreadyRewarded(err) {
			return "", true, nil
		}
		return "", false, fmt.Errorf("submit award: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return "", false, fmt.Errorf("wait for confirmation of %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", false, fmt.Errorf("award transaction %s reverted on-chain", tx.Hash().Hex())
	}

	return tx.Hash().Hex(), false, nil
}

// isAlreadyRewarded reports whether err is the contract's duplicate-action
// rejection. The structured Error(string) revert payload is authoritative
// when the node attaches one; the substring match is a compatibility shim for
// nodes that only surface the reason inside the error text.
func isAlreadyRewarded(err error) bool {
	if reason, ok := revertReason(err); ok {
		return strings.EqualFold(reason, alreadyRewardedReason)
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already rewarded") || strings.Contains(msg, "already claimed")
}

// revertReason extracts the decoded Error(string) payload from an RPC error,
// when present.
func revertReason(err error) (string, bool) {
	var de rpc.DataError
	if !errors.As(err, &de) {
		return "", false
	}
	hexData, ok := de.ErrorData().(string)
	if !ok {
		return "", false
	}
	reason, uerr := abi.UnpackRevert(common.FromHex(hexData))
	if uerr != nil {
		return "", false
	}
	return reason, true
}
