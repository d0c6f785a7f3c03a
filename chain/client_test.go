package chain

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

// fakeDataError mimics the structured revert payload geth-style nodes attach
// to an RPC error. Satisfies rpc.DataError.
type fakeDataError struct {
	msg  string
	data interface{}
}

func (e *fakeDataError) Error() string          { return e.msg }
func (e *fakeDataError) ErrorData() interface{} { return e.data }

// encodeRevertData builds the Error(string) payload the EVM produces for a
// `revert("reason")`.
func encodeRevertData(t *testing.T, reason string) string {
	t.Helper()
	strType, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	packed, err := abi.Arguments{{Type: strType}}.Pack(reason)
	require.NoError(t, err)
	// 0x08c379a0 is the Error(string) selector.
	return "0x08c379a0" + common.Bytes2Hex(packed)
}

func TestRevertReasonDecodesStructuredPayload(t *testing.T) {
	err := &fakeDataError{
		msg:  "execution reverted",
		data: encodeRevertData(t, alreadyRewardedReason),
	}

	reason, ok := revertReason(err)
	require.True(t, ok)
	require.Equal(t, alreadyRewardedReason, reason)
}

func TestIsAlreadyRewardedStructured(t *testing.T) {
	err := &fakeDataError{
		msg:  "execution reverted",
		data: encodeRevertData(t, alreadyRewardedReason),
	}
	require.True(t, isAlreadyRewarded(err))
}

func TestIsAlreadyRewardedStructuredOtherReason(t *testing.T) {
	err := &fakeDataError{
		msg:  "execution reverted: unauthorized signer",
		data: encodeRevertData(t, "unauthorized signer"),
	}
	// A structured reason is authoritative: even though the message could
	// fuzzy-match, a different reason is a hard failure.
	require.False(t, isAlreadyRewarded(err))
}

func TestIsAlreadyRewardedStringFallback(t *testing.T) {
	// Nodes without structured revert data only surface the reason in text.
	require.True(t, isAlreadyRewarded(errors.New("execution reverted: action already rewarded")))
	require.True(t, isAlreadyRewarded(errors.New("execution reverted: reward already claimed for action")))
	require.False(t, isAlreadyRewarded(errors.New("connection refused")))
	require.False(t, isAlreadyRewarded(errors.New("insufficient funds for gas")))
}

func TestRevertReasonMalformedData(t *testing.T) {
	_, ok := revertReason(&fakeDataError{msg: "execution reverted", data: "0xdeadbeef"})
	require.False(t, ok)

	_, ok = revertReason(&fakeDataError{msg: "execution reverted", data: 42})
	require.False(t, ok)

	_, ok = revertReason(errors.New("plain error"))
	require.False(t, ok)
}
