package token

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/ledger/core/chaincode"
	"go.dedis.ch/ledger/internal/testing/fake"
)

func TestContract_Initialise(t *testing.T) {
	c := NewContract(1000)

	c.Attach(chaincode.NewSnapshotAdapter(ContractName, fake.NewSnapshot()))
	defer c.Detach()

	res := c.DispatchInitialise([]byte("owner"))
	require.Equal(t, chaincode.StatusOK, res.Status)

	cmd := tokenCommand{Contract: c}

	funds, err := cmd.getBalance([]byte("owner"))
	require.NoError(t, err)
	require.Equal(t, uint64(1000), funds)
}

func TestContract_Initialise_BadState(t *testing.T) {
	c := NewContract(1000)

	c.Attach(chaincode.NewSnapshotAdapter(ContractName, fake.NewBadSnapshot()))
	defer c.Detach()

	res := c.DispatchInitialise([]byte("owner"))
	require.Equal(t, chaincode.StatusFailed, res.Status)
	require.Equal(t, fake.Err("failed to write balance: failed to write key"), res.Message)
}

func TestContract_Transfer(t *testing.T) {
	c := NewContract(1000)

	c.Attach(chaincode.NewSnapshotAdapter(ContractName, fake.NewSnapshot()))
	defer c.Detach()

	// The identity of the fake transaction marshals to the address "PK".
	owner := []byte("PK")

	res := c.DispatchInitialise(owner)
	require.Equal(t, chaincode.StatusOK, res.Status)

	to := hex.EncodeToString([]byte("dest"))

	tx := fake.NewTx(ContractName, TransferAction,
		[]byte(`{"to":"`+to+`","amount":250}`))

	res = c.DispatchTransaction(TransferAction, tx, 1)
	require.Equal(t, chaincode.StatusOK, res.Status)
	require.Equal(t, uint64(1), c.TransactionCount(TransferAction))

	cmd := tokenCommand{Contract: c}

	funds, err := cmd.getBalance(owner)
	require.NoError(t, err)
	require.Equal(t, uint64(750), funds)

	funds, err = cmd.getBalance([]byte("dest"))
	require.NoError(t, err)
	require.Equal(t, uint64(250), funds)
}

func TestContract_Transfer_Self(t *testing.T) {
	c := NewContract(100)

	c.Attach(chaincode.NewSnapshotAdapter(ContractName, fake.NewSnapshot()))
	defer c.Detach()

	owner := []byte("PK")

	res := c.DispatchInitialise(owner)
	require.Equal(t, chaincode.StatusOK, res.Status)

	// A transfer to the sender itself must conserve the supply.
	tx := fake.NewTx(ContractName, TransferAction,
		[]byte(`{"to":"`+hex.EncodeToString(owner)+`","amount":30}`))

	res = c.DispatchTransaction(TransferAction, tx, 1)
	require.Equal(t, chaincode.StatusOK, res.Status)

	cmd := tokenCommand{Contract: c}

	funds, err := cmd.getBalance(owner)
	require.NoError(t, err)
	require.Equal(t, uint64(100), funds)
}

func TestContract_Transfer_Rejections(t *testing.T) {
	c := NewContract(10)

	c.Attach(chaincode.NewSnapshotAdapter(ContractName, fake.NewSnapshot()))
	defer c.Detach()

	to := hex.EncodeToString([]byte("dest"))

	res := c.DispatchTransaction(TransferAction,
		fake.NewTx(ContractName, TransferAction, []byte(`{not json`)), 1)
	require.Equal(t, StatusBadPayload, res.Status)
	require.Equal(t, "payload is not valid JSON", res.Message)

	res = c.DispatchTransaction(TransferAction,
		fake.NewTx(ContractName, TransferAction, []byte(`{"amount":1}`)), 1)
	require.Equal(t, StatusBadPayload, res.Status)
	require.Equal(t, "'to' not found in payload", res.Message)

	res = c.DispatchTransaction(TransferAction,
		fake.NewTx(ContractName, TransferAction, []byte(`{"to":"zz","amount":1}`)), 1)
	require.Equal(t, StatusBadPayload, res.Status)

	res = c.DispatchTransaction(TransferAction,
		fake.NewTx(ContractName, TransferAction, []byte(`{"to":"`+to+`"}`)), 1)
	require.Equal(t, StatusBadPayload, res.Status)
	require.Equal(t, "'amount' not found in payload", res.Message)

	res = c.DispatchTransaction(TransferAction,
		fake.NewTx(ContractName, TransferAction, []byte(`{"to":"`+to+`","amount":1.5}`)), 1)
	require.Equal(t, StatusBadPayload, res.Status)
	require.Equal(t, "invalid amount 1.500000", res.Message)

	res = c.DispatchTransaction(TransferAction,
		fake.NewTx(ContractName, TransferAction, []byte(`{"to":"`+to+`","amount":1e19}`)), 1)
	require.Equal(t, StatusBadPayload, res.Status)
	require.Equal(t, "invalid amount 10000000000000000000.000000", res.Message)

	anon := fake.NewTx(ContractName, TransferAction, []byte(`{"to":"`+to+`","amount":1}`))
	anon.Identity = nil

	res = c.DispatchTransaction(TransferAction, anon, 1)
	require.Equal(t, chaincode.StatusFailed, res.Status)
	require.Equal(t, "anonymous transfer is not allowed", res.Message)

	res = c.DispatchTransaction(TransferAction,
		fake.NewTx(ContractName, TransferAction, []byte(`{"to":"`+to+`","amount":50}`)), 1)
	require.Equal(t, StatusInsufficientFunds, res.Status)
	require.Equal(t, "balance too low", res.Message)

	// Every dispatch above matched the handler name so they all count.
	require.Equal(t, uint64(8), c.TransactionCount(TransferAction))
}

func TestContract_Transfer_BadIdentity(t *testing.T) {
	c := NewContract(10)

	c.Attach(chaincode.NewSnapshotAdapter(ContractName, fake.NewSnapshot()))
	defer c.Detach()

	to := hex.EncodeToString([]byte("dest"))

	tx := fake.NewTx(ContractName, TransferAction, []byte(`{"to":"`+to+`","amount":1}`))
	tx.Identity = fake.NewBadPublicKey()

	res := c.DispatchTransaction(TransferAction, tx, 1)
	require.Equal(t, chaincode.StatusFailed, res.Status)
	require.Equal(t, fake.GetError().Error(), res.Message)
}

func TestContract_Balance(t *testing.T) {
	c := NewContract(1000)

	c.Attach(chaincode.NewSnapshotAdapter(ContractName, fake.NewSnapshot()))
	defer c.Detach()

	owner := []byte("owner")

	res := c.DispatchInitialise(owner)
	require.Equal(t, chaincode.StatusOK, res.Status)

	out := chaincode.Query{}

	status := c.DispatchQuery(BalanceQuery, chaincode.Query{
		"address": hex.EncodeToString(owner),
	}, &out)
	require.Equal(t, chaincode.StatusOK, status)
	require.Equal(t, uint64(1000), out["balance"])
	require.Equal(t, uint64(1), c.QueryCount(BalanceQuery))

	// An address never seen before has a zero balance.
	status = c.DispatchQuery(BalanceQuery, chaincode.Query{
		"address": hex.EncodeToString([]byte("nobody")),
	}, &out)
	require.Equal(t, chaincode.StatusOK, status)
	require.Equal(t, uint64(0), out["balance"])

	status = c.DispatchQuery(BalanceQuery, chaincode.Query{}, &out)
	require.Equal(t, chaincode.StatusFailed, status)

	status = c.DispatchQuery(BalanceQuery, chaincode.Query{"address": "zz"}, &out)
	require.Equal(t, chaincode.StatusFailed, status)
}

func TestContract_Balance_Malformed(t *testing.T) {
	c := NewContract(1000)

	snap := fake.NewSnapshot()

	c.Attach(chaincode.NewSnapshotAdapter(ContractName, snap))
	defer c.Detach()

	cmd := tokenCommand{Contract: c}

	require.NoError(t, c.State().Set([]byte("broken"), []byte{1, 2, 3}))

	_, err := cmd.getBalance([]byte("broken"))
	require.EqualError(t, err, "malformed balance of length 3")
}
