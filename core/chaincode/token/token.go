// Package token implements a chaincode that manages a simple fungible token.
//
// The chaincode credits the owner with the genesis supply when it is
// initialised, moves funds between addresses with the transfer action and
// exposes the balance of an address with the balance query. The payloads are
// JSON documents.
package token

import (
	"encoding/binary"
	"encoding/hex"

	"go.dedis.ch/ledger"
	"go.dedis.ch/ledger/core/chaincode"
	"go.dedis.ch/ledger/core/txn"
	"golang.org/x/xerrors"
)

// ContractName is the name the chaincode is registered under on the ledger.
const ContractName = "token"

const (
	// TransferAction is the name of the transaction handler moving funds.
	TransferAction = "transfer"

	// BalanceQuery is the name of the query handler returning the balance of
	// an address.
	BalanceQuery = "balance"
)

const (
	// StatusInsufficientFunds is returned when the balance of the sender
	// cannot cover the transferred amount.
	StatusInsufficientFunds = chaincode.StatusContract + iota

	// StatusBadPayload is returned when the payload of the transaction is not
	// a well-formed transfer order.
	StatusBadPayload
)

// commands defines the handlers of the token chaincode. This interface helps
// in testing the chaincode.
type commands interface {
	initialise(owner []byte) chaincode.Result
	transfer(tx txn.Transaction, index uint64) chaincode.Result
	balance(in chaincode.Query, out *chaincode.Query) chaincode.Status
}

// Contract is the token chaincode.
type Contract struct {
	*chaincode.Contract

	supply uint64
	cmd    commands
}

// NewContract creates a token chaincode with the given genesis supply. It
// panics when a handler cannot be registered as this is a programming error
// that must abort the chaincode load.
func NewContract(supply uint64) *Contract {
	c := &Contract{
		Contract: chaincode.NewContract(),
		supply:   supply,
	}

	c.cmd = tokenCommand{Contract: c}

	err := c.OnInitialise(chaincode.InitHandlerFunc(func(owner []byte) chaincode.Result {
		return c.cmd.initialise(owner)
	}))
	if err != nil {
		panic(xerrors.Errorf("failed to register init: %v", err))
	}

	err = c.OnTransaction(TransferAction, chaincode.TransactionHandlerFunc(
		func(tx txn.Transaction, index uint64) chaincode.Result {
			return c.cmd.transfer(tx, index)
		}))
	if err != nil {
		panic(xerrors.Errorf("failed to register transfer: %v", err))
	}

	err = c.OnQuery(BalanceQuery, chaincode.QueryHandlerFunc(
		func(in chaincode.Query, out *chaincode.Query) chaincode.Status {
			return c.cmd.balance(in, out)
		}))
	if err != nil {
		panic(xerrors.Errorf("failed to register balance: %v", err))
	}

	return c
}

// tokenCommand implements the handlers of the token chaincode.
//
// - implements commands
type tokenCommand struct {
	*Contract
}

// initialise implements commands. It credits the owner with the genesis
// supply.
func (c tokenCommand) initialise(owner []byte) chaincode.Result {
	err := c.setBalance(owner, c.supply)
	if err != nil {
		return chaincode.Result{
			Status:  chaincode.StatusFailed,
			Message: err.Error(),
		}
	}

	ledger.Logger.Info().
		Str("contract", ContractName).
		Msgf("genesis supply %d credited to %x", c.supply, owner)

	return chaincode.Result{Status: chaincode.StatusOK}
}

// transfer implements commands. It moves funds from the identity of the
// transaction to the address of the payload.
func (c tokenCommand) transfer(tx txn.Transaction, index uint64) chaincode.Result {
	doc, ok := chaincode.ParseAsJSON(tx)
	if !ok {
		return chaincode.Result{
			Status:  StatusBadPayload,
			Message: "payload is not valid JSON",
		}
	}

	to, amount, err := decodeOrder(doc)
	if err != nil {
		return chaincode.Result{
			Status:  StatusBadPayload,
			Message: err.Error(),
		}
	}

	if tx.GetIdentity() == nil {
		return chaincode.Result{
			Status:  chaincode.StatusFailed,
			Message: "anonymous transfer is not allowed",
		}
	}

	from, err := tx.GetIdentity().MarshalBinary()
	if err != nil {
		return chaincode.Result{
			Status:  chaincode.StatusFailed,
			Message: err.Error(),
		}
	}

	funds, err := c.getBalance(from)
	if err != nil {
		return chaincode.Result{
			Status:  chaincode.StatusFailed,
			Message: err.Error(),
		}
	}

	if funds < amount {
		return chaincode.Result{
			Status:  StatusInsufficientFunds,
			Message: "balance too low",
		}
	}

	err = c.setBalance(from, funds-amount)
	if err != nil {
		return chaincode.Result{
			Status:  chaincode.StatusFailed,
			Message: err.Error(),
		}
	}

	// The destination is read after the debit so that a transfer to the
	// sender itself credits the debited balance and conserves the supply.
	dest, err := c.getBalance(to)
	if err != nil {
		return chaincode.Result{
			Status:  chaincode.StatusFailed,
			Message: err.Error(),
		}
	}

	err = c.setBalance(to, dest+amount)
	if err != nil {
		return chaincode.Result{
			Status:  chaincode.StatusFailed,
			Message: err.Error(),
		}
	}

	ledger.Logger.Debug().
		Str("contract", ContractName).
		Uint64("block", index).
		Msgf("transferred %d from %x to %x", amount, from, to)

	return chaincode.Result{Status: chaincode.StatusOK}
}

// balance implements commands. It writes the balance of the address to the
// output document.
func (c tokenCommand) balance(in chaincode.Query, out *chaincode.Query) chaincode.Status {
	raw, ok := in["address"].(string)
	if !ok {
		return chaincode.StatusFailed
	}

	addr, err := hex.DecodeString(raw)
	if err != nil {
		return chaincode.StatusFailed
	}

	funds, err := c.getBalance(addr)
	if err != nil {
		return chaincode.StatusFailed
	}

	*out = chaincode.Query{
		"address": raw,
		"balance": funds,
	}

	return chaincode.StatusOK
}

// getBalance reads the balance of the address, with zero for an address never
// seen before.
func (c tokenCommand) getBalance(addr []byte) (uint64, error) {
	value, err := c.State().Get(addr)
	if err != nil {
		return 0, xerrors.Errorf("failed to read balance: %v", err)
	}

	if value == nil {
		return 0, nil
	}

	if len(value) != 8 {
		return 0, xerrors.Errorf("malformed balance of length %d", len(value))
	}

	return binary.BigEndian.Uint64(value), nil
}

// setBalance writes the balance of the address.
func (c tokenCommand) setBalance(addr []byte, funds uint64) error {
	value := make([]byte, 8)
	binary.BigEndian.PutUint64(value, funds)

	err := c.State().Set(addr, value)
	if err != nil {
		return xerrors.Errorf("failed to write balance: %v", err)
	}

	return nil
}

// decodeOrder extracts the destination address and the amount of a transfer
// order.
func decodeOrder(doc chaincode.Query) ([]byte, uint64, error) {
	raw, ok := doc["to"].(string)
	if !ok {
		return nil, 0, xerrors.New("'to' not found in payload")
	}

	to, err := hex.DecodeString(raw)
	if err != nil {
		return nil, 0, xerrors.Errorf("failed to decode address: %v", err)
	}

	amount, ok := doc["amount"].(float64)
	if !ok {
		return nil, 0, xerrors.New("'amount' not found in payload")
	}

	// The conversion of a float beyond the integer range is not portable,
	// so the bound is checked before converting.
	if amount <= 0 || amount >= float64(1<<63) || amount != float64(uint64(amount)) {
		return nil, 0, xerrors.Errorf("invalid amount %f", amount)
	}

	return to, uint64(amount), nil
}
