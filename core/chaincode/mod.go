// Package chaincode implements the dispatch and state-attachment model of a
// chaincode.
//
// A chaincode is a named bundle of handlers deployed on the ledger. The
// handlers are registered once when the chaincode is loaded and the contract
// then routes every incoming transaction or query to the handler matching its
// name. The registration tables are write-once so that the mapping from a name
// to a behaviour is unambiguous on every node, which is a requirement for the
// consensus to hold.
//
// The contract borrows a state adapter from the executor for the duration of
// an execution window, marked by Attach and Detach. A handler must only touch
// the state through that adapter and the executor must bracket every execution
// unit with one attach/detach pair.
//
// The contract is not safe for concurrent use. It is designed to be driven by
// a single execution goroutine per attached state scope so that the order of
// the state mutations stays deterministic.
package chaincode

import (
	"fmt"

	"go.dedis.ch/ledger"
	"go.dedis.ch/ledger/core/txn"
	"golang.org/x/xerrors"
)

// Status is the outcome category of a dispatch. The enumeration is part of
// the consensus surface: the values are fixed and must never be reordered.
type Status uint32

const (
	// StatusOK is returned when the dispatch succeeded.
	StatusOK Status = 0

	// StatusFailed is returned by a handler when the execution failed.
	StatusFailed Status = 1

	// StatusNotFound is returned when no handler is registered for the
	// requested name. It is an expected outcome, not an error.
	StatusNotFound Status = 2

	// StatusContract is the first value available to contract-defined status
	// codes. A contract allocates its own codes starting from this value.
	StatusContract Status = 16
)

// String implements fmt.Stringer. It returns a readable representation of the
// status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusFailed:
		return "FAILED"
	case StatusNotFound:
		return "NOT_FOUND"
	default:
		return fmt.Sprintf("CONTRACT(%d)", uint32(s))
	}
}

// Result is the outcome of an init or transaction dispatch. The message gives
// a chance to the handler to explain a failure. Only the status takes part in
// the consensus.
type Result struct {
	Status  Status
	Message string
}

// Accepted returns true when the dispatch succeeded.
func (r Result) Accepted() bool {
	return r.Status == StatusOK
}

// Query is a parsed JSON document exchanged with the query handlers.
type Query map[string]interface{}

// InitHandler is the handler invoked once when the chaincode is set up on the
// ledger.
//
// An implementation must be deterministic: for the same owner and the same
// attached state it must produce the same result and the same state mutations
// on every node.
type InitHandler interface {
	Init(owner []byte) Result
}

// InitHandlerFunc is an adapter to use a function as an init handler.
//
// - implements chaincode.InitHandler
type InitHandlerFunc func(owner []byte) Result

// Init implements chaincode.InitHandler. It calls the wrapped function.
func (f InitHandlerFunc) Init(owner []byte) Result {
	return f(owner)
}

// TransactionHandler is a named action of the chaincode triggered by a
// transaction.
//
// An implementation must be deterministic: for the same transaction, block
// index and attached state contents it must produce the same result and the
// same state mutations on every node. In particular it must not read the
// clock, use randomness, or iterate over a map in a way that affects the
// output.
type TransactionHandler interface {
	Transact(tx txn.Transaction, index uint64) Result
}

// TransactionHandlerFunc is an adapter to use a function as a transaction
// handler.
//
// - implements chaincode.TransactionHandler
type TransactionHandlerFunc func(tx txn.Transaction, index uint64) Result

// Transact implements chaincode.TransactionHandler. It calls the wrapped
// function.
func (f TransactionHandlerFunc) Transact(tx txn.Transaction, index uint64) Result {
	return f(tx, index)
}

// QueryHandler is a named read-only operation of the chaincode. The response
// is written to the output document. The same determinism obligation as for
// the transaction handlers applies.
type QueryHandler interface {
	Query(in Query, out *Query) Status
}

// QueryHandlerFunc is an adapter to use a function as a query handler.
//
// - implements chaincode.QueryHandler
type QueryHandlerFunc func(in Query, out *Query) Status

// Query implements chaincode.QueryHandler. It calls the wrapped function.
func (f QueryHandlerFunc) Query(in Query, out *Query) Status {
	return f(in, out)
}

// Contract routes transactions and queries to the registered handlers of one
// chaincode and scopes their state access to the currently attached adapter.
//
// The registration tables and the counters are owned by the contract for its
// whole lifetime. The state adapter is only borrowed between Attach and
// Detach and the executor keeps the ownership of it.
type Contract struct {
	init       InitHandler
	txs        map[string]TransactionHandler
	queries    map[string]QueryHandler
	txCounters map[string]uint64
	qCounters  map[string]uint64

	// state is borrowed from the executor and nil when detached.
	state StateAdapter
}

// NewContract creates a new contract with empty registration tables.
func NewContract() *Contract {
	return &Contract{
		txs:        make(map[string]TransactionHandler),
		queries:    make(map[string]QueryHandler),
		txCounters: make(map[string]uint64),
		qCounters:  make(map[string]uint64),
	}
}

// OnInitialise registers the init handler. It returns an error if a handler is
// already set. Registration errors are load-time fatal: a chaincode that
// fails to register must never be allowed to run.
func (c *Contract) OnInitialise(handler InitHandler) error {
	if c.init != nil {
		return xerrors.New("initialise handler already registered")
	}

	c.init = handler

	return nil
}

// OnTransaction registers a transaction handler under the name. It returns an
// error if the name is already taken, leaving the previous handler in place.
func (c *Contract) OnTransaction(name string, handler TransactionHandler) error {
	_, found := c.txs[name]
	if found {
		return xerrors.Errorf("transaction handler '%s' already registered", name)
	}

	c.txs[name] = handler
	c.txCounters[name] = 0

	return nil
}

// OnQuery registers a query handler under the name. It returns an error if the
// name is already taken, leaving the previous handler in place.
func (c *Contract) OnQuery(name string, handler QueryHandler) error {
	_, found := c.queries[name]
	if found {
		return xerrors.Errorf("query handler '%s' already registered", name)
	}

	c.queries[name] = handler
	c.qCounters[name] = 0

	return nil
}

// DispatchInitialise invokes the init handler with the address of the owner of
// the chaincode. The handler is optional and its absence is not an error.
func (c *Contract) DispatchInitialise(owner []byte) Result {
	result := Result{Status: StatusOK}

	if c.init != nil {
		result = c.init.Init(owner)
	}

	return result
}

// DispatchTransaction routes the transaction to the handler registered under
// the name and returns its result verbatim. It returns StatusNotFound when
// the name is unknown, which the caller must treat as a rejected transaction.
//
// The counter of the name is incremented by one after the handler returns,
// whether the handler succeeded or not. It counts the dispatches that matched
// a registered name, not the successes.
func (c *Contract) DispatchTransaction(name string, tx txn.Transaction, index uint64) Result {
	result := Result{Status: StatusNotFound}

	handler, found := c.txs[name]
	if found {
		result = handler.Transact(tx, index)
		c.txCounters[name]++
	}

	return result
}

// DispatchQuery routes the query to the handler registered under the name. The
// response is written to the output document. It returns StatusNotFound when
// the name is unknown. The counter discipline is the same as for the
// transactions.
func (c *Contract) DispatchQuery(name string, in Query, out *Query) Status {
	status := StatusNotFound

	handler, found := c.queries[name]
	if found {
		status = handler.Query(in, out)
		c.qCounters[name]++
	}

	return status
}

// TransactionCount returns the number of times a transaction was dispatched to
// the handler of the name, including the dispatches where the handler itself
// reported a failure.
func (c *Contract) TransactionCount(name string) uint64 {
	return c.txCounters[name]
}

// QueryCount returns the number of times a query was dispatched to the handler
// of the name, including the dispatches where the handler itself reported a
// failure.
func (c *Contract) QueryCount(name string) uint64 {
	return c.qCounters[name]
}

// Attach stores the reference to the state adapter for the duration of the
// execution window. Attaching while already attached overwrites the previous
// reference, which indicates a caller that is not bracketing the executions
// correctly, so a warning is logged.
func (c *Contract) Attach(state StateAdapter) {
	if c.state != nil {
		ledger.Logger.Warn().Msg("attach on an already attached contract")
	}

	c.state = state
}

// Detach clears the reference to the state adapter. The executor must call it
// at the end of every execution window.
func (c *Contract) Detach() {
	c.state = nil
}

// State returns the currently attached state adapter. It panics when the
// contract is detached: using the state outside of an attach/detach bracket is
// a broken executor invariant, not a data condition.
func (c *Contract) State() StateAdapter {
	if c.state == nil {
		panic(xerrors.New("chaincode: not attached to a state"))
	}

	return c.state
}
