// Package executor implements the sequential execution of transactions against
// the registered chaincodes.
//
// The service owns the mapping from a chaincode name to its contract instance.
// For every execution unit it builds a state adapter scoped to the chaincode,
// attaches it to the contract, dispatches and detaches. The transactions of a
// block are applied one by one, in the order of the block, so that every node
// reaches the same final state.
package executor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/xid"
	"go.dedis.ch/ledger"
	"go.dedis.ch/ledger/core/chaincode"
	"go.dedis.ch/ledger/core/store"
	"go.dedis.ch/ledger/core/txn"
	"golang.org/x/xerrors"
)

// defines prometheus metrics
var (
	promTxs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ledger_executor_transactions_block",
		Help:    "number of transactions in the last block",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 20, 30, 50, 100},
	})

	promRejectedTxs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ledger_executor_transactions_rejected_block",
		Help:    "number of rejected transactions in the last block",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 20, 30, 50, 100},
	})
)

func init() {
	ledger.PromCollectors = append(ledger.PromCollectors, promTxs, promRejectedTxs)
}

// verifiable is the capability of a transaction to authenticate its identity.
// A transaction that offers it is verified before it is dispatched.
type verifiable interface {
	Verify() error
}

// TransactionResult is the outcome of one transaction of a block.
type TransactionResult struct {
	// TxID is the identifier of the transaction.
	TxID []byte

	// Result is the outcome returned by the dispatch.
	Result chaincode.Result
}

// Service dispatches transactions and queries to the chaincodes registered on
// the ledger.
//
// The service must be driven by a single goroutine per snapshot: the contracts
// and their counters are deliberately not thread-safe so that the execution
// stays deterministic.
type Service struct {
	contracts map[string]*chaincode.Contract
}

// NewService creates an execution service with no chaincode registered.
func NewService() *Service {
	return &Service{
		contracts: make(map[string]*chaincode.Contract),
	}
}

// Set stores the contract using the name as the key. A transaction triggers
// the contract by addressing the same name. It panics when the name is already
// taken as a deployment with ambiguous names must never run.
func (s *Service) Set(name string, contract *chaincode.Contract) {
	_, found := s.contracts[name]
	if found {
		panic(xerrors.Errorf("chaincode '%s' already registered", name))
	}

	s.contracts[name] = contract
}

// Initialise dispatches the init handler of the chaincode with the owner
// address, bracketing the call with one attach/detach pair.
func (s *Service) Initialise(snap store.Snapshot, name string, owner []byte) (chaincode.Result, error) {
	contract := s.contracts[name]
	if contract == nil {
		return chaincode.Result{}, xerrors.Errorf("unknown chaincode '%s'", name)
	}

	contract.Attach(chaincode.NewSnapshotAdapter(name, snap))
	defer contract.Detach()

	return contract.DispatchInitialise(owner), nil
}

// ExecuteBlock applies the transactions of the block to the snapshot, in
// order, and returns the result of every transaction. A transaction that
// carries a signature is verified first, and one that fails verification, or
// is addressed to an unknown chaincode, is rejected without invoking any
// contract.
func (s *Service) ExecuteBlock(snap store.Snapshot, index uint64,
	txs []txn.Transaction) ([]TransactionResult, error) {

	logger := ledger.Logger.With().
		Str("batch", xid.New().String()).
		Uint64("block", index).
		Logger()

	results := make([]TransactionResult, len(txs))

	rejected := 0

	for i, tx := range txs {
		if v, ok := tx.(verifiable); ok {
			err := v.Verify()
			if err != nil {
				results[i] = TransactionResult{
					TxID: tx.GetID(),
					Result: chaincode.Result{
						Status:  chaincode.StatusFailed,
						Message: "invalid transaction: " + err.Error(),
					},
				}

				rejected++

				logger.Debug().
					Err(err).
					Msg("transaction verification failed")

				continue
			}
		}

		name := tx.GetContract()

		contract := s.contracts[name]
		if contract == nil {
			results[i] = TransactionResult{
				TxID: tx.GetID(),
				Result: chaincode.Result{
					Status:  chaincode.StatusNotFound,
					Message: "unknown chaincode '" + name + "'",
				},
			}

			rejected++

			continue
		}

		contract.Attach(chaincode.NewSnapshotAdapter(name, snap))

		res := contract.DispatchTransaction(tx.GetAction(), tx, index)

		contract.Detach()

		if !res.Accepted() {
			rejected++

			logger.Debug().
				Str("contract", name).
				Str("action", tx.GetAction()).
				Stringer("status", res.Status).
				Msg("transaction rejected")
		}

		results[i] = TransactionResult{
			TxID:   tx.GetID(),
			Result: res,
		}
	}

	promTxs.Observe(float64(len(txs)))
	promRejectedTxs.Observe(float64(rejected))

	logger.Info().
		Int("transactions", len(txs)).
		Int("rejected", rejected).
		Msg("block executed")

	return results, nil
}

// Query dispatches the query to the chaincode of the name, bracketing the call
// with one attach/detach pair.
func (s *Service) Query(snap store.Snapshot, name, query string,
	in chaincode.Query, out *chaincode.Query) (chaincode.Status, error) {

	contract := s.contracts[name]
	if contract == nil {
		return chaincode.StatusNotFound, xerrors.Errorf("unknown chaincode '%s'", name)
	}

	contract.Attach(chaincode.NewSnapshotAdapter(name, snap))
	defer contract.Detach()

	return contract.DispatchQuery(query, in, out), nil
}
