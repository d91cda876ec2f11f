// Package main implements a single-node driver for the ledger. It applies
// transactions and queries to a local bbolt-backed store, without any network
// involved, which is useful to bootstrap a chaincode and to inspect its state.
package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"

	urfave "github.com/urfave/cli/v2"
	"go.dedis.ch/ledger"
	"go.dedis.ch/ledger/core/chaincode"
	"go.dedis.ch/ledger/core/chaincode/token"
	"go.dedis.ch/ledger/core/executor"
	"go.dedis.ch/ledger/core/store"
	"go.dedis.ch/ledger/core/store/kv"
	"go.dedis.ch/ledger/core/txn"
	"go.dedis.ch/ledger/core/txn/signed"
	"go.dedis.ch/ledger/crypto/ed25519"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

var stateBucket = []byte("state")

// Genesis is the definition of the initial state of the ledger.
type Genesis struct {
	// Supply is the amount of tokens credited to the owner.
	Supply uint64 `yaml:"supply"`

	// Owner is the address of the owner of the token chaincode, in
	// hexadecimal.
	Owner string `yaml:"owner"`
}

func main() {
	app := makeApp()

	err := app.Run(os.Args)
	if err != nil {
		ledger.Logger.Fatal().Err(err).Msg("command failed")
	}
}

func makeApp() *urfave.App {
	dbFlag := &urfave.StringFlag{
		Name:  "db",
		Usage: "path of the database file",
		Value: "ledger.db",
	}

	return &urfave.App{
		Name:  "ledger",
		Usage: "drive a local ledger state with the token chaincode",
		Commands: []*urfave.Command{
			{
				Name:  "keygen",
				Usage: "generate a key pair and print its address",
				Flags: []urfave.Flag{
					&urfave.StringFlag{
						Name:  "key",
						Usage: "path of the private key file",
						Value: "ledger.key",
					},
				},
				Action: keygenAction,
			},
			{
				Name:  "init",
				Usage: "initialise the state from a genesis file",
				Flags: []urfave.Flag{
					dbFlag,
					&urfave.StringFlag{
						Name:     "genesis",
						Usage:    "path of the genesis file",
						Required: true,
					},
				},
				Action: initAction,
			},
			{
				Name:  "transfer",
				Usage: "transfer tokens to an address",
				Flags: []urfave.Flag{
					dbFlag,
					&urfave.StringFlag{
						Name:  "key",
						Usage: "path of the private key file",
						Value: "ledger.key",
					},
					&urfave.StringFlag{
						Name:     "to",
						Usage:    "address of the beneficiary, in hexadecimal",
						Required: true,
					},
					&urfave.Uint64Flag{
						Name:     "amount",
						Usage:    "amount to transfer",
						Required: true,
					},
					&urfave.Uint64Flag{
						Name:  "nonce",
						Usage: "sequence number of the transaction",
					},
					&urfave.Uint64Flag{
						Name:  "index",
						Usage: "index of the block driving the execution",
					},
				},
				Action: transferAction,
			},
			{
				Name:  "balance",
				Usage: "print the balance of an address",
				Flags: []urfave.Flag{
					dbFlag,
					&urfave.StringFlag{
						Name:     "address",
						Usage:    "address to look up, in hexadecimal",
						Required: true,
					},
				},
				Action: balanceAction,
			},
		},
	}
}

func keygenAction(c *urfave.Context) error {
	signer := ed25519.NewSigner()

	data, err := signer.MarshalBinary()
	if err != nil {
		return xerrors.Errorf("failed to marshal key: %v", err)
	}

	err = ioutil.WriteFile(c.String("key"), data, 0600)
	if err != nil {
		return xerrors.Errorf("failed to write key file: %v", err)
	}

	addr, err := signer.GetPublicKey().MarshalBinary()
	if err != nil {
		return xerrors.Errorf("failed to marshal public key: %v", err)
	}

	fmt.Fprintf(c.App.Writer, "address: %x\n", addr)

	return nil
}

func initAction(c *urfave.Context) error {
	data, err := ioutil.ReadFile(c.String("genesis"))
	if err != nil {
		return xerrors.Errorf("failed to read genesis file: %v", err)
	}

	genesis := Genesis{}

	err = yaml.Unmarshal(data, &genesis)
	if err != nil {
		return xerrors.Errorf("failed to decode genesis file: %v", err)
	}

	owner, err := hex.DecodeString(genesis.Owner)
	if err != nil {
		return xerrors.Errorf("failed to decode owner address: %v", err)
	}

	srvc := makeService(genesis.Supply)

	return withStore(c.String("db"), func(snap store.Snapshot) error {
		res, err := srvc.Initialise(snap, token.ContractName, owner)
		if err != nil {
			return xerrors.Errorf("failed to initialise: %v", err)
		}

		if !res.Accepted() {
			return xerrors.Errorf("initialise rejected: %s", res.Message)
		}

		fmt.Fprintf(c.App.Writer, "genesis applied: %d tokens to %s\n",
			genesis.Supply, genesis.Owner)

		return nil
	})
}

// transferOrder is the JSON payload of a transfer transaction.
type transferOrder struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

func transferAction(c *urfave.Context) error {
	data, err := ioutil.ReadFile(c.String("key"))
	if err != nil {
		return xerrors.Errorf("failed to read key file: %v", err)
	}

	signer, err := ed25519.NewSignerFromBytes(data)
	if err != nil {
		return xerrors.Errorf("failed to decode key: %v", err)
	}

	payload, err := json.Marshal(transferOrder{
		To:     c.String("to"),
		Amount: c.Uint64("amount"),
	})
	if err != nil {
		return xerrors.Errorf("failed to encode order: %v", err)
	}

	tx, err := signed.NewTransaction(c.Uint64("nonce"), token.ContractName,
		token.TransferAction, signer, signed.WithPayload(payload))
	if err != nil {
		return xerrors.Errorf("failed to make tx: %v", err)
	}

	srvc := makeService(0)

	return withStore(c.String("db"), func(snap store.Snapshot) error {
		results, err := srvc.ExecuteBlock(snap, c.Uint64("index"),
			[]txn.Transaction{tx})
		if err != nil {
			return xerrors.Errorf("failed to execute: %v", err)
		}

		res := results[0].Result
		if !res.Accepted() {
			return xerrors.Errorf("transfer rejected: %v (%s)",
				res.Status, res.Message)
		}

		fmt.Fprintf(c.App.Writer, "transfer applied: %x\n", results[0].TxID)

		return nil
	})
}

func balanceAction(c *urfave.Context) error {
	srvc := makeService(0)

	return withStore(c.String("db"), func(snap store.Snapshot) error {
		out := chaincode.Query{}

		status, err := srvc.Query(snap, token.ContractName, token.BalanceQuery,
			chaincode.Query{"address": c.String("address")}, &out)
		if err != nil {
			return xerrors.Errorf("failed to query: %v", err)
		}

		if status != chaincode.StatusOK {
			return xerrors.Errorf("query rejected: %v", status)
		}

		fmt.Fprintf(c.App.Writer, "balance of %s: %d\n",
			c.String("address"), out["balance"])

		return nil
	})
}

// makeService builds the execution service with the token chaincode
// registered.
func makeService(supply uint64) *executor.Service {
	srvc := executor.NewService()
	srvc.Set(token.ContractName, token.NewContract(supply).Contract)

	return srvc
}

// withStore opens the database and runs the callback inside a writable
// transaction on the state bucket.
func withStore(path string, fn func(store.Snapshot) error) error {
	db, err := kv.New(path)
	if err != nil {
		return xerrors.Errorf("failed to open db: %v", err)
	}

	defer db.Close()

	return db.Update(stateBucket, func(bucket kv.Bucket) error {
		return fn(kv.NewSnapshot(bucket))
	})
}
