// Package chain defines the boundary types shared by the per-chain transaction packages.
package chain

import "context"

type Coin string
type Network string

var (
	BTC  Coin = "BTC"
	NEAR Coin = "NEAR"
)

var (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
	Regtest Network = "regtest"
	Signet  Network = "signet"
)

type (
	// TxBuilder finalizes an incrementally assembled transaction value.
	TxBuilder[T any] interface {
		Build() (T, error)
	}

	// Signer produces a signature over a message hash. Keys never enter this module:
	// implementations live with the key holder and return raw signature bytes.
	Signer interface {
		Sign(ctx context.Context, hash []byte) ([]byte, error)
	}
)
