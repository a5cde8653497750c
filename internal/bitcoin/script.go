package bitcoin

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/goodnatureofminers/multichain-tx/internal/chain"
)

// PayToAddress builds an output paying value to an already derived address on network.
func PayToAddress(address string, network chain.Network, value btcutil.Amount) (TxOut, error) {
	params, err := ChainParams(network)
	if err != nil {
		return TxOut{}, err
	}
	addr, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return TxOut{}, fmt.Errorf("decode address %q: %w", address, err)
	}
	if !addr.IsForNet(params) {
		return TxOut{}, fmt.Errorf("address %q is not for network %s", address, network)
	}
	script, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return TxOut{}, fmt.Errorf("pay to address %q: %w", address, err)
	}
	return TxOut{Value: value, PkScript: script}, nil
}

// OutputAddresses extracts the addresses an output script pays to on network.
func OutputAddresses(out TxOut, network chain.Network) ([]string, error) {
	params, err := ChainParams(network)
	if err != nil {
		return nil, err
	}
	_, addrs, _, err := txscript.ExtractPkScriptAddrs(out.PkScript, params)
	if err != nil {
		return nil, err
	}

	result := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		result = append(result, addr.EncodeAddress())
	}
	return result, nil
}

// ChainParams maps a network name to btcd chain parameters.
func ChainParams(network chain.Network) (*chaincfg.Params, error) {
	switch strings.ToLower(string(network)) {
	case "main", "mainnet", "bitcoin":
		return &chaincfg.MainNetParams, nil
	case "testnet", "testnet3":
		return &chaincfg.TestNet3Params, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	default:
		return nil, fmt.Errorf("unsupported network %q", network)
	}
}
