package chain

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

// ErrInvalidMnemonic is returned for phrases with unknown words or a bad checksum.
var ErrInvalidMnemonic = errors.New("mnemonic is not a valid BIP-39 phrase")

// AccountNames are the role labels of the demo accounts, in derivation order.
var AccountNames = []string{"alice", "bob", "carol", "dave", "eve"}

// Account is a named demo account used on the confidential chain.
type Account struct {
	Name    string
	Index   uint32
	Key     *ecdsa.PrivateKey
	Address common.Address
}

// NamedAccounts derives the demo accounts from mnemonic along m/44'/60'/0'/0/i.
func NamedAccounts(mnemonic string) ([]Account, error) {
	seed, err := mnemonicSeed(mnemonic)
	if err != nil {
		return nil, err
	}

	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}

	result := make([]Account, 0, len(AccountNames))
	for i, name := range AccountNames {
		key, err := deriveKey(master, uint32(i))
		if err != nil {
			return nil, fmt.Errorf("failed to derive account %s: %w", name, err)
		}
		address, err := AddressFromPrivateKey(key)
		if err != nil {
			return nil, err
		}
		result = append(result, Account{
			Name:    name,
			Index:   uint32(i),
			Key:     key,
			Address: address,
		})
	}

	return result, nil
}

// mnemonicSeed turns a BIP-39 phrase into its 64 byte seed (empty passphrase).
// Unknown words and a bad checksum are rejected.
func mnemonicSeed(mnemonic string) ([]byte, error) {
	words := strings.Fields(mnemonic)
	if n := len(words); n < 12 || n > 24 || n%3 != 0 {
		return nil, fmt.Errorf("mnemonic must have 12, 15, 18, 21 or 24 words, got %d", n)
	}

	phrase := strings.Join(words, " ")
	if !bip39.IsMnemonicValid(phrase) {
		return nil, ErrInvalidMnemonic
	}
	return bip39.NewSeed(phrase, ""), nil
}

func deriveKey(master *hdkeychain.ExtendedKey, index uint32) (*ecdsa.PrivateKey, error) {
	path := make(accounts.DerivationPath, len(accounts.DefaultBaseDerivationPath))
	copy(path, accounts.DefaultBaseDerivationPath)
	path[len(path)-1] = index

	key := master
	for _, component := range path {
		var err error
		key, err = key.Derive(component)
		if err != nil {
			return nil, err
		}
	}

	private, err := key.ECPrivKey()
	if err != nil {
		return nil, err
	}

	return crypto.ToECDSA(private.Serialize())
}
