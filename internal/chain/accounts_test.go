package chain

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
)

// Well-known development mnemonic; its first accounts are published by every
// local EVM devnet.
const devMnemonic = "test test test test test test test test test test test junk"

func TestNamedAccounts(t *testing.T) {
	c := qt.New(t)

	accs, err := NamedAccounts(devMnemonic)
	c.Assert(err, qt.IsNil)
	c.Assert(accs, qt.HasLen, len(AccountNames))

	c.Assert(accs[0].Name, qt.Equals, "alice")
	c.Assert(accs[0].Address.Hex(), qt.Equals, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	c.Assert(accs[1].Name, qt.Equals, "bob")
	c.Assert(accs[1].Address.Hex(), qt.Equals, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	c.Assert(accs[2].Address.Hex(), qt.Equals, "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")

	for i, acc := range accs {
		c.Assert(acc.Index, qt.Equals, uint32(i))
		addr, err := AddressFromPrivateKey(acc.Key)
		c.Assert(err, qt.IsNil)
		c.Assert(addr, qt.Equals, acc.Address)
	}
}

func TestNamedAccountsDeterministic(t *testing.T) {
	c := qt.New(t)

	first, err := NamedAccounts(devMnemonic)
	c.Assert(err, qt.IsNil)
	second, err := NamedAccounts("  test test test test test test test test test test test   junk ")
	c.Assert(err, qt.IsNil)

	for i := range first {
		c.Assert(second[i].Address, qt.Equals, first[i].Address)
	}
}

func TestNamedAccountsRejectsShortMnemonic(t *testing.T) {
	c := qt.New(t)

	_, err := NamedAccounts("test test junk")
	c.Assert(err, qt.ErrorMatches, `mnemonic must have .* got 3`)
}

func TestNamedAccountsRejectsInvalidMnemonic(t *testing.T) {
	c := qt.New(t)

	// misspelled last word
	_, err := NamedAccounts("test test test test test test test test test test test junkk")
	c.Assert(errors.Is(err, ErrInvalidMnemonic), qt.IsTrue)

	// known words, bad checksum
	_, err = NamedAccounts("abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon")
	c.Assert(errors.Is(err, ErrInvalidMnemonic), qt.IsTrue)

	_, err = NamedAccounts("abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about")
	c.Assert(err, qt.IsNil)
}

func TestParsePrivateKey(t *testing.T) {
	c := qt.New(t)

	const hexKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

	withPrefix, err := ParsePrivateKey("0x" + hexKey)
	c.Assert(err, qt.IsNil)
	withoutPrefix, err := ParsePrivateKey(hexKey)
	c.Assert(err, qt.IsNil)
	c.Assert(withPrefix.D.Cmp(withoutPrefix.D), qt.Equals, 0)

	addr, err := AddressFromPrivateKey(withPrefix)
	c.Assert(err, qt.IsNil)
	c.Assert(addr.Hex(), qt.Equals, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

	_, err = ParsePrivateKey("0xnothex")
	c.Assert(err, qt.ErrorMatches, `failed to parse private key: .*`)
}
