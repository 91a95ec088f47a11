package tally

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/compose-network/crossdeploy/internal/confidential"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"golang.org/x/crypto/nacl/box"
)

var fast = Polling{Interval: 5 * time.Millisecond, Timeout: 200 * time.Millisecond}

type fakeEndpoint struct {
	address common.Address

	mu       sync.Mutex
	rounds   [][3]uint64 // against, for, abstain per full read
	reads    int
	executed []bool
	checks   int
}

func (e *fakeEndpoint) Address() common.Address { return e.address }

func (e *fakeEndpoint) GetVotePower(_ *bind.CallOpts, _ *big.Int, choice uint8, publicKey [32]byte) ([]byte, error) {
	e.mu.Lock()
	round := e.rounds[min(e.reads/3, len(e.rounds)-1)]
	e.reads++
	e.mu.Unlock()

	return confidential.Seal(&publicKey, new(big.Int).SetUint64(round[choice]).Bytes())
}

func (e *fakeEndpoint) GetIsExecuted(*bind.CallOpts, *big.Int) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	executed := e.executed[min(e.checks, len(e.executed)-1)]
	e.checks++
	return executed, nil
}

type keyDecrypter struct {
	token   confidential.Token
	private *[32]byte
	bound   common.Address
}

func (d *keyDecrypter) Token(contract common.Address) (confidential.Token, error) {
	if contract != d.bound {
		return confidential.Token{}, confidential.ErrTokenNotBound
	}
	return d.token, nil
}

func (d *keyDecrypter) Decrypt(contract common.Address, ciphertext []byte) (*big.Int, error) {
	if contract != d.bound {
		return nil, confidential.ErrTokenNotBound
	}
	plain, err := confidential.Open(&d.token.PublicKey, d.private, ciphertext)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(plain), nil
}

func newDecrypter(t *testing.T, bound common.Address) *keyDecrypter {
	public, private := mustKey(t)
	return &keyDecrypter{token: confidential.Token{Contract: bound, PublicKey: *public}, private: private, bound: bound}
}

func TestReadWaitsForAllBallots(t *testing.T) {
	c := qt.New(t)

	address := common.HexToAddress("0x1000")
	endpoint := &fakeEndpoint{
		address: address,
		rounds: [][3]uint64{
			{0, 0, 0},
			{1, 1, 0},
			{1, 2, 1},
		},
	}
	reader := NewReader(endpoint, newDecrypter(t, address), fast, fast)

	got, err := reader.Read(context.Background(), big.NewInt(1), 4)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, Tally{For: 2, Against: 1, Abstain: 1})
	c.Assert(got.Total(), qt.Equals, uint64(4))
	c.Assert(endpoint.reads, qt.Equals, 9)
}

func TestReadTimesOutWithLastTally(t *testing.T) {
	c := qt.New(t)

	address := common.HexToAddress("0x1000")
	endpoint := &fakeEndpoint{address: address, rounds: [][3]uint64{{1, 1, 0}}}
	reader := NewReader(endpoint, newDecrypter(t, address), fast, fast)

	got, err := reader.Read(context.Background(), big.NewInt(1), 4)
	c.Assert(errors.Is(err, ErrTimeout), qt.IsTrue, qt.Commentf("err %v", err))
	c.Assert(got, qt.Equals, Tally{For: 1, Against: 1})
}

func TestReadStopsOnForeignToken(t *testing.T) {
	c := qt.New(t)

	endpoint := &fakeEndpoint{address: common.HexToAddress("0x1000"), rounds: [][3]uint64{{0, 0, 0}}}
	reader := NewReader(endpoint, newDecrypter(t, common.HexToAddress("0x2000")), fast, fast)

	_, err := reader.Read(context.Background(), big.NewInt(1), 1)
	c.Assert(errors.Is(err, confidential.ErrTokenNotBound), qt.IsTrue)
	c.Assert(errors.Is(err, ErrTimeout), qt.IsFalse)
	c.Assert(endpoint.reads, qt.Equals, 0)
}

func TestWaitExecuted(t *testing.T) {
	c := qt.New(t)

	address := common.HexToAddress("0x1000")
	endpoint := &fakeEndpoint{address: address, executed: []bool{false, false, true}}
	reader := NewReader(endpoint, newDecrypter(t, address), fast, fast)

	before, err := reader.IsExecuted(context.Background(), big.NewInt(1))
	c.Assert(err, qt.IsNil)
	c.Assert(before, qt.IsFalse)

	executed, err := reader.WaitExecuted(context.Background(), big.NewInt(1))
	c.Assert(err, qt.IsNil)
	c.Assert(executed, qt.IsTrue)
	c.Assert(endpoint.checks, qt.Equals, 3)
}

func TestWaitExecutedTimesOut(t *testing.T) {
	c := qt.New(t)

	address := common.HexToAddress("0x1000")
	endpoint := &fakeEndpoint{address: address, executed: []bool{false}}
	reader := NewReader(endpoint, newDecrypter(t, address), fast, fast)

	executed, err := reader.WaitExecuted(context.Background(), big.NewInt(1))
	c.Assert(errors.Is(err, ErrTimeout), qt.IsTrue)
	c.Assert(executed, qt.IsFalse)
}

func mustKey(t *testing.T) (*[32]byte, *[32]byte) {
	t.Helper()
	public, private, err := box.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	return public, private
}
