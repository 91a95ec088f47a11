package deployment

import (
	"sync"

	"github.com/compose-network/crossdeploy/internal/contracts"
	"github.com/ethereum/go-ethereum/common"
)

type (
	// Record is a confirmed deployment. It is never modified once added.
	Record struct {
		Contract contracts.ContractName `json:"contract" yaml:"contract"`
		Network  string                 `json:"network" yaml:"network"`
		Address  common.Address         `json:"address" yaml:"address"`
		TxHash   common.Hash            `json:"txHash" yaml:"tx-hash"`
	}

	// Book holds the records of a run keyed by contract name, in confirmation order.
	Book struct {
		mu      sync.RWMutex
		records map[contracts.ContractName]Record
		order   []contracts.ContractName
	}
)

func NewBook() *Book {
	return &Book{records: make(map[contracts.ContractName]Record)}
}

// Add records r. Re-adding a contract replaces its record but keeps its position.
func (b *Book) Add(r Record) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.records[r.Contract]; !ok {
		b.order = append(b.order, r.Contract)
	}
	b.records[r.Contract] = r
}

func (b *Book) Get(name contracts.ContractName) (Record, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	r, ok := b.records[name]
	return r, ok
}

// Address returns the address of name, or the zero address when it was not deployed.
func (b *Book) Address(name contracts.ContractName) common.Address {
	r, _ := b.Get(name)
	return r.Address
}

// Records returns every record in confirmation order.
func (b *Book) Records() []Record {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Record, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, b.records[name])
	}
	return out
}

// ByNetwork groups contract addresses by network name.
func (b *Book) ByNetwork() map[string]map[contracts.ContractName]string {
	out := make(map[string]map[contracts.ContractName]string)
	for _, r := range b.Records() {
		if out[r.Network] == nil {
			out[r.Network] = make(map[contracts.ContractName]string)
		}
		out[r.Network][r.Contract] = r.Address.Hex()
	}
	return out
}
