package network

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedNetwork is returned for identifiers outside the closed set of networks.
var ErrUnsupportedNetwork = errors.New("unsupported network")

//go:embed networks.yaml
var networksYAML []byte

type (
	// Descriptor is an immutable entry of the network table.
	Descriptor struct {
		Name         string
		ChainID      uint64
		RPCURL       string
		Confidential bool
	}

	entry struct {
		ChainID      uint64 `yaml:"chain-id"`
		RPCURL       string `yaml:"rpc-url"`
		Confidential bool   `yaml:"confidential"`
	}
)

var (
	loadOnce sync.Once
	table    map[string]Descriptor
	loadErr  error
)

func load() (map[string]Descriptor, error) {
	loadOnce.Do(func() {
		table, loadErr = parse(networksYAML)
	})
	return table, loadErr
}

func parse(data []byte) (map[string]Descriptor, error) {
	var entries map[string]entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse network table: %w", err)
	}

	descriptors := make(map[string]Descriptor, len(entries))
	confidential := 0
	for name, e := range entries {
		if e.ChainID == 0 || e.RPCURL == "" {
			return nil, fmt.Errorf("network %s: chain-id and rpc-url are required", name)
		}
		if e.Confidential {
			confidential++
		}
		descriptors[name] = Descriptor{
			Name:         name,
			ChainID:      e.ChainID,
			RPCURL:       e.RPCURL,
			Confidential: e.Confidential,
		}
	}
	if confidential != 1 {
		return nil, fmt.Errorf("network table must contain exactly one confidential network, found %d", confidential)
	}

	return descriptors, nil
}

// Lookup returns the descriptor of the named network.
func Lookup(name string) (Descriptor, error) {
	networks, err := load()
	if err != nil {
		return Descriptor{}, err
	}

	d, ok := networks[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnsupportedNetwork, name)
	}
	return d, nil
}

// Confidential returns the confidential-compute network.
func Confidential() (Descriptor, error) {
	networks, err := load()
	if err != nil {
		return Descriptor{}, err
	}

	for _, d := range networks {
		if d.Confidential {
			return d, nil
		}
	}
	return Descriptor{}, errors.New("no confidential network configured")
}

// DeployTargets returns the networks crossdeploy may be pointed at.
func DeployTargets() []string {
	networks, err := load()
	if err != nil {
		return nil
	}

	var names []string
	for name, d := range networks {
		if !d.Confidential {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ValidateTarget checks that name may be used as the target leg of a run.
func ValidateTarget(name string) (Descriptor, error) {
	d, err := Lookup(name)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w; supported networks are %v", err, DeployTargets())
	}
	if d.Confidential {
		return Descriptor{}, fmt.Errorf("%w: %q is the confidential network and cannot be a deployment target; supported networks are %v",
			ErrUnsupportedNetwork, name, DeployTargets())
	}
	return d, nil
}
