package tally

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/compose-network/crossdeploy/internal/confidential"
	"github.com/compose-network/crossdeploy/internal/contracts"
	"github.com/compose-network/crossdeploy/internal/logger"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// ErrTimeout is returned when a polled condition does not hold before the deadline.
var ErrTimeout = errors.New("timed out waiting for condition")

var errNotReady = errors.New("not ready")

type (
	endpoint interface {
		Address() common.Address
		GetVotePower(opts *bind.CallOpts, id *big.Int, choice uint8, publicKey [32]byte) ([]byte, error)
		GetIsExecuted(opts *bind.CallOpts, id *big.Int) (bool, error)
	}

	decrypter interface {
		Token(contract common.Address) (confidential.Token, error)
		Decrypt(contract common.Address, ciphertext []byte) (*big.Int, error)
	}

	// Tally is the decrypted vote power per choice.
	Tally struct {
		For     uint64 `yaml:"for"`
		Against uint64 `yaml:"against"`
		Abstain uint64 `yaml:"abstain"`
	}

	// Polling bounds one wait loop.
	Polling struct {
		Interval time.Duration
		Timeout  time.Duration
	}

	// Reader polls the confidential endpoint and decrypts results with one
	// account's token.
	Reader struct {
		endpoint  endpoint
		decrypter decrypter
		tally     Polling
		execution Polling
		logger    *slog.Logger
	}
)

func (t Tally) Total() uint64 {
	return t.For + t.Against + t.Abstain
}

func NewReader(e endpoint, d decrypter, tally, execution Polling) *Reader {
	return &Reader{
		endpoint:  e,
		decrypter: d,
		tally:     tally,
		execution: execution,
		logger:    logger.Named("tally_reader"),
	}
}

// Read polls until the decrypted counts add up to at least expected. On
// timeout it returns the last tally it managed to read together with ErrTimeout.
func (r *Reader) Read(ctx context.Context, id *big.Int, expected uint64) (Tally, error) {
	var last Tally

	err := r.poll(ctx, r.tally, func(ctx context.Context) error {
		t, err := r.readOnce(ctx, id)
		if err != nil {
			return err
		}
		last = t

		log := r.logger.
			With("proposal_id", id).
			With("for", t.For).
			With("against", t.Against).
			With("abstain", t.Abstain)
		if t.Total() < expected {
			log.With("expected", expected).Debug("tally incomplete")
			return errNotReady
		}
		log.Info("tally read")
		return nil
	})
	if err != nil {
		return last, fmt.Errorf("tally of proposal %s: %w", id, err)
	}
	return last, nil
}

// IsExecuted reads the execution flag once.
func (r *Reader) IsExecuted(ctx context.Context, id *big.Int) (bool, error) {
	executed, err := r.endpoint.GetIsExecuted(&bind.CallOpts{Context: ctx}, id)
	if err != nil {
		return false, fmt.Errorf("failed to read execution status: %w", err)
	}
	return executed, nil
}

// WaitExecuted polls the execution flag until it is set.
func (r *Reader) WaitExecuted(ctx context.Context, id *big.Int) (bool, error) {
	err := r.poll(ctx, r.execution, func(ctx context.Context) error {
		executed, err := r.IsExecuted(ctx, id)
		if err != nil {
			return err
		}
		if !executed {
			return errNotReady
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("execution of proposal %s: %w", id, err)
	}
	return true, nil
}

func (r *Reader) readOnce(ctx context.Context, id *big.Int) (Tally, error) {
	contract := r.endpoint.Address()
	token, err := r.decrypter.Token(contract)
	if err != nil {
		return Tally{}, backoff.Permanent(err)
	}

	var counts [3]uint64
	for _, choice := range []contracts.Choice{contracts.ChoiceAgainst, contracts.ChoiceFor, contracts.ChoiceAbstain} {
		ciphertext, err := r.endpoint.GetVotePower(&bind.CallOpts{Context: ctx}, id, uint8(choice), token.PublicKey)
		if err != nil {
			return Tally{}, fmt.Errorf("failed to read vote power for %s: %w", choice, err)
		}
		value, err := r.decrypter.Decrypt(contract, ciphertext)
		if err != nil {
			return Tally{}, backoff.Permanent(fmt.Errorf("vote power for %s: %w", choice, err))
		}
		if !value.IsUint64() {
			return Tally{}, backoff.Permanent(fmt.Errorf("vote power for %s overflows: %s", choice, value))
		}
		counts[choice] = value.Uint64()
	}

	return Tally{
		For:     counts[contracts.ChoiceFor],
		Against: counts[contracts.ChoiceAgainst],
		Abstain: counts[contracts.ChoiceAbstain],
	}, nil
}

// poll retries check at a constant interval until it succeeds, fails
// permanently, or the timeout elapses.
func (r *Reader) poll(ctx context.Context, p Polling, check func(ctx context.Context) error) error {
	pollCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	var lastErr error
	err := backoff.Retry(func() error {
		lastErr = check(pollCtx)
		return lastErr
	}, backoff.WithContext(backoff.NewConstantBackOff(p.Interval), pollCtx))
	if err == nil {
		return nil
	}

	if ctx.Err() == nil && pollCtx.Err() != nil {
		if lastErr != nil && !errors.Is(lastErr, errNotReady) {
			return fmt.Errorf("%w after %s: %w", ErrTimeout, p.Timeout, lastErr)
		}
		return fmt.Errorf("%w after %s", ErrTimeout, p.Timeout)
	}
	return err
}
