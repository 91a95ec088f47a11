package crossdeploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/compose-network/crossdeploy/internal/confidential"
	"github.com/compose-network/crossdeploy/internal/contracts"
	"github.com/compose-network/crossdeploy/internal/deployment"
	"github.com/compose-network/crossdeploy/internal/logger"
	"github.com/compose-network/crossdeploy/internal/relay"
	"github.com/compose-network/crossdeploy/internal/tally"
	"github.com/compose-network/crossdeploy/internal/txexec"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Space initialisation values of the demo scenario.
const (
	votingDelay                           = 0
	minVotingDuration                     = 0
	maxVotingDuration                     = 1000
	proposalValidationStrategyMetadataURI = "proposalValidationStrategyMetadataURI"
	votingStrategyMetadataURI             = "votingStrategyMetadataURIs"
	daoURI                                = "SOC Test DAO"
	spaceMetadataURI                      = "SOC Test Space"
)

// defaultProposalID is used when the id of the new proposal cannot be read back.
var defaultProposalID = big.NewInt(1)

// ballot is one vote of the scenario, cast on behalf of accounts[Account].
type ballot struct {
	Account int
	Choice  contracts.Choice
}

// Ballots are submitted in this order.
var ballots = []ballot{
	{Account: 3, Choice: contracts.ChoiceAgainst},
	{Account: 1, Choice: contracts.ChoiceFor},
	{Account: 2, Choice: contracts.ChoiceFor},
	{Account: 0, Choice: contracts.ChoiceAbstain},
}

// talliedBy is the account whose token decrypts the tally.
const talliedBy = 0

type (
	sequencer interface {
		Run(ctx context.Context, hook deployment.Hook) (*deployment.Book, error)
	}

	executor interface {
		Try(ctx context.Context, op string, fn txexec.TxFunc) (*types.Receipt, bool)
	}

	relayer interface {
		Relay(ctx context.Context, ciphertext []byte) error
	}

	// Pipeline drives one deploy, initialise, propose, vote, tally, and execute run.
	Pipeline struct {
		plan         Plan
		targetSigner common.Address
		sequencer    sequencer
		target       executor
		confidential executor
		binder       binder
		provider     *confidential.Provider
		relayer      relayer
		logger       *slog.Logger
	}

	bound struct {
		space          space
		authenticator  authenticator
		endpoint       confidentialEndpoint
		targetEndpoint targetEndpoint
	}
)

func NewPipeline(
	plan Plan,
	targetSigner common.Address,
	sequencer sequencer,
	target executor,
	confidential executor,
	binder binder,
	provider *confidential.Provider,
	relayer relayer,
) *Pipeline {
	return &Pipeline{
		plan:         plan,
		targetSigner: targetSigner,
		sequencer:    sequencer,
		target:       target,
		confidential: confidential,
		binder:       binder,
		provider:     provider,
		relayer:      relayer,
		logger:       logger.Named("crossdeploy_pipeline"),
	}
}

// Run executes the pipeline. Only deployment failures abort it; every later
// failure is logged and the run carries on. The report is returned even when
// the run aborts.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := newReport(p.plan)
	defer func() { report.FinishedAt = time.Now().UTC() }()

	var instances []*confidential.Instance
	p.step(1).With("network", p.plan.Target.Name).Info("deploying contracts")
	book, err := p.sequencer.Run(ctx, func(ctx context.Context, endpoint deployment.Record) error {
		p.step(2).With("contract", endpoint.Address).Info("binding re-encryption tokens")
		created, err := confidential.CreateInstances(ctx, p.provider, p.plan.Accounts, endpoint.Address)
		if err != nil {
			return err
		}
		instances = created
		return nil
	})
	if err != nil {
		return report, p.fatal(newError(KindDeployment, "deploy contracts", err))
	}
	report.addDeployments(book)

	if len(instances) < len(ballots) {
		return report, p.fatal(newError(KindDeployment, "bind tokens", fmt.Errorf("need %d confidential instances, have %d", len(ballots), len(instances))))
	}

	c, err := p.bind(book)
	if err != nil {
		return report, p.fatal(newError(KindDeployment, "bind contracts", err))
	}

	dispatcher := relay.NewDispatcher(ctx, p.relayer)

	p.initializeSpace(ctx, c, book, report)
	p.initializeEndpoints(ctx, c, book, report)
	id := p.propose(ctx, c, book, dispatcher, report)
	submitted := p.vote(ctx, c, id, instances, dispatcher, report)

	reader := tally.NewReader(c.endpoint, instances[talliedBy], p.plan.Tally, p.plan.Execution)
	p.readTally(ctx, reader, id, submitted, report)
	executed := p.execute(ctx, c, reader, id, report)
	p.readExecutionStatus(ctx, reader, id, executed, report)

	report.addRelays(dispatcher.Close())
	for _, r := range report.Relays {
		if r.Error != "" {
			p.logRecovered(0, newError(KindRelay, "relay "+r.Label, errors.New(r.Error)))
		}
	}

	report.Completed = true
	p.logger.Info("crossdeploy finished")

	return report, nil
}

func (p *Pipeline) bind(book *deployment.Book) (bound, error) {
	var (
		c   bound
		err error
	)
	if c.space, err = p.binder.Space(book.Address(contracts.ContractNameSpace)); err != nil {
		return bound{}, err
	}
	if c.authenticator, err = p.binder.Authenticator(book.Address(contracts.ContractNameAuthenticator)); err != nil {
		return bound{}, err
	}
	if c.endpoint, err = p.binder.ConfidentialEndpoint(book.Address(contracts.ContractNameConfidentialEndpoint)); err != nil {
		return bound{}, err
	}
	if c.targetEndpoint, err = p.binder.TargetEndpoint(book.Address(contracts.ContractNameTargetEndpoint)); err != nil {
		return bound{}, err
	}
	return c, nil
}

// step 3
func (p *Pipeline) initializeSpace(ctx context.Context, c bound, book *deployment.Book, report *Report) {
	p.step(3).Info("initializing space")

	input := contracts.InitializeCalldata{
		Owner:             p.targetSigner,
		VotingDelay:       votingDelay,
		MinVotingDuration: minVotingDuration,
		MaxVotingDuration: maxVotingDuration,
		ProposalValidationStrategy: contracts.Strategy{
			Addr:   book.Address(contracts.ContractNameProposalValidationStrategy),
			Params: []byte{},
		},
		ProposalValidationStrategyMetadataURI: proposalValidationStrategyMetadataURI,
		DaoURI:                                daoURI,
		MetadataURI:                           spaceMetadataURI,
		VotingStrategies: []contracts.Strategy{{
			Addr:   book.Address(contracts.ContractNameVotingStrategy),
			Params: []byte{},
		}},
		VotingStrategyMetadataURIs: []string{votingStrategyMetadataURI},
		Authenticators:             []common.Address{book.Address(contracts.ContractNameAuthenticator)},
		TargetEndpoint:             book.Address(contracts.ContractNameTargetEndpoint),
	}

	_, ok := p.target.Try(ctx, "initialize space", func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return c.space.Initialize(opts, input)
	})
	report.addStep(3, "initialize space", ok)
}

// step 4: the two registrations are independent of each other.
func (p *Pipeline) initializeEndpoints(ctx context.Context, c bound, book *deployment.Book, report *Report) {
	p.step(4).Info("cross-initializing endpoints")

	targetAddress := book.Address(contracts.ContractNameTargetEndpoint)
	_, ok := p.confidential.Try(ctx, "initialize confidential endpoint", func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return c.endpoint.Initialize(opts, targetAddress)
	})
	report.addStep(4, "initialize confidential endpoint", ok)

	_, ok = p.target.Try(ctx, "initialize target endpoint", func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return c.targetEndpoint.Initialize(opts, c.endpoint.Address())
	})
	report.addStep(4, "initialize target endpoint", ok)
}

// step 5
func (p *Pipeline) propose(ctx context.Context, c bound, book *deployment.Book, dispatcher *relay.Dispatcher, report *Report) *big.Int {
	log := p.step(5)
	log.Info("submitting proposal")

	strategy := contracts.Strategy{Addr: book.Address(contracts.ContractNameExecutionStrategy), Params: []byte{}}
	payload, err := contracts.EncodePropose(p.targetSigner, "", strategy, []byte{})
	if err != nil {
		p.logRecovered(5, newError(KindOperational, "encode proposal", err))
		report.addStep(5, "propose", false)
		return p.fallbackProposalID(ctx, c)
	}

	receipt, ok := p.target.Try(ctx, "propose", func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return c.authenticator.Authenticate(opts, c.space.Address(), contracts.ProposeSelector, payload)
	})
	report.addStep(5, "propose", ok)

	var id *big.Int
	if ok {
		id, _ = contracts.ProposalIDFromReceipt(receipt, c.space.Address())
	}
	if id == nil {
		id = p.fallbackProposalID(ctx, c)
	}
	report.ProposalID = id.String()
	log.With("proposal_id", id).Info("proposal id resolved")

	record, err := c.space.Proposals(&bind.CallOpts{Context: ctx}, id)
	if err != nil {
		p.logRecovered(5, newError(KindOperational, "read proposal", err))
		return id
	}
	encoded, err := contracts.EncodeProposalRecord(record)
	if err != nil {
		p.logRecovered(5, newError(KindOperational, "encode proposal record", err))
		return id
	}
	dispatcher.Go("proposal", encoded)

	return id
}

// fallbackProposalID reads the id from the space counter when no
// ProposalCreated event was found.
func (p *Pipeline) fallbackProposalID(ctx context.Context, c bound) *big.Int {
	next, err := c.space.NextProposalID(&bind.CallOpts{Context: ctx})
	if err == nil && next.Cmp(big.NewInt(1)) > 0 {
		return new(big.Int).Sub(next, big.NewInt(1))
	}
	if err != nil {
		p.logRecovered(5, newError(KindOperational, "read next proposal id", err))
	}
	p.step(5).With("proposal_id", defaultProposalID).Warn("proposal id not found, using default")
	return new(big.Int).Set(defaultProposalID)
}

// step 6. Returns how many ballots were confirmed.
func (p *Pipeline) vote(ctx context.Context, c bound, id *big.Int, instances []*confidential.Instance, dispatcher *relay.Dispatcher, report *Report) uint64 {
	p.step(6).With("ballots", len(ballots)).Info("voting")

	var submitted uint64
	for _, b := range ballots {
		instance := instances[b.Account]
		voter := instance.Account()
		op := fmt.Sprintf("vote %s by %s", b.Choice, voter.Name)
		entry := BallotEntry{Voter: voter.Name, Address: voter.Address.Hex(), Choice: b.Choice.String()}

		encrypted, err := instance.Encrypt8(ctx, uint8(b.Choice))
		if err != nil {
			p.logRecovered(6, newError(KindOperational, op, err))
			report.Ballots = append(report.Ballots, entry)
			continue
		}
		dispatcher.Go("ballot "+voter.Name, encrypted)

		payload, err := contracts.EncodeVote(voter.Address, id, encrypted, []contracts.IndexedStrategy{{Index: 0, Params: []byte{}}}, "")
		if err != nil {
			p.logRecovered(6, newError(KindOperational, op, err))
			report.Ballots = append(report.Ballots, entry)
			continue
		}

		receipt, ok := p.target.Try(ctx, op, func(opts *bind.TransactOpts) (*types.Transaction, error) {
			opts.Value = new(big.Int).Set(p.plan.Deposit)
			return c.authenticator.Authenticate(opts, c.space.Address(), contracts.VoteSelector, payload)
		})
		if ok {
			submitted++
			entry.Submitted = true
			entry.TxHash = receipt.TxHash.Hex()
		}
		report.Ballots = append(report.Ballots, entry)
	}

	report.addStep(6, "vote", submitted == uint64(len(ballots)))
	return submitted
}

// step 7
func (p *Pipeline) readTally(ctx context.Context, reader *tally.Reader, id *big.Int, expected uint64, report *Report) {
	log := p.step(7).With("proposal_id", id).With("expected", expected)
	log.Info("reading tally")

	result, err := reader.Read(ctx, id, expected)
	report.Tally = &result
	if err != nil {
		kind := KindOperational
		if errors.Is(err, tally.ErrTimeout) {
			kind = KindTimeout
		}
		p.logRecovered(7, newError(kind, "read tally", err))
		report.addStep(7, "tally", false)
		return
	}

	if result.Total() != expected {
		log.With("total", result.Total()).Warn("tally does not match the submitted ballots")
	}
	log.
		With("for", result.For).
		With("against", result.Against).
		With("abstain", result.Abstain).
		Info("tally decrypted")
	report.addStep(7, "tally", true)
}

// step 8. Returns whether the execute transaction was confirmed.
func (p *Pipeline) execute(ctx context.Context, c bound, reader *tally.Reader, id *big.Int, report *Report) bool {
	log := p.step(8).With("proposal_id", id)

	before, err := reader.IsExecuted(ctx, id)
	if err != nil {
		p.logRecovered(8, newError(KindOperational, "read execution status", err))
	}
	report.ExecutedBefore = before
	log.With("executed", before).Info("executing proposal")

	_, ok := p.target.Try(ctx, "execute", func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return c.space.Execute(opts, id, []byte{})
	})
	report.addStep(8, "execute", ok)
	return ok
}

// step 9. Without a confirmed execute there is nothing to wait for, so the
// flag is read once.
func (p *Pipeline) readExecutionStatus(ctx context.Context, reader *tally.Reader, id *big.Int, executeConfirmed bool, report *Report) {
	log := p.step(9).With("proposal_id", id)
	log.Info("checking execution status")

	var (
		executed bool
		err      error
	)
	if executeConfirmed {
		executed, err = reader.WaitExecuted(ctx, id)
	} else {
		executed, err = reader.IsExecuted(ctx, id)
	}
	if err != nil {
		kind := KindOperational
		if errors.Is(err, tally.ErrTimeout) {
			kind = KindTimeout
		}
		p.logRecovered(9, newError(kind, "execution status", err))
	}

	report.Executed = executed
	report.addStep(9, "execution status", executed)
	log.With("executed", executed).Info("execution status read")
}

func (p *Pipeline) step(n int) *slog.Logger {
	return p.logger.With("step", n)
}

func (p *Pipeline) logRecovered(step int, err *Error) {
	log := p.logger.With("kind", err.Kind).With("op", err.Op).With("err", err.Err.Error())
	if step > 0 {
		log = log.With("step", step)
	}
	log.Error("operation failed, continuing")
}

func (p *Pipeline) fatal(err *Error) error {
	p.logger.With("kind", err.Kind).With("op", err.Op).With("err", err.Err.Error()).Error("pipeline aborted")
	return err
}
