package crossdeploy

import (
	"time"

	"github.com/compose-network/crossdeploy/internal/deployment"
	"github.com/compose-network/crossdeploy/internal/relay"
	"github.com/compose-network/crossdeploy/internal/tally"
)

type (
	// Report summarises one run. It is written as YAML once the run ends,
	// whether or not it completed.
	Report struct {
		Target         string            `yaml:"target"`
		Confidential   string            `yaml:"confidential"`
		StartedAt      time.Time         `yaml:"started-at"`
		FinishedAt     time.Time         `yaml:"finished-at"`
		Completed      bool              `yaml:"completed"`
		Deployments    []DeploymentEntry `yaml:"deployments"`
		Steps          []StepEntry       `yaml:"steps"`
		ProposalID     string            `yaml:"proposal-id,omitempty"`
		Ballots        []BallotEntry     `yaml:"ballots,omitempty"`
		Tally          *tally.Tally      `yaml:"tally,omitempty"`
		ExecutedBefore bool              `yaml:"executed-before"`
		Executed       bool              `yaml:"executed"`
		Relays         []RelayEntry      `yaml:"relays,omitempty"`
	}

	DeploymentEntry struct {
		Contract string `yaml:"contract"`
		Network  string `yaml:"network"`
		Address  string `yaml:"address"`
		TxHash   string `yaml:"tx-hash"`
	}

	StepEntry struct {
		Step int    `yaml:"step"`
		Name string `yaml:"name"`
		OK   bool   `yaml:"ok"`
	}

	BallotEntry struct {
		Voter     string `yaml:"voter"`
		Address   string `yaml:"address"`
		Choice    string `yaml:"choice"`
		Submitted bool   `yaml:"submitted"`
		TxHash    string `yaml:"tx-hash,omitempty"`
	}

	RelayEntry struct {
		Label    string        `yaml:"label"`
		Size     int           `yaml:"size"`
		Duration time.Duration `yaml:"duration"`
		Error    string        `yaml:"error,omitempty"`
	}
)

func newReport(plan Plan) *Report {
	return &Report{
		Target:       plan.Target.Name,
		Confidential: plan.Confidential.Name,
		StartedAt:    time.Now().UTC(),
	}
}

func (r *Report) addDeployments(book *deployment.Book) {
	for _, record := range book.Records() {
		r.Deployments = append(r.Deployments, DeploymentEntry{
			Contract: string(record.Contract),
			Network:  record.Network,
			Address:  record.Address.Hex(),
			TxHash:   record.TxHash.Hex(),
		})
	}
}

func (r *Report) addStep(step int, name string, ok bool) {
	r.Steps = append(r.Steps, StepEntry{Step: step, Name: name, OK: ok})
}

func (r *Report) addRelays(results []relay.Result) {
	for _, result := range results {
		entry := RelayEntry{Label: result.Label, Size: result.Size, Duration: result.Duration}
		if result.Err != nil {
			entry.Error = result.Err.Error()
		}
		r.Relays = append(r.Relays, entry)
	}
}
