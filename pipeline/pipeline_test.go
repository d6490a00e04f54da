package pipeline_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenflex/tokenflex-go/pkg/logger"
	"github.com/tokenflex/tokenflex-go/pipeline"
	"github.com/tokenflex/tokenflex-go/remote"
	"github.com/tokenflex/tokenflex-go/remote/remotetest"
	"github.com/tokenflex/tokenflex-go/scval"
	"github.com/tokenflex/tokenflex-go/wallet"
	"github.com/tokenflex/tokenflex-go/wallet/wallettest"
)

const (
	testSource   = "GBZXP4PWGMIYJKGNNWI3YVBPQIOVZOLNXL7OJMI3WFQLHA4NABOTYZLR"
	testContract = "CA3D5KRYM6CB7OWQ6TWYRR3Z4T7GNZLKERYNZGGA5SOAOPIFY6YQGAXE"

	testPassphrase = "Test SDF Network ; September 2015"
)

func testConfig() pipeline.Config {
	return pipeline.Config{
		ContractAddress:   testContract,
		NetworkPassphrase: testPassphrase,
		PollInterval:      time.Millisecond,
		MaxPollAttempts:   5,
	}
}

func newTestService() *remotetest.Service {
	return &remotetest.Service{
		Accounts: map[string]remote.AccountState{
			testSource: {Address: testSource, Sequence: 41},
		},
		SubmitResult:   remote.Submission{Hash: "h1", Status: remote.TxStatusPending},
		StatusSequence: []remote.TxStatus{remote.TxStatusPending, remote.TxStatusPending, remote.TxStatusSuccess},
	}
}

func newTestWallet() *wallettest.Wallet {
	return &wallettest.Wallet{
		AccountAddress: testSource,
		Network:        wallet.NetworkInfo{Passphrase: testPassphrase, Name: "Testnet"},
	}
}

func transferRequest(t *testing.T) *pipeline.Request {
	t.Helper()

	to, err := scval.Address(testSource)
	require.NoError(t, err)
	amount, err := scval.Int128("250")
	require.NoError(t, err)

	return pipeline.NewRequest(pipeline.KindTransfer, testSource, "transfer", []pipeline.Arg{
		{Name: "to", Value: to},
		{Name: "amount", Value: amount},
	})
}

func TestPipeline_Execute_Succeeds(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	w := newTestWallet()

	p, err := pipeline.New(testConfig(), svc, w, logger.Test(t))
	require.NoError(t, err)

	req := transferRequest(t)
	res, err := p.Execute(t.Context(), req)
	require.NoError(t, err)

	assert.Equal(t, pipeline.StatusSucceeded, res.Status)
	assert.Equal(t, pipeline.StatusSucceeded, req.Status())
	assert.Equal(t, "h1", res.Hash)

	// Strict stage ordering: encode happened before Execute; the network
	// sees lookup, dry run, submit, then three polls.
	assert.Equal(t, []string{
		"GetAccount",
		"SimulateTransaction",
		"SendTransaction",
		"GetTransaction",
		"GetTransaction",
		"GetTransaction",
	}, svc.Calls())
	assert.Equal(t, 1, w.SignCalls())
}

func TestPipeline_Execute_SimulationFailureNeverReachesSigner(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	svc.SimulateResult = remote.Simulation{Error: "HostError: Error(Contract, #13) account frozen"}
	w := newTestWallet()

	p, err := pipeline.New(testConfig(), svc, w, logger.Test(t))
	require.NoError(t, err)

	req := transferRequest(t)
	_, err = p.Execute(t.Context(), req)
	require.Error(t, err)

	var simErr *pipeline.SimulationError
	require.ErrorAs(t, err, &simErr)
	// The remote diagnostic is surfaced verbatim, never paraphrased.
	assert.Equal(t, "HostError: Error(Contract, #13) account frozen", simErr.Diagnostic)

	assert.Equal(t, pipeline.StatusFailed, req.Status())
	assert.Equal(t, 0, w.SignCalls())
	assert.Equal(t, 0, svc.CallCount("SendTransaction"))
}

func TestPipeline_Execute_AccountLookupFailure(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	svc.Accounts = nil // source unknown to the remote service
	w := newTestWallet()

	p, err := pipeline.New(testConfig(), svc, w, logger.Test(t))
	require.NoError(t, err)

	req := transferRequest(t)
	_, err = p.Execute(t.Context(), req)
	require.ErrorIs(t, err, pipeline.ErrAccountLookup)

	assert.Equal(t, pipeline.StatusFailed, req.Status())
	assert.Equal(t, 0, svc.CallCount("SimulateTransaction"))
}

func TestPipeline_Execute_UserRejection(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	w := newTestWallet()
	w.SignErr = wallet.ErrUserRejected

	p, err := pipeline.New(testConfig(), svc, w, logger.Test(t))
	require.NoError(t, err)

	req := transferRequest(t)
	_, err = p.Execute(t.Context(), req)
	require.ErrorIs(t, err, wallet.ErrUserRejected)

	assert.Equal(t, pipeline.StatusFailed, req.Status())
	assert.Equal(t, 0, svc.CallCount("SendTransaction"))
}

func TestPipeline_Execute_SubmissionRejected(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	svc.SubmitResult = remote.Submission{Status: remote.TxStatusError, ErrorResultXDR: "AAAA=="}
	w := newTestWallet()

	p, err := pipeline.New(testConfig(), svc, w, logger.Test(t))
	require.NoError(t, err)

	req := transferRequest(t)
	_, err = p.Execute(t.Context(), req)
	require.ErrorIs(t, err, pipeline.ErrSubmission)

	assert.Equal(t, pipeline.StatusFailed, req.Status())
	assert.Equal(t, 0, svc.CallCount("GetTransaction"))
}

func TestPipeline_Execute_TimesOutPastPollCap(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	svc.StatusSequence = []remote.TxStatus{remote.TxStatusPending}
	w := newTestWallet()

	p, err := pipeline.New(testConfig(), svc, w, logger.Test(t))
	require.NoError(t, err)

	req := transferRequest(t)
	res, err := p.Execute(t.Context(), req)
	require.ErrorIs(t, err, pipeline.ErrTimedOut)

	// Timed out is distinct from failed: the outcome is unknown.
	assert.Equal(t, pipeline.StatusTimedOut, res.Status)
	assert.Equal(t, pipeline.StatusTimedOut, req.Status())
	assert.Equal(t, "h1", res.Hash)
	assert.Equal(t, 5, svc.CallCount("GetTransaction"))
}

func TestPipeline_Execute_RemoteFailureIsVerbatim(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	svc.StatusSequence = []remote.TxStatus{remote.TxStatusPending, remote.TxStatusFailed}
	svc.ResultXDR = "failure-payload"
	w := newTestWallet()

	p, err := pipeline.New(testConfig(), svc, w, logger.Test(t))
	require.NoError(t, err)

	req := transferRequest(t)
	res, err := p.Execute(t.Context(), req)
	require.Error(t, err)

	var txErr *pipeline.TransactionFailedError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, string(remote.TxStatusFailed), txErr.Status)
	assert.Equal(t, "failure-payload", txErr.ResultXDR)

	assert.Equal(t, pipeline.StatusFailed, res.Status)
	assert.Equal(t, "h1", res.Hash)
}

func TestPipeline_Execute_RejectsNonDraftRequest(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	p, err := pipeline.New(testConfig(), svc, newTestWallet(), logger.Test(t))
	require.NoError(t, err)

	req := transferRequest(t)
	require.NoError(t, req.Transition(pipeline.StatusSimulating))

	_, err = p.Execute(t.Context(), req)
	require.Error(t, err)
	assert.Equal(t, 0, svc.CallCount("GetAccount"))
}

func TestPipeline_View_DoesNotSignOrSubmit(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	svc.SimulateResult = remote.Simulation{ResultXDR: "AAAAAQ=="}
	w := newTestWallet()

	p, err := pipeline.New(testConfig(), svc, w, logger.Test(t))
	require.NoError(t, err)

	sim, err := p.View(t.Context(), testSource, "balance", nil)
	require.NoError(t, err)
	assert.Equal(t, "AAAAAQ==", sim.ResultXDR)

	assert.Equal(t, 0, w.SignCalls())
	assert.Equal(t, 0, svc.CallCount("SendTransaction"))
}

func TestPipeline_New_ValidatesConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  pipeline.Config
	}{
		{
			name: "missing contract address",
			cfg:  pipeline.Config{NetworkPassphrase: testPassphrase},
		},
		{
			name: "account address instead of contract",
			cfg:  pipeline.Config{ContractAddress: testSource, NetworkPassphrase: testPassphrase},
		},
		{
			name: "missing passphrase",
			cfg:  pipeline.Config{ContractAddress: testContract},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := pipeline.New(tt.cfg, newTestService(), newTestWallet(), logger.Test(t))
			require.Error(t, err)
		})
	}
}

func TestPipeline_Execute_SimulationTransportError(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	svc.SimulateErr = errors.New("connection refused")
	w := newTestWallet()

	p, err := pipeline.New(testConfig(), svc, w, logger.Test(t))
	require.NoError(t, err)

	req := transferRequest(t)
	_, err = p.Execute(t.Context(), req)
	require.ErrorContains(t, err, "connection refused")
	assert.Equal(t, pipeline.StatusFailed, req.Status())
	assert.Equal(t, 0, w.SignCalls())
}
