package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stellar/go-stellar-sdk/clients/rpcclient"
	protocol "github.com/stellar/go-stellar-sdk/protocols/rpc"
	"github.com/stellar/go-stellar-sdk/xdr"
)

// defaultRequestTimeout bounds each RPC round trip. Stage-level timeouts are
// the transport's responsibility; the pipeline adds no retries of its own.
const defaultRequestTimeout = 60 * time.Second

// RPCService implements Service against a Soroban RPC node.
type RPCService struct {
	client *rpcclient.Client
}

var _ Service = (*RPCService)(nil)

// NewRPCService creates a Service backed by the Soroban RPC node at url.
func NewRPCService(url string) *RPCService {
	return &RPCService{
		client: rpcclient.NewClient(url, &http.Client{
			Timeout: defaultRequestTimeout,
		}),
	}
}

// GetAccount fetches account state through the account ledger-entry key.
func (s *RPCService) GetAccount(ctx context.Context, address string) (AccountState, error) {
	accountID, err := xdr.AddressToAccountId(address)
	if err != nil {
		return AccountState{}, fmt.Errorf("invalid account address %q: %w", address, err)
	}

	key := xdr.LedgerKey{
		Type: xdr.LedgerEntryTypeAccount,
		Account: &xdr.LedgerKeyAccount{
			AccountId: accountID,
		},
	}
	keyB64, err := xdr.MarshalBase64(key)
	if err != nil {
		return AccountState{}, fmt.Errorf("failed to marshal account key: %w", err)
	}

	resp, err := s.client.GetLedgerEntries(ctx, protocol.GetLedgerEntriesRequest{
		Keys: []string{keyB64},
	})
	if err != nil {
		return AccountState{}, fmt.Errorf("failed to look up account %s: %w", address, err)
	}
	if len(resp.Entries) == 0 {
		return AccountState{}, fmt.Errorf("account %s: %w", address, ErrAccountNotFound)
	}

	var entry xdr.LedgerEntryData
	if err := xdr.SafeUnmarshalBase64(resp.Entries[0].DataXDR, &entry); err != nil {
		return AccountState{}, fmt.Errorf("failed to parse account entry: %w", err)
	}
	if entry.Type != xdr.LedgerEntryTypeAccount || entry.Account == nil {
		return AccountState{}, errors.New("unexpected ledger entry type for account key")
	}

	return AccountState{
		Address:  address,
		Sequence: int64(entry.Account.SeqNum),
	}, nil
}

// SimulateTransaction dry-runs the envelope. A remote-diagnosed failure is
// not an error at this layer; it is reported through Simulation.Error so the
// caller can surface the diagnostic verbatim.
func (s *RPCService) SimulateTransaction(ctx context.Context, envelopeXDR string) (Simulation, error) {
	resp, err := s.client.SimulateTransaction(ctx, protocol.SimulateTransactionRequest{
		Transaction: envelopeXDR,
	})
	if err != nil {
		return Simulation{}, fmt.Errorf("simulate request failed: %w", err)
	}

	sim := Simulation{
		Error:              resp.Error,
		TransactionDataXDR: resp.TransactionDataXDR,
		MinResourceFee:     resp.MinResourceFee,
		LatestLedger:       resp.LatestLedger,
	}
	if len(resp.Results) > 0 {
		if resp.Results[0].AuthXDR != nil {
			sim.AuthXDR = *resp.Results[0].AuthXDR
		}
		if resp.Results[0].ReturnValueXDR != nil {
			sim.ResultXDR = *resp.Results[0].ReturnValueXDR
		}
	}

	return sim, nil
}

// SendTransaction submits the signed envelope.
func (s *RPCService) SendTransaction(ctx context.Context, signedEnvelopeXDR string) (Submission, error) {
	resp, err := s.client.SendTransaction(ctx, protocol.SendTransactionRequest{
		Transaction: signedEnvelopeXDR,
	})
	if err != nil {
		return Submission{}, fmt.Errorf("send transaction failed: %w", err)
	}

	return Submission{
		Hash:           resp.Hash,
		Status:         TxStatus(resp.Status),
		ErrorResultXDR: resp.ErrorResultXDR,
	}, nil
}

// GetTransaction reports the current status of a submitted transaction.
func (s *RPCService) GetTransaction(ctx context.Context, hash string) (TransactionInfo, error) {
	resp, err := s.client.GetTransaction(ctx, protocol.GetTransactionRequest{
		Hash: hash,
	})
	if err != nil {
		return TransactionInfo{}, fmt.Errorf("get transaction failed: %w", err)
	}

	return TransactionInfo{
		Status:    TxStatus(resp.Status),
		ResultXDR: resp.ResultXDR,
		Ledger:    resp.Ledger,
	}, nil
}

// LatestLedger returns the node's current ledger sequence.
func (s *RPCService) LatestLedger(ctx context.Context) (uint32, error) {
	resp, err := s.client.GetLatestLedger(ctx)
	if err != nil {
		return 0, fmt.Errorf("get latest ledger failed: %w", err)
	}

	return resp.Sequence, nil
}
