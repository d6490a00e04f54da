// Package remotetest provides a scripted in-memory Service for tests. It
// records every call so tests can assert ordering and zero-network
// guarantees.
package remotetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/tokenflex/tokenflex-go/remote"
)

// Service is a scripted remote.Service. Zero value is usable: every account
// is unknown and every transaction reports NOT_FOUND.
type Service struct {
	mu    sync.Mutex
	calls []string

	// Accounts maps known addresses to their state.
	Accounts map[string]remote.AccountState

	// SimulateResult is returned by SimulateTransaction; SimulateErr takes
	// precedence when set. SimulateSequence, when set, is consumed one entry
	// per call instead, the last entry repeating once exhausted.
	SimulateResult   remote.Simulation
	SimulateSequence []remote.Simulation
	SimulateErr      error
	simulateIdx      int

	// SubmitResult is returned by SendTransaction; SubmitErr takes
	// precedence when set.
	SubmitResult remote.Submission
	SubmitErr    error

	// StatusSequence is consumed one entry per GetTransaction call; once
	// exhausted the last entry repeats. ResultXDR is attached to terminal
	// statuses.
	StatusSequence []remote.TxStatus
	ResultXDR      string
	statusIdx      int

	// Ledger is returned by LatestLedger.
	Ledger uint32
}

var _ remote.Service = (*Service)(nil)

func (s *Service) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

// Calls returns the method names invoked so far, in order.
func (s *Service) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.calls...)
}

// CallCount returns how many times the named method was invoked.
func (s *Service) CallCount(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, c := range s.calls {
		if c == method {
			n++
		}
	}

	return n
}

func (s *Service) GetAccount(_ context.Context, address string) (remote.AccountState, error) {
	s.record("GetAccount")

	if state, ok := s.Accounts[address]; ok {
		return state, nil
	}

	return remote.AccountState{}, fmt.Errorf("account %s: %w", address, remote.ErrAccountNotFound)
}

func (s *Service) SimulateTransaction(_ context.Context, _ string) (remote.Simulation, error) {
	s.record("SimulateTransaction")

	if s.SimulateErr != nil {
		return remote.Simulation{}, s.SimulateErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.SimulateSequence) > 0 {
		idx := s.simulateIdx
		if idx >= len(s.SimulateSequence) {
			idx = len(s.SimulateSequence) - 1
		} else {
			s.simulateIdx++
		}

		return s.SimulateSequence[idx], nil
	}

	return s.SimulateResult, nil
}

func (s *Service) SendTransaction(_ context.Context, _ string) (remote.Submission, error) {
	s.record("SendTransaction")

	if s.SubmitErr != nil {
		return remote.Submission{}, s.SubmitErr
	}

	return s.SubmitResult, nil
}

func (s *Service) GetTransaction(_ context.Context, _ string) (remote.TransactionInfo, error) {
	s.record("GetTransaction")

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.StatusSequence) == 0 {
		return remote.TransactionInfo{Status: remote.TxStatusNotFound}, nil
	}

	idx := s.statusIdx
	if idx >= len(s.StatusSequence) {
		idx = len(s.StatusSequence) - 1
	} else {
		s.statusIdx++
	}

	info := remote.TransactionInfo{Status: s.StatusSequence[idx], Ledger: s.Ledger}
	if info.Status == remote.TxStatusSuccess || info.Status == remote.TxStatusFailed {
		info.ResultXDR = s.ResultXDR
	}

	return info, nil
}

func (s *Service) LatestLedger(_ context.Context) (uint32, error) {
	s.record("LatestLedger")

	return s.Ledger, nil
}
