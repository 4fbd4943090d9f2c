// Copyright 2024 The go-probeum Authors
// This file is part of the go-probeum library.
//
// The go-probeum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-probeum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-probeum library. If not, see <http://www.gnu.org/licenses/>.

// Package miner runs the background sealer state machine: given a
// candidate header and its parent, it iterates a registered key set over
// increasing timestamps until one wins the stake-weighted boundary check,
// then hands the sealed header to a callback.
package miner

import (
	"sync"
	"time"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/probechain/stakeseal/common"
	"github.com/probechain/stakeseal/consensus/stakeseal"
	"github.com/probechain/stakeseal/core/types"
	"github.com/probechain/stakeseal/crypto"
	"github.com/probechain/stakeseal/crypto/bls"
)

// pollInterval is how often the sealer checks whether wall-clock has
// caught up to its candidate timestamp.
const pollInterval = 100 * time.Millisecond

// State is the sealer's current position in its state machine.
type State int

const (
	Idle State = iota
	Waiting
	Trying
	Emitted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Waiting:
		return "waiting"
	case Trying:
		return "trying"
	case Emitted:
		return "emitted"
	default:
		return "unknown"
	}
}

// KeyPair is a registered minter identity: its BLS secret and public key.
// The address its stake balance is tracked under is derived from Public.
type KeyPair struct {
	Secret bls.Secret
	Public bls.Public
}

// Callback receives the RLP-independent sealed header once a key wins. It
// is invoked with the sealer's internal lock released and its in-flight
// state already cleared, so requesting another seal from inside the
// callback is accepted rather than dropped.
type Callback func(sealed *types.Header)

// Sealer runs one background generateSeal request at a time. A second
// request while one is already running is dropped; the first request
// wins. Sealer is safe for concurrent use.
type Sealer struct {
	engine *stakeseal.Engine
	keys   []KeyPair
	logger *zap.Logger

	submitLock sync.Mutex
	generating bool
	cancel     chan struct{}
	done       chan struct{}

	stateMu sync.RWMutex
	state   State
}

// NewSealer constructs a Sealer over engine, sealing on behalf of keys.
func NewSealer(engine *stakeseal.Engine, keys []KeyPair, logger *zap.Logger) *Sealer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sealer{engine: engine, keys: keys, logger: logger, state: Idle}
}

// State reports the sealer's current position in the state machine.
func (s *Sealer) State() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

func (s *Sealer) setState(st State) {
	s.stateMu.Lock()
	s.state = st
	s.stateMu.Unlock()
}

// ShouldSeal is unconditionally true; external orchestration decides when
// to call GenerateSeal.
func (s *Sealer) ShouldSeal() bool { return true }

// GenerateSeal starts sealing candidate on top of parent, invoking cb when
// a key wins. If a seal is already in flight, this call is a no-op: the
// first request wins.
func (s *Sealer) GenerateSeal(candidate, parent *types.Header, cb Callback) {
	s.submitLock.Lock()
	if s.generating {
		s.submitLock.Unlock()
		s.logger.Debug("generateSeal dropped: already sealing")
		return
	}
	s.generating = true
	s.cancel = make(chan struct{})
	s.done = make(chan struct{})
	cancel := s.cancel
	done := s.done
	s.submitLock.Unlock()

	go s.run(candidate.Copy(), parent, cb, cancel, done)
}

// Cancel aborts an in-flight seal and returns the sealer to Idle. It is a
// no-op if no seal is running.
func (s *Sealer) Cancel() {
	s.submitLock.Lock()
	if !s.generating {
		s.submitLock.Unlock()
		return
	}
	select {
	case <-s.cancel:
		// A concurrent Cancel already closed it.
	default:
		close(s.cancel)
	}
	done := s.done
	s.submitLock.Unlock()

	<-done
}

func (s *Sealer) run(candidate, parent *types.Header, cb Callback, cancel, done chan struct{}) {
	defer close(done)
	// emit clears the in-flight state itself, under submitLock, before it
	// invokes cb (see emit). This defer only needs to clean up the paths
	// that never reach a successful emit; running it again afterward would
	// race a re-entrant GenerateSeal call made from inside cb.
	emitted := false
	defer func() {
		if emitted {
			return
		}
		s.submitLock.Lock()
		s.generating = false
		s.submitLock.Unlock()
		s.setState(Idle)
	}()

	timestamp := minimalTimestamp(parent)
	s.setState(Waiting)

	for {
		if !s.waitForTimestamp(timestamp, cancel) {
			s.logger.Debug("generateSeal cancelled while waiting")
			return
		}

		s.setState(Trying)
		candidate.Timestamp = timestamp
		difficulty, err := s.engine.CalculateDifficulty(candidate.Number, parent.Difficulty, parent.Timestamp, timestamp)
		if err != nil {
			s.logger.Error("generateSeal: calculate difficulty", zap.Error(err))
			return
		}
		candidate.Difficulty = difficulty

		header, won := s.tryKeys(candidate, parent, cancel)
		if won {
			emitted = s.emit(header, parent, cb)
			return
		}
		select {
		case <-cancel:
			s.logger.Debug("generateSeal cancelled between rounds")
			return
		default:
		}

		timestamp = new(uint256.Int).AddUint64(timestamp, 1)
		s.setState(Waiting)
	}
}

// minimalTimestamp is max(utcNow(), parent.timestamp + 1).
func minimalTimestamp(parent *types.Header) *uint256.Int {
	now := uint256.NewInt(uint64(time.Now().Unix()))
	floor := new(uint256.Int).AddUint64(parent.Timestamp, 1)
	if now.Lt(floor) {
		return floor
	}
	return now
}

func (s *Sealer) waitForTimestamp(target *uint256.Int, cancel <-chan struct{}) bool {
	for {
		now := uint256.NewInt(uint64(time.Now().Unix()))
		if !now.Lt(target) {
			return true
		}
		select {
		case <-cancel:
			return false
		case <-time.After(pollInterval):
		}
	}
}

// tryKeys iterates the registered key set once, testing each against the
// boundary check. A zero-balance key is still tested: the boundary is zero
// for it, so it can never win, but testing is cheap and uniform.
func (s *Sealer) tryKeys(candidate, parent *types.Header, cancel <-chan struct{}) (*types.Header, bool) {
	dst := []byte(s.engine.Params.BLSDomain)
	stakeMsg := stakeseal.StakeMessage(parent.StakeModifier, candidate.Timestamp)

	for _, kp := range s.keys {
		select {
		case <-cancel:
			return nil, false
		default:
		}

		balance := s.engine.Balance.Balance(stakeseal.ToAddress(kp.Public), candidate.Number-1)
		stakeSig, err := bls.Sign(dst, kp.Secret, stakeMsg)
		if err != nil {
			s.logger.Error("generateSeal: sign stake message", zap.Error(err))
			continue
		}
		boundary := stakeseal.Boundary(candidate.Difficulty, balance)
		sigHash := common.BytesToHash(crypto.Keccak256(stakeSig[:]))
		if !sigHash.LessOrEqual(boundary) {
			continue
		}

		sealed := candidate.Copy()
		modifier := stakeseal.ChildStakeModifier(parent.StakeModifier, kp.Public, stakeSig)
		sealed.SetSeal(modifier, kp.Public, stakeSig, bls.Signature{})
		blockSig, err := bls.Sign(dst, kp.Secret, sealed.HashWithoutSeal())
		if err != nil {
			s.logger.Error("generateSeal: sign block hash", zap.Error(err))
			continue
		}
		sealed.SetSeal(modifier, kp.Public, stakeSig, blockSig)
		return sealed, true
	}
	return nil, false
}

// emit verifies sealed once more, then clears the in-flight state under
// submitLock and unlocks before invoking cb, so a GenerateSeal call made
// from inside cb is accepted rather than dropped. It reports whether it
// reached that point; when the self-check fails, the in-flight state is
// left for run's own cleanup to clear.
func (s *Sealer) emit(sealed, parent *types.Header, cb Callback) bool {
	s.submitLock.Lock()
	if err := s.engine.VerifySeal(sealed, parent); err != nil {
		s.submitLock.Unlock()
		s.logger.Error("generateSeal: self-check failed", zap.Error(err))
		return false
	}
	s.setState(Emitted)
	s.generating = false
	s.submitLock.Unlock()
	s.setState(Idle)

	if cb != nil {
		cb(sealed)
	}
	s.logger.Info("seal generated", zap.Uint64("number", sealed.Number))
	return true
}
