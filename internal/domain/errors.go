package domain

import "errors"

var (
	// ErrInvalidInput marks a malformed alert. Dropped and logged, never retried.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoSolution marks a devig that cannot converge; treated as a missing price.
	ErrNoSolution = errors.New("no devig solution")
	// ErrMarketUnresolved marks a correlator or locator miss. The candidate is skipped.
	ErrMarketUnresolved = errors.New("market unresolved")
	// ErrDataStale marks reference quotes that could not be refreshed at
	// evaluation time. The candidate is rejected, never priced from cache.
	ErrDataStale = errors.New("reference quotes stale")
	// ErrCapacityExceeded marks a dispatch attempt with no eligible account.
	ErrCapacityExceeded = errors.New("no account capacity")
	// ErrDuplicateBet marks a wager whose signature is already in the ledger.
	ErrDuplicateBet = errors.New("duplicate bet")
)
