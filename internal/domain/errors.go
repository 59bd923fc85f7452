package domain

import "errors"

var (
	// ErrNoTariffs means the store holds zero tariff rows; a generation run
	// fails as a whole rather than writing an empty table.
	ErrNoTariffs = errors.New("no tariff rows configured")

	// ErrZoneNotFound means the nested profile traversal yielded no entry
	// for the requested zone id. Fatal for that zone, never retried.
	ErrZoneNotFound = errors.New("zone not found in any delivery profile")

	// ErrRunInProgress guards the single-run orchestrator.
	ErrRunInProgress = errors.New("a deployment run is already in progress")
)
