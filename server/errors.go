package server

import (
	"github.com/pkg/errors"
)

//Errors returned by game controllers. Callers should compare them with errors.Cause
var (
	ErrMatchNotFound = errors.New("match not found")
	ErrAlreadyExists = errors.New("match already exists")
	ErrAlreadyStarted = errors.New("match already started")
	ErrAlreadyInMatch = errors.New("identity already belongs to a match")
	ErrNotMember = errors.New("identity is not a member of this match")
	ErrNotAdmin = errors.New("only admin can do this")
	ErrMatchFull = errors.New("match is full")
	ErrInvalidMode = errors.New("invalid match mode")
	ErrContextAllocation = errors.New("execution context could not be allocated")
	ErrGameNotFound = errors.New("game not found")
	ErrNotAllowedSelf = errors.New("operation is not allowed on self")

	ErrStaleRound = errors.New("submission belongs to a finished round")
	ErrCollectionClosed = errors.New("round is not collecting actions")
	ErrDuplicateAction = errors.New("action already submitted for this round")
	ErrInvalidAction = errors.New("unknown action kind")
	ErrInvalidTarget = errors.New("invalid target")
	ErrInsufficientAmmo = errors.New("not enough ammunition")
	ErrAmmoFull = errors.New("ammunition is already full")
	ErrNotAlive = errors.New("participant is not alive")
)

const (
	ERROR_RUNTIME_EXCEPTION int32 = iota
	ERROR_UNRECOGNIZED_PAYLOAD
	ERROR_MISSING_PAYLOAD
	ERROR_BAD_INPUT
	ERROR_MATCH_NOT_FOUND
	ERROR_MATCH_JOIN_REJECTED
	ERROR_MATCH_NOT_ALLOWED
	ERROR_ACTION_REJECTED
	ERROR_UNAVAILABLE
)

//ErrorCode maps an error into the code written to the socket
func ErrorCode(err error) int32 {
	switch errors.Cause(err) {
	case ErrMatchNotFound, ErrGameNotFound:
		return ERROR_MATCH_NOT_FOUND
	case ErrAlreadyExists, ErrAlreadyStarted, ErrAlreadyInMatch, ErrMatchFull:
		return ERROR_MATCH_JOIN_REJECTED
	case ErrNotMember, ErrNotAdmin:
		return ERROR_MATCH_NOT_ALLOWED
	case ErrInvalidMode, ErrNotAllowedSelf:
		return ERROR_BAD_INPUT
	case ErrContextAllocation:
		return ERROR_UNAVAILABLE
	}
	if IsActionRejection(err) {
		return ERROR_ACTION_REJECTED
	}
	return ERROR_RUNTIME_EXCEPTION
}

//IsActionRejection reports whether err is a validation failure of a submitted action
func IsActionRejection(err error) bool {
	switch errors.Cause(err) {
	case ErrCollectionClosed, ErrDuplicateAction, ErrInvalidAction, ErrInvalidTarget, ErrInsufficientAmmo, ErrAmmoFull, ErrNotAlive:
		return true
	}
	return false
}

//RejectionReason is the short reason put into ActionRejected notifications
func RejectionReason(err error) string {
	switch errors.Cause(err) {
	case ErrCollectionClosed:
		return "late"
	case ErrDuplicateAction:
		return "duplicate"
	case ErrInvalidAction:
		return "invalid_action"
	case ErrInvalidTarget:
		return "invalid_target"
	case ErrInsufficientAmmo:
		return "insufficient_ammo"
	case ErrAmmoFull:
		return "ammo_full"
	case ErrNotAlive:
		return "not_alive"
	case ErrStaleRound:
		return "stale_round"
	}
	return "rejected"
}
