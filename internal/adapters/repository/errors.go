package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrInvalidCandidate = errors.New("invalid candidate")
	ErrInvalidGroup     = errors.New("invalid group record")
	ErrGroupExists      = errors.New("group already exists")
	ErrMemberExists     = errors.New("member already exists")
)
