package models

import "errors"

// Shared sentinel errors for the storage boundary.
var (
	ErrNotFound         = errors.New("record not found")
	ErrAlreadyPublished = errors.New("prediction already published for fixture")
	ErrAlreadyFrozen    = errors.New("prediction already frozen")
	ErrChecksumMismatch = errors.New("stored checksum does not match record")
)
