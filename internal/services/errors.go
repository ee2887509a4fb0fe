package services

import "errors"

var (
	// ErrNoInputs is returned by a batch run over a directory without order files
	ErrNoInputs = errors.New("no order files found")
	// ErrRunNotFound is returned for an unknown run id
	ErrRunNotFound = errors.New("run not found")
)
