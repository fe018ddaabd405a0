package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ユニーク制約違反など
	ErrConflict = errors.New("conflict")
)
