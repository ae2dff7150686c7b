package model

import "errors"

// Sentinel errors for match decoding.
var (
	ErrDecodeMatch = errors.New("decode match")
	ErrEmptyInput  = errors.New("empty match payload")
)
