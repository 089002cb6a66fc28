package models

import "errors"

var (
	// ErrInvalidSnapshot marks a snapshot with missing or non-finite
	// indicator fields. A cycle hitting this produces no decision.
	ErrInvalidSnapshot = errors.New("invalid indicator snapshot")

	// ErrInvalidRiskInput marks non-positive price/ATR/multiplier inputs
	// to the risk calculator.
	ErrInvalidRiskInput = errors.New("invalid risk input")

	// ErrInsufficientHistory is returned when the bar window is too short
	// for the longest configured indicator.
	ErrInsufficientHistory = errors.New("insufficient bar history")
)
