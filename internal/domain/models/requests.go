package models

// Requests for the decisions HTTP API. Defined in domain for consistency and reuse.

type DecisionRequest struct {
	Pair string `query:"pair" json:"pair" validate:"required"`
	TF   string `query:"tf" json:"tf" default:"1h" validate:"oneof=5m 15m 30m 1h 4h 1d"`
}
