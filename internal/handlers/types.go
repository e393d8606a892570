package handlers

import "strconv"

// SuccessResponse is the envelope for mutation endpoints that have no
// richer payload.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// parseUintParam reads a path or query value as an unsigned integer.
func parseUintParam(raw string) (uint, bool) {
	val, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(val), true
}
