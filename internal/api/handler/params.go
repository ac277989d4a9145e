package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"hackr_api/internal/common"
)

func parsePositiveInt(s string, defaultVal int) int {
	if val, err := strconv.Atoi(s); err == nil && val > 0 {
		return val
	}
	return defaultVal
}

// decodeJSON reads the request body into dst and answers 400 itself when the
// body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.RespondWithError(w, r, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}
