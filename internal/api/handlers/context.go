package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	typeValidationError = "https://codingevents.dev/problems/validation-error"
	typeUnauthorized    = "https://codingevents.dev/problems/unauthorized"
	typeForbidden       = "https://codingevents.dev/problems/forbidden"
	typeNotFound        = "https://codingevents.dev/problems/not-found"
	typeConflict        = "https://codingevents.dev/problems/conflict"
	typeServerError     = "https://codingevents.dev/problems/server-error"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func pathID(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(key))
	return strconv.ParseInt(raw, 10, 64)
}
