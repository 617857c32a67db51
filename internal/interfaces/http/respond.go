package http

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/messiay/protein-refinary/pkg/errors"
)

// errorBody is the uniform JSON error envelope.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code apperrors.ErrorCode, message string) {
	writeJSON(w, status, map[string]errorBody{"error": {Code: code.String(), Message: message}})
}

// writeAppError maps an application error onto an HTTP status by its code.
func writeAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		writeError(w, http.StatusInternalServerError, apperrors.ErrCodeInternal, err.Error())
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Code {
	case apperrors.ErrCodeBadRequest, apperrors.ErrCodeValidation,
		apperrors.ErrCodeLigandInvalidSMILES, apperrors.ErrCodeStructureParseFailed,
		apperrors.ErrCodeStructureEmpty:
		status = http.StatusBadRequest
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeSessionNotFound,
		apperrors.ErrCodeHistoryNotFound:
		status = http.StatusNotFound
	case apperrors.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	case apperrors.ErrCodeExternalService, apperrors.ErrCodeUnavailable,
		apperrors.ErrCodeLigandNoConformer:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]errorBody{"error": {
		Code:    appErr.Code.String(),
		Message: appErr.Message,
		Detail:  appErr.Detail,
	}})
}
