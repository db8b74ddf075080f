package utils

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/itchan-dev/threads/shared/errors"
	"github.com/itchan-dev/threads/shared/logger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	status := errors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.Log.Error("request failed", "status", status, "error", err)
		if status == http.StatusServiceUnavailable {
			http.Error(w, "Service unavailable", status)
			return
		}
		http.Error(w, "Internal server error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

func DecodeValidate(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Debug("invalid json body", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: 400, Err: errors.ErrValidation}
	}
	if err := validate.Struct(body); err != nil {
		logger.Log.Debug("body failed validation", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Required fields missing", StatusCode: 400, Err: errors.ErrValidation}
	}
	return nil
}
