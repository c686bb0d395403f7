package utils

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ptchurch/site/shared/errors"
	"github.com/ptchurch/site/shared/logger"
)

// maxBodyBytes caps JSON form bodies; every form on the site is small.
const maxBodyBytes = 64 << 10

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json field names so clients can map errors back to inputs.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type errorResponse struct {
	Ok      bool     `json:"ok"`
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

// WriteErrorAndStatusCode renders err as the JSON error envelope. Errors
// without a status code are logged and reported as an opaque 500.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	var e *errors.ErrorWithStatusCode
	if stderrors.As(err, &e) {
		code := e.Code
		if code == "" {
			code = codeForStatus(e.StatusCode)
		}
		WriteJSONStatus(w, e.StatusCode, errorResponse{Error: code, Message: e.Message, Fields: e.Fields})
		return
	}
	logger.Log.Error("unhandled error", "error", err)
	WriteJSONStatus(w, http.StatusInternalServerError, errorResponse{Error: errors.CodeInternal, Message: "Internal server error"})
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return errors.CodeValidationFailed
	case http.StatusUnauthorized:
		return errors.CodeUnauthorized
	case http.StatusForbidden:
		return errors.CodeForbiddenOrigin
	case http.StatusNotFound:
		return errors.CodeNotFound
	case http.StatusTooManyRequests:
		return errors.CodeRateLimited
	case http.StatusBadGateway:
		return errors.CodeUpstreamFailed
	default:
		return errors.CodeInternal
	}
}

// WriteJSON writes v with status 200.
func WriteJSON(w http.ResponseWriter, v any) {
	WriteJSONStatus(w, http.StatusOK, v)
}

func WriteJSONStatus(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Log.Error("failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"ok":false,"error":"internal_error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// ClientIP returns the first X-Forwarded-For entry, then X-Real-IP, else "".
// An empty result shares one rate-limit bucket across all unknown clients.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return strings.TrimSpace(r.Header.Get("X-Real-IP"))
}

// DecodeValidate decodes a JSON body into body and runs struct validation.
func DecodeValidate(r io.ReadCloser, body any) error {
	if err := Decode(r, body); err != nil {
		return err
	}
	if err := validate.Struct(body); err != nil {
		logger.Log.Debug("request validation failed", "error", err)
		e := errors.BadRequest(errors.CodeValidationFailed, "Invalid or missing fields")
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) {
			for _, fe := range verrs {
				e.Fields = append(e.Fields, fe.Field())
			}
		}
		return e
	}
	return nil
}

func Decode(r io.ReadCloser, body any) error {
	dec := json.NewDecoder(io.LimitReader(r, maxBodyBytes))
	if err := dec.Decode(body); err != nil {
		logger.Log.Debug("request body decode failed", "error", err)
		return errors.BadRequest(errors.CodeInvalidBody, "Body is invalid json")
	}
	return nil
}
