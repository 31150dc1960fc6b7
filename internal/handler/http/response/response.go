package response

import (
	"encoding/json"
	"net/http"
)

// Response is the envelope every JSON endpoint answers with.
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

const (
	codeBadRequest  = "BAD_REQUEST"
	codeValidation  = "VALIDATION_ERROR"
	codeUnprocessed = "UNPROCESSABLE_ENTITY"
	codeNotFound    = "NOT_FOUND"
	codeInternal    = "INTERNAL_SERVER_ERROR"
	codeEncoding    = "ENCODING_ERROR"
)

// encodingFailure is sent when a payload cannot be marshalled. It is
// built once so that writing it cannot fail the same way.
var encodingFailure = []byte(`{"success":false,"error":{"code":"` + codeEncoding + `","message":"Failed to encode response"}}` + "\n")

// write marshals body before touching the header, so an unencodable
// payload turns into a 500 rather than a half-written 200.
func write(w http.ResponseWriter, status int, body Response) {
	buf, err := json.Marshal(body)
	if err != nil {
		status, buf = http.StatusInternalServerError, encodingFailure
	} else {
		buf = append(buf, '\n')
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

func fail(w http.ResponseWriter, status int, code, message string, details map[string]string) {
	write(w, status, Response{Error: &ErrorDetail{Code: code, Message: message, Details: details}})
}

func Success(w http.ResponseWriter, data any) {
	write(w, http.StatusOK, Response{Success: true, Data: data})
}

func SuccessWithMessage(w http.ResponseWriter, message string, data any) {
	write(w, http.StatusOK, Response{Success: true, Message: message, Data: data})
}

func BadRequest(w http.ResponseWriter, message string, details map[string]string) {
	fail(w, http.StatusBadRequest, codeBadRequest, message, details)
}

func ValidationError(w http.ResponseWriter, details map[string]string) {
	fail(w, http.StatusUnprocessableEntity, codeValidation, "Validation failed", details)
}

func UnprocessableEntity(w http.ResponseWriter, message string) {
	fail(w, http.StatusUnprocessableEntity, codeUnprocessed, message, nil)
}

func NotFound(w http.ResponseWriter, message string) {
	fail(w, http.StatusNotFound, codeNotFound, message, nil)
}

func InternalServerError(w http.ResponseWriter, message string) {
	fail(w, http.StatusInternalServerError, codeInternal, message, nil)
}
