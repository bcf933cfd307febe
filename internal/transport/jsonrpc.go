package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// JSON-RPC 2.0 error codes.
const (
	ErrParseCode      = -32700
	ErrInvalidReq     = -32600
	ErrMethodNotFound = -32601
	ErrInvalidParams  = -32602
	ErrInternal       = -32603

	// Server-defined codes.
	ErrApplication      = -32000
	ErrUnauthorizedCode = -32001
)

var (
	errParse   = errors.New("parse error")
	errInvalid = errors.New("invalid request")
)

// Request represents a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id,omitempty"`
}

// Response represents a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
	ID      any    `json:"id,omitempty"`
}

// Error represents a JSON-RPC 2.0 error object.
type Error struct {
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Data    *ErrorData `json:"data,omitempty"`
}

// ErrorData carries the API error code and the request id so an operator
// can match a failed call to the server log.
type ErrorData struct {
	Code         string `json:"code,omitempty"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
	RequestID    string `json:"request_id,omitempty"`
}

type rpcMapping struct {
	code   int
	status int
}

// apiCodes maps API error codes to a JSON-RPC code and HTTP status.
// Unlisted codes are application errors.
var apiCodes = map[string]rpcMapping{
	"UNAUTHORIZED":     {code: ErrUnauthorizedCode, status: http.StatusUnauthorized},
	"METHOD_NOT_FOUND": {code: ErrMethodNotFound, status: http.StatusOK},
	"INVALID_PARAMS":   {code: ErrInvalidParams, status: http.StatusOK},
	"INVALID_SESSION":  {code: ErrInvalidParams, status: http.StatusOK},
}

func mappingFor(apiCode string) rpcMapping {
	if m, ok := apiCodes[apiCode]; ok {
		return m
	}
	return rpcMapping{code: ErrApplication, status: http.StatusOK}
}

// ParseRequest parses and validates a JSON-RPC request payload. The id must
// be a string, a number or absent.
func ParseRequest(body io.Reader) (Request, error) {
	var req Request
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		return Request{}, fmt.Errorf("%w: %v", errParse, err)
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		return Request{}, errInvalid
	}
	switch req.ID.(type) {
	case nil, string, float64:
	default:
		return Request{}, fmt.Errorf("%w: id must be a string or number", errInvalid)
	}
	return req, nil
}

// WriteResult writes a JSON-RPC success response.
func WriteResult(w http.ResponseWriter, id any, result any) {
	writeJSON(w, http.StatusOK, Response{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	})
}

// WriteError writes a JSON-RPC error response with HTTP status 200.
func WriteError(w http.ResponseWriter, id any, code int, message string, data *ErrorData) {
	writeErrorStatus(w, http.StatusOK, id, code, message, data)
}

func writeErrorStatus(w http.ResponseWriter, status int, id any, code int, message string, data *ErrorData) {
	writeJSON(w, status, Response{
		JSONRPC: "2.0",
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
		ID: id,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
