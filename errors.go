package microrpc

import "errors"

var (
	// ErrNoMemory reports that the token arena ran out of slots before the input
	// was fully scanned.
	ErrNoMemory = errors.New("token arena full")
	// ErrInvalidChar reports a byte the strict JSON grammar rejects.
	ErrInvalidChar = errors.New("invalid character in json")
	// ErrIncomplete reports input that ended in the middle of a value; the caller
	// may retry the same Parser with more bytes.
	ErrIncomplete = errors.New("incomplete json")
	// ErrRegistryFull reports that the engine's handler table reached its
	// configured capacity.
	ErrRegistryFull = errors.New("handler registry full")
)

// ErrorCode is a JSON-RPC error code. The five standard codes carry fixed
// messages from the protocol's error catalog; any other value is passed through
// as an application-defined code with the caller's message.
type ErrorCode int

// Standard JSON-RPC 2.0 error codes.
const (
	CodeParseError     ErrorCode = -32700
	CodeInvalidRequest ErrorCode = -32600
	CodeMethodNotFound ErrorCode = -32601
	CodeInvalidParams  ErrorCode = -32602
	CodeInternalError  ErrorCode = -32603
)

// catalogMessage returns the fixed message for a standard code. Codes outside
// the catalog report ok == false and use whatever message the caller supplied.
func catalogMessage(code ErrorCode) (string, bool) {
	switch code {
	case CodeParseError:
		return "Parse error", true
	case CodeInvalidRequest:
		return "Invalid Request", true
	case CodeMethodNotFound:
		return "Method not found", true
	case CodeInvalidParams:
		return "Invalid params", true
	case CodeInternalError:
		return "Internal error", true
	}
	return "", false
}
