package handlers

import (
	"errors"

	"github.com/google/go-dap"

	"dapwire/pkg/decode"
	"dapwire/pkg/schema"
)

// Error ids carried in ErrorResponse bodies. Decode failures use
// ErrIDDecodeBase plus the decode.Kind.
const (
	ErrIDDecodeBase  = 1000
	ErrIDValidation  = 1100
	ErrIDUnsupported = 1200
)

func newEvent(event string) *dap.Event {
	return &dap.Event{
		ProtocolMessage: dap.ProtocolMessage{
			Seq:  0,
			Type: "event",
		},
		Event: event,
	}
}

func newResponse(requestSeq int, command string) *dap.Response {
	return &dap.Response{
		ProtocolMessage: dap.ProtocolMessage{
			Seq:  0,
			Type: "response",
		},
		Command:    command,
		RequestSeq: requestSeq,
		Success:    true,
	}
}

func newErrorResponse(requestSeq int, command string, id int, message, format string) *dap.ErrorResponse {
	er := &dap.ErrorResponse{}
	er.Response = *newResponse(requestSeq, command)
	er.Success = false
	er.Message = message
	er.Body.Error = &dap.ErrorMessage{
		Id:       id,
		Format:   format,
		ShowUser: true,
	}
	return er
}

// unsupportedResponse answers a request this adapter decodes but does not act on.
func unsupportedResponse(request *dap.Request) *dap.ErrorResponse {
	return newErrorResponse(request.Seq, request.Command, ErrIDUnsupported, "unsupported",
		request.Command+" is not supported by this adapter")
}

// ErrorResponse turns a request that failed to decode or validate into the
// response sent back to the client. requestSeq and command are whatever could
// be read from the raw request; zero values are fine.
func ErrorResponse(requestSeq int, command string, err error) *dap.ErrorResponse {
	var ve *schema.ValidationError
	if errors.As(err, &ve) {
		return newErrorResponse(requestSeq, command, ErrIDValidation, "invalid arguments", err.Error())
	}
	if de, ok := decode.AsDecodeError(err); ok {
		if de.Kind == decode.KindUnsupported {
			return newErrorResponse(requestSeq, command, ErrIDUnsupported, "unsupported", err.Error())
		}
		return newErrorResponse(requestSeq, command, ErrIDDecodeBase+int(de.Kind), "malformed request", err.Error())
	}
	return newErrorResponse(requestSeq, command, ErrIDDecodeBase, "malformed request", err.Error())
}
