// Package requests decodes raw DAP request objects into typed go-dap requests.
//
// Every decoder first reads the envelope shared by all requests (seq, type,
// command) with DecodeEnvelope, then the command-specific "arguments" object.
// Decoders never fill in defaults for absent required fields and never return a
// partially built request: the result is either fully valid or nil with a
// *decode.DecodeError describing the first problem found.
package requests

import (
	"encoding/json"

	"github.com/google/go-dap"

	"dapwire/pkg/decode"
)

// MessageTypeRequest is the only "type" value a request envelope may carry.
const MessageTypeRequest = "request"

// Envelope holds the fields common to every DAP request.
type Envelope struct {
	Seq     int
	Type    string
	Command string
}

// DecodeEnvelope reads seq, type and command from obj.
func DecodeEnvelope(obj decode.Object) (Envelope, error) {
	seq, err := obj.Int("seq")
	if err != nil {
		return Envelope{}, err
	}
	typ, err := obj.String("type")
	if err != nil {
		return Envelope{}, err
	}
	if typ != MessageTypeRequest {
		return Envelope{}, decode.InvalidValue("type", MessageTypeRequest)
	}
	command, err := obj.String("command")
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Seq: seq, Type: typ, Command: command}, nil
}

// Request converts the envelope into the go-dap base request that every typed
// request embeds.
func (e Envelope) Request() dap.Request {
	return dap.Request{
		ProtocolMessage: dap.ProtocolMessage{Seq: e.Seq, Type: e.Type},
		Command:         e.Command,
	}
}

// decodeEnvelopeFor decodes the envelope and checks that it names command.
func decodeEnvelopeFor(obj decode.Object, command string) (Envelope, error) {
	env, err := DecodeEnvelope(obj)
	if err != nil {
		return Envelope{}, err
	}
	if env.Command != command {
		return Envelope{}, decode.InvalidValue("command", command)
	}
	return env, nil
}

// requireArguments returns the "arguments" object, which must be present.
func requireArguments(obj decode.Object) (decode.Object, error) {
	v, ok := obj["arguments"]
	if !ok {
		return nil, decode.MissingField("arguments")
	}
	return decode.AsObject(v, "arguments")
}

// optionalArguments returns the "arguments" object or an empty one when absent.
func optionalArguments(obj decode.Object) (decode.Object, error) {
	args, ok, err := obj.OptionalObject("arguments")
	if err != nil {
		return nil, err
	}
	if !ok {
		return decode.Object{}, nil
	}
	return args, nil
}

// requestWithArguments is the common prefix of decoders whose arguments are required.
func requestWithArguments(obj decode.Object, command string) (Envelope, decode.Object, error) {
	env, err := decodeEnvelopeFor(obj, command)
	if err != nil {
		return Envelope{}, nil, err
	}
	args, err := requireArguments(obj)
	if err != nil {
		return Envelope{}, nil, err
	}
	return env, args, nil
}

// rawInto copies the opaque value at key into dst through a JSON round trip.
// dst is left untouched when key is absent.
func rawInto(obj decode.Object, key string, dst any) error {
	raw, ok, err := obj.Raw(key)
	if err != nil || !ok {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return decode.NestedDecodeFailure(key, err)
	}
	return nil
}
