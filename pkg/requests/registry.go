package requests

import (
	"encoding/json"
	"sort"

	"github.com/google/go-dap"

	"dapwire/pkg/decode"
)

// Decoder turns a raw request object into a typed go-dap message.
type Decoder func(obj decode.Object) (dap.Message, error)

// typed adapts a decoder returning a concrete request pointer. Going through
// this keeps a nil *T from turning into a non-nil dap.Message.
func typed[T dap.Message](fn func(decode.Object) (T, error)) Decoder {
	return func(obj decode.Object) (dap.Message, error) {
		msg, err := fn(obj)
		if err != nil {
			return nil, err
		}
		return msg, nil
	}
}

// fallbackCommands are decoded by go-dap itself after the envelope check.
var fallbackCommands = []string{
	"disconnect",
	"terminate",
	"restart",
	"reverseContinue",
	"stepBack",
	"restartFrame",
	"goto",
	"terminateThreads",
	"setVariable",
	"setExpression",
	"stepInTargets",
	"gotoTargets",
	"completions",
	"exceptionInfo",
	"loadedSources",
	"modules",
	"dataBreakpointInfo",
	"setDataBreakpoints",
	"readMemory",
	"writeMemory",
	"disassemble",
	"setInstructionBreakpoints",
	"cancel",
	"breakpointLocations",
}

// Registry maps command names to decoders. Register everything before the
// registry is shared; lookups are safe for concurrent use afterwards.
type Registry struct {
	decoders map[string]Decoder
}

// NewRegistry returns a registry holding every decoder in this package.
func NewRegistry() *Registry {
	r := &Registry{decoders: make(map[string]Decoder)}

	r.Register(CommandSetBreakpoints, typed(DecodeSetBreakpoints))
	r.Register(CommandSetFunctionBreakpoints, typed(DecodeSetFunctionBreakpoints))
	r.Register(CommandSetExceptionBreakpoints, typed(DecodeSetExceptionBreakpoints))

	r.Register(CommandInitialize, typed(DecodeInitialize))
	r.Register(CommandLaunch, typed(DecodeLaunch))
	r.Register(CommandAttach, typed(DecodeAttach))
	r.Register(CommandConfigurationDone, typed(DecodeConfigurationDone))

	r.Register(CommandContinue, typed(DecodeContinue))
	r.Register(CommandNext, typed(DecodeNext))
	r.Register(CommandStepIn, typed(DecodeStepIn))
	r.Register(CommandStepOut, typed(DecodeStepOut))
	r.Register(CommandPause, typed(DecodePause))

	r.Register(CommandStackTrace, typed(DecodeStackTrace))
	r.Register(CommandScopes, typed(DecodeScopes))
	r.Register(CommandVariables, typed(DecodeVariables))
	r.Register(CommandThreads, typed(DecodeThreads))
	r.Register(CommandEvaluate, typed(DecodeEvaluate))
	r.Register(CommandSource, typed(DecodeSourceRequest))

	for _, command := range fallbackCommands {
		r.Register(command, fallbackDecoder(command))
	}
	return r
}

// Register adds or replaces the decoder for command.
func (r *Registry) Register(command string, d Decoder) {
	r.decoders[command] = d
}

// Lookup returns the decoder registered for command.
func (r *Registry) Lookup(command string) (Decoder, bool) {
	d, ok := r.decoders[command]
	return d, ok
}

// Commands lists the registered command names in sorted order.
func (r *Registry) Commands() []string {
	out := make([]string, 0, len(r.decoders))
	for c := range r.decoders {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Decode reads the envelope of obj and hands it to the decoder for its command.
func (r *Registry) Decode(obj decode.Object) (dap.Message, error) {
	env, err := DecodeEnvelope(obj)
	if err != nil {
		return nil, err
	}
	d, ok := r.Lookup(env.Command)
	if !ok {
		return nil, decode.Unsupported(env.Command)
	}
	return d(obj)
}

// DecodeBytes parses data as a JSON object and decodes it.
func (r *Registry) DecodeBytes(data []byte) (dap.Message, error) {
	obj, err := decode.ParseObject(data)
	if err != nil {
		return nil, err
	}
	return r.Decode(obj)
}

// fallbackDecoder validates the envelope and lets go-dap decode the arguments.
func fallbackDecoder(command string) Decoder {
	return func(obj decode.Object) (dap.Message, error) {
		if _, err := decodeEnvelopeFor(obj, command); err != nil {
			return nil, err
		}
		if _, ok := obj["arguments"]; ok {
			if _, err := decode.AsObject(obj["arguments"], "arguments"); err != nil {
				return nil, err
			}
		}
		data, err := json.Marshal(obj)
		if err != nil {
			return nil, decode.NestedDecodeFailure("arguments", err)
		}
		msg, err := dap.DecodeProtocolMessage(data)
		if err != nil {
			return nil, decode.NestedDecodeFailure("arguments", err)
		}
		return msg, nil
	}
}
