package handlers

import (
	"github.com/google/go-dap"

	"dapwire/pkg/decode"
	"dapwire/pkg/logger"
	"dapwire/pkg/requests"
	"dapwire/pkg/schema"
)

// Handler answers decoded requests. OnRequest may be called from several
// goroutines at once and returns the responses and events to send, in order.
type Handler interface {
	OnRequest(request dap.Message) []dap.Message
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(request dap.Message) []dap.Message

func (f HandlerFunc) OnRequest(request dap.Message) []dap.Message {
	return f(request)
}

// Dispatcher runs one raw request body through parsing, optional schema
// validation and decoding, then hands the typed request to its Handler.
// It is shared by every transport.
type Dispatcher struct {
	registry  *requests.Registry
	validator *schema.Validator
	handler   Handler
	log       logger.Logger
}

// NewDispatcher builds a Dispatcher. A nil registry means requests.NewRegistry,
// a nil validator disables validation and a nil handler means EchoHandler.
func NewDispatcher(registry *requests.Registry, validator *schema.Validator, handler Handler, log logger.Logger) *Dispatcher {
	if registry == nil {
		registry = requests.NewRegistry()
	}
	if handler == nil {
		handler = NewEchoHandler()
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Dispatcher{registry: registry, validator: validator, handler: handler, log: log}
}

// Dispatch returns the messages to send in reply to body. A request that fails
// to parse, validate or decode gets a single ErrorResponse.
func (d *Dispatcher) Dispatch(body []byte) []dap.Message {
	obj, err := decode.ParseObject(body)
	if err != nil {
		d.log.Warning("Unparseable request: %v", err)
		return []dap.Message{ErrorResponse(0, "", err)}
	}
	seq, command := peekEnvelope(obj)

	// The envelope must decode before arguments are looked at.
	if _, err := requests.DecodeEnvelope(obj); err != nil {
		d.log.Warning("Request seq=%d %s failed to decode: %v", seq, command, err)
		return []dap.Message{ErrorResponse(seq, command, err)}
	}
	if d.validator != nil {
		if args, ok, _ := obj.OptionalObject("arguments"); ok {
			if err := d.validator.Validate(command, args); err != nil {
				d.log.Warning("Request seq=%d %s rejected: %v", seq, command, err)
				return []dap.Message{ErrorResponse(seq, command, err)}
			}
		}
	}

	request, err := d.registry.Decode(obj)
	if err != nil {
		d.log.Warning("Request seq=%d %s failed to decode: %v", seq, command, err)
		return []dap.Message{ErrorResponse(seq, command, err)}
	}
	d.log.Info("Request seq=%d %s", seq, command)
	return d.handler.OnRequest(request)
}

// peekEnvelope reads seq and command without failing, for use in error replies.
func peekEnvelope(obj decode.Object) (int, string) {
	seq, err := decode.AsInt(obj["seq"], "seq")
	if err != nil {
		seq = 0
	}
	command, _ := obj["command"].(string)
	return seq, command
}
