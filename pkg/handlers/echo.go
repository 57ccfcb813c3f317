package handlers

import (
	"github.com/google/go-dap"

	"dapwire/pkg/locators"
)

// EchoHandler answers session setup and breakpoint requests without a debuggee.
// Breakpoints are reported verified exactly as requested and are not stored.
// Every other request gets an "unsupported" error response.
type EchoHandler struct {
	// Locator, when set, leaves breakpoints outside user code unverified.
	Locator *locators.Locator
}

// NewEchoHandler returns an EchoHandler that verifies every breakpoint.
func NewEchoHandler() *EchoHandler {
	return &EchoHandler{}
}

func (h *EchoHandler) OnRequest(request dap.Message) []dap.Message {
	switch request := request.(type) {
	case *dap.InitializeRequest:
		return h.onInitialize(request)
	case *dap.LaunchRequest:
		response := &dap.LaunchResponse{}
		response.Response = *newResponse(request.Seq, request.Command)
		return []dap.Message{response}
	case *dap.AttachRequest:
		response := &dap.AttachResponse{}
		response.Response = *newResponse(request.Seq, request.Command)
		return []dap.Message{response}
	case *dap.ConfigurationDoneRequest:
		response := &dap.ConfigurationDoneResponse{}
		response.Response = *newResponse(request.Seq, request.Command)
		return []dap.Message{response}
	case *dap.SetBreakpointsRequest:
		return h.onSetBreakpoints(request)
	case *dap.SetFunctionBreakpointsRequest:
		response := &dap.SetFunctionBreakpointsResponse{}
		response.Response = *newResponse(request.Seq, request.Command)
		response.Body.Breakpoints = make([]dap.Breakpoint, len(request.Arguments.Breakpoints))
		for i := range request.Arguments.Breakpoints {
			response.Body.Breakpoints[i] = dap.Breakpoint{Id: i + 1, Verified: true}
		}
		return []dap.Message{response}
	case *dap.SetExceptionBreakpointsRequest:
		response := &dap.SetExceptionBreakpointsResponse{}
		response.Response = *newResponse(request.Seq, request.Command)
		return []dap.Message{response}
	case *dap.ThreadsRequest:
		response := &dap.ThreadsResponse{}
		response.Response = *newResponse(request.Seq, request.Command)
		response.Body.Threads = []dap.Thread{{Id: 1, Name: "main"}}
		return []dap.Message{response}
	case *dap.DisconnectRequest:
		response := &dap.DisconnectResponse{}
		response.Response = *newResponse(request.Seq, request.Command)
		return []dap.Message{response}
	case *dap.TerminateRequest:
		response := &dap.TerminateResponse{}
		response.Response = *newResponse(request.Seq, request.Command)
		return []dap.Message{response, &dap.TerminatedEvent{Event: *newEvent("terminated")}}
	case dap.RequestMessage:
		return []dap.Message{unsupportedResponse(request.GetRequest())}
	default:
		return nil
	}
}

func (h *EchoHandler) onInitialize(request *dap.InitializeRequest) []dap.Message {
	response := &dap.InitializeResponse{}
	response.Response = *newResponse(request.Seq, request.Command)
	response.Body.SupportsConfigurationDoneRequest = true
	response.Body.SupportsFunctionBreakpoints = true
	response.Body.SupportsConditionalBreakpoints = true
	response.Body.SupportsHitConditionalBreakpoints = true
	response.Body.SupportsLogPoints = true
	response.Body.SupportTerminateDebuggee = true
	response.Body.SupportsTerminateRequest = true
	response.Body.ExceptionBreakpointFilters = []dap.ExceptionBreakpointsFilter{}
	return []dap.Message{response, &dap.InitializedEvent{Event: *newEvent("initialized")}}
}

func (h *EchoHandler) onSetBreakpoints(request *dap.SetBreakpointsRequest) []dap.Message {
	response := &dap.SetBreakpointsResponse{}
	response.Response = *newResponse(request.Seq, request.Command)
	response.Body.Breakpoints = make([]dap.Breakpoint, len(request.Arguments.Breakpoints))
	userCode := h.Locator.IsUserCodeFile(request.Arguments.Source.Path)
	for i, b := range request.Arguments.Breakpoints {
		source := request.Arguments.Source
		bp := dap.Breakpoint{
			Id:       i + 1,
			Verified: userCode,
			Source:   &source,
			Line:     b.Line,
			Column:   b.Column,
		}
		if !userCode {
			bp.Message = "source is outside the debugged code"
		}
		response.Body.Breakpoints[i] = bp
	}
	return []dap.Message{response}
}
