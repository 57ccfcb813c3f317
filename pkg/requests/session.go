package requests

import (
	"github.com/google/go-dap"

	"dapwire/pkg/decode"
)

// Session lifecycle commands.
const (
	CommandInitialize        = "initialize"
	CommandLaunch            = "launch"
	CommandAttach            = "attach"
	CommandConfigurationDone = "configurationDone"
)

// DecodeInitialize decodes an initialize request. Only adapterID is required.
// Absent linesStartAt1 and columnsStartAt1 are true and an absent pathFormat is
// "path", the protocol defaults go-dap applies too.
func DecodeInitialize(obj decode.Object) (*dap.InitializeRequest, error) {
	env, args, err := requestWithArguments(obj, CommandInitialize)
	if err != nil {
		return nil, err
	}
	f := newFields(args)
	arguments := dap.InitializeRequestArguments{
		AdapterID:                           f.str("adapterID"),
		ClientID:                            f.optStr("clientID"),
		ClientName:                          f.optStr("clientName"),
		Locale:                              f.optStr("locale"),
		PathFormat:                          f.strOr("pathFormat", "path"),
		LinesStartAt1:                       f.boolOr("linesStartAt1", true),
		ColumnsStartAt1:                     f.boolOr("columnsStartAt1", true),
		SupportsVariableType:                f.optBool("supportsVariableType"),
		SupportsVariablePaging:              f.optBool("supportsVariablePaging"),
		SupportsRunInTerminalRequest:        f.optBool("supportsRunInTerminalRequest"),
		SupportsMemoryReferences:            f.optBool("supportsMemoryReferences"),
		SupportsProgressReporting:           f.optBool("supportsProgressReporting"),
		SupportsInvalidatedEvent:            f.optBool("supportsInvalidatedEvent"),
		SupportsMemoryEvent:                 f.optBool("supportsMemoryEvent"),
		SupportsArgsCanBeInterpretedByShell: f.optBool("supportsArgsCanBeInterpretedByShell"),
		SupportsStartDebuggingRequest:       f.optBool("supportsStartDebuggingRequest"),
	}
	if f.err != nil {
		return nil, f.err
	}
	return &dap.InitializeRequest{Request: env.Request(), Arguments: arguments}, nil
}

// DecodeLaunch decodes a launch request. The arguments are adapter specific and
// kept opaque, but must be an object.
func DecodeLaunch(obj decode.Object) (*dap.LaunchRequest, error) {
	env, _, err := requestWithArguments(obj, CommandLaunch)
	if err != nil {
		return nil, err
	}
	req := &dap.LaunchRequest{Request: env.Request()}
	if err := rawInto(obj, "arguments", &req.Arguments); err != nil {
		return nil, err
	}
	return req, nil
}

// DecodeAttach decodes an attach request; see DecodeLaunch.
func DecodeAttach(obj decode.Object) (*dap.AttachRequest, error) {
	env, _, err := requestWithArguments(obj, CommandAttach)
	if err != nil {
		return nil, err
	}
	req := &dap.AttachRequest{Request: env.Request()}
	if err := rawInto(obj, "arguments", &req.Arguments); err != nil {
		return nil, err
	}
	return req, nil
}

// DecodeConfigurationDone decodes a configurationDone request. Its arguments
// carry no fields; when present they must still be an object.
func DecodeConfigurationDone(obj decode.Object) (*dap.ConfigurationDoneRequest, error) {
	env, err := decodeEnvelopeFor(obj, CommandConfigurationDone)
	if err != nil {
		return nil, err
	}
	if _, err := optionalArguments(obj); err != nil {
		return nil, err
	}
	return &dap.ConfigurationDoneRequest{Request: env.Request()}, nil
}
