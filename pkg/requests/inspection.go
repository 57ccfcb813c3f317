package requests

import (
	"github.com/google/go-dap"

	"dapwire/pkg/decode"
)

// Commands that inspect a stopped program.
const (
	CommandStackTrace = "stackTrace"
	CommandScopes     = "scopes"
	CommandVariables  = "variables"
	CommandThreads    = "threads"
	CommandEvaluate   = "evaluate"
	CommandSource     = "source"
)

// DecodeStackTrace decodes a stackTrace request. "format" is copied as is.
func DecodeStackTrace(obj decode.Object) (*dap.StackTraceRequest, error) {
	env, args, err := requestWithArguments(obj, CommandStackTrace)
	if err != nil {
		return nil, err
	}
	f := newFields(args)
	arguments := dap.StackTraceArguments{
		ThreadId:   f.int("threadId"),
		StartFrame: f.optInt("startFrame"),
		Levels:     f.optInt("levels"),
	}
	f.raw("format", &arguments.Format)
	if f.err != nil {
		return nil, f.err
	}
	return &dap.StackTraceRequest{Request: env.Request(), Arguments: arguments}, nil
}

// DecodeScopes decodes a scopes request for "frameId".
func DecodeScopes(obj decode.Object) (*dap.ScopesRequest, error) {
	env, args, err := requestWithArguments(obj, CommandScopes)
	if err != nil {
		return nil, err
	}
	f := newFields(args)
	arguments := dap.ScopesArguments{FrameId: f.int("frameId")}
	if f.err != nil {
		return nil, f.err
	}
	return &dap.ScopesRequest{Request: env.Request(), Arguments: arguments}, nil
}

// DecodeVariables decodes a variables request. Only "variablesReference" is
// required; paging and "format" are optional.
func DecodeVariables(obj decode.Object) (*dap.VariablesRequest, error) {
	env, args, err := requestWithArguments(obj, CommandVariables)
	if err != nil {
		return nil, err
	}
	f := newFields(args)
	arguments := dap.VariablesArguments{
		VariablesReference: f.int("variablesReference"),
		Filter:             f.optStr("filter"),
		Start:              f.optInt("start"),
		Count:              f.optInt("count"),
	}
	f.raw("format", &arguments.Format)
	if f.err != nil {
		return nil, f.err
	}
	return &dap.VariablesRequest{Request: env.Request(), Arguments: arguments}, nil
}

// DecodeThreads decodes a threads request, which carries no arguments.
func DecodeThreads(obj decode.Object) (*dap.ThreadsRequest, error) {
	env, err := decodeEnvelopeFor(obj, CommandThreads)
	if err != nil {
		return nil, err
	}
	return &dap.ThreadsRequest{Request: env.Request()}, nil
}

// DecodeEvaluate decodes an evaluate request; "expression" is required.
func DecodeEvaluate(obj decode.Object) (*dap.EvaluateRequest, error) {
	env, args, err := requestWithArguments(obj, CommandEvaluate)
	if err != nil {
		return nil, err
	}
	f := newFields(args)
	arguments := dap.EvaluateArguments{
		Expression: f.str("expression"),
		FrameId:    f.optInt("frameId"),
		Context:    f.optStr("context"),
	}
	f.raw("format", &arguments.Format)
	if f.err != nil {
		return nil, f.err
	}
	return &dap.EvaluateRequest{Request: env.Request(), Arguments: arguments}, nil
}

// DecodeSourceRequest decodes a source request. "sourceReference" is required;
// "source" is optional and decoded with DecodeSource.
func DecodeSourceRequest(obj decode.Object) (*dap.SourceRequest, error) {
	env, args, err := requestWithArguments(obj, CommandSource)
	if err != nil {
		return nil, err
	}
	f := newFields(args)
	arguments := dap.SourceArguments{SourceReference: f.int("sourceReference")}
	if f.err != nil {
		return nil, f.err
	}
	srcObj, ok, err := args.OptionalObject("source")
	if err != nil {
		return nil, err
	}
	if ok {
		src, err := DecodeSource(srcObj)
		if err != nil {
			return nil, decode.NestedDecodeFailure("source", err)
		}
		arguments.Source = &src
	}
	return &dap.SourceRequest{Request: env.Request(), Arguments: arguments}, nil
}
