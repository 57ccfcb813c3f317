package requests

import (
	"github.com/google/go-dap"

	"dapwire/pkg/decode"
)

// Execution control commands.
const (
	CommandContinue = "continue"
	CommandNext     = "next"
	CommandStepIn   = "stepIn"
	CommandStepOut  = "stepOut"
	CommandPause    = "pause"
)

// DecodeContinue decodes a continue request; "threadId" is required.
func DecodeContinue(obj decode.Object) (*dap.ContinueRequest, error) {
	env, args, err := requestWithArguments(obj, CommandContinue)
	if err != nil {
		return nil, err
	}
	f := newFields(args)
	arguments := dap.ContinueArguments{
		ThreadId:     f.int("threadId"),
		SingleThread: f.optBool("singleThread"),
	}
	if f.err != nil {
		return nil, f.err
	}
	return &dap.ContinueRequest{Request: env.Request(), Arguments: arguments}, nil
}

// DecodeNext decodes a next request. An unknown granularity is kept as given.
func DecodeNext(obj decode.Object) (*dap.NextRequest, error) {
	env, args, err := requestWithArguments(obj, CommandNext)
	if err != nil {
		return nil, err
	}
	f := newFields(args)
	arguments := dap.NextArguments{
		ThreadId:     f.int("threadId"),
		SingleThread: f.optBool("singleThread"),
		Granularity:  dap.SteppingGranularity(f.optStr("granularity")),
	}
	if f.err != nil {
		return nil, f.err
	}
	return &dap.NextRequest{Request: env.Request(), Arguments: arguments}, nil
}

// DecodeStepIn is DecodeNext for stepIn, plus the optional "targetId".
func DecodeStepIn(obj decode.Object) (*dap.StepInRequest, error) {
	env, args, err := requestWithArguments(obj, CommandStepIn)
	if err != nil {
		return nil, err
	}
	f := newFields(args)
	arguments := dap.StepInArguments{
		ThreadId:     f.int("threadId"),
		SingleThread: f.optBool("singleThread"),
		TargetId:     f.optInt("targetId"),
		Granularity:  dap.SteppingGranularity(f.optStr("granularity")),
	}
	if f.err != nil {
		return nil, f.err
	}
	return &dap.StepInRequest{Request: env.Request(), Arguments: arguments}, nil
}

// DecodeStepOut decodes a stepOut request.
func DecodeStepOut(obj decode.Object) (*dap.StepOutRequest, error) {
	env, args, err := requestWithArguments(obj, CommandStepOut)
	if err != nil {
		return nil, err
	}
	f := newFields(args)
	arguments := dap.StepOutArguments{
		ThreadId:     f.int("threadId"),
		SingleThread: f.optBool("singleThread"),
		Granularity:  dap.SteppingGranularity(f.optStr("granularity")),
	}
	if f.err != nil {
		return nil, f.err
	}
	return &dap.StepOutRequest{Request: env.Request(), Arguments: arguments}, nil
}

// DecodePause decodes a pause request for one thread.
func DecodePause(obj decode.Object) (*dap.PauseRequest, error) {
	env, args, err := requestWithArguments(obj, CommandPause)
	if err != nil {
		return nil, err
	}
	f := newFields(args)
	arguments := dap.PauseArguments{ThreadId: f.int("threadId")}
	if f.err != nil {
		return nil, f.err
	}
	return &dap.PauseRequest{Request: env.Request(), Arguments: arguments}, nil
}
