package requests

import (
	"github.com/google/go-dap"

	"dapwire/pkg/decode"
)

// Breakpoint commands other than setBreakpoints.
const (
	CommandSetFunctionBreakpoints  = "setFunctionBreakpoints"
	CommandSetExceptionBreakpoints = "setExceptionBreakpoints"
)

// DecodeSetFunctionBreakpoints decodes a setFunctionBreakpoints request.
func DecodeSetFunctionBreakpoints(obj decode.Object) (*dap.SetFunctionBreakpointsRequest, error) {
	env, args, err := requestWithArguments(obj, CommandSetFunctionBreakpoints)
	if err != nil {
		return nil, err
	}
	breakpoints, err := objects(args, "breakpoints", true, decodeFunctionBreakpoint)
	if err != nil {
		return nil, err
	}
	return &dap.SetFunctionBreakpointsRequest{
		Request:   env.Request(),
		Arguments: dap.SetFunctionBreakpointsArguments{Breakpoints: breakpoints},
	}, nil
}

func decodeFunctionBreakpoint(obj decode.Object) (dap.FunctionBreakpoint, error) {
	f := newFields(obj)
	bp := dap.FunctionBreakpoint{
		Name:         f.str("name"),
		Condition:    f.optStr("condition"),
		HitCondition: f.optStr("hitCondition"),
	}
	return bp, f.err
}

// DecodeSetExceptionBreakpoints decodes a setExceptionBreakpoints request.
// "filters" is required, possibly empty.
func DecodeSetExceptionBreakpoints(obj decode.Object) (*dap.SetExceptionBreakpointsRequest, error) {
	env, args, err := requestWithArguments(obj, CommandSetExceptionBreakpoints)
	if err != nil {
		return nil, err
	}
	f := newFields(args)
	filters := f.strs("filters")
	if f.err != nil {
		return nil, f.err
	}
	filterOptions, err := objects(args, "filterOptions", false, decodeExceptionFilterOptions)
	if err != nil {
		return nil, err
	}
	exceptionOptions, err := objects(args, "exceptionOptions", false, decodeExceptionOptions)
	if err != nil {
		return nil, err
	}
	return &dap.SetExceptionBreakpointsRequest{
		Request: env.Request(),
		Arguments: dap.SetExceptionBreakpointsArguments{
			Filters:          filters,
			FilterOptions:    filterOptions,
			ExceptionOptions: exceptionOptions,
		},
	}, nil
}

func decodeExceptionFilterOptions(obj decode.Object) (dap.ExceptionFilterOptions, error) {
	f := newFields(obj)
	opts := dap.ExceptionFilterOptions{
		FilterId:  f.str("filterId"),
		Condition: f.optStr("condition"),
	}
	return opts, f.err
}

func decodeExceptionOptions(obj decode.Object) (dap.ExceptionOptions, error) {
	f := newFields(obj)
	breakMode := f.str("breakMode")
	if f.err != nil {
		return dap.ExceptionOptions{}, f.err
	}
	path, err := objects(obj, "path", false, decodeExceptionPathSegment)
	if err != nil {
		return dap.ExceptionOptions{}, err
	}
	return dap.ExceptionOptions{
		Path:      path,
		BreakMode: dap.ExceptionBreakMode(breakMode),
	}, nil
}

func decodeExceptionPathSegment(obj decode.Object) (dap.ExceptionPathSegment, error) {
	f := newFields(obj)
	seg := dap.ExceptionPathSegment{
		Negate: f.optBool("negate"),
		Names:  f.strs("names"),
	}
	return seg, f.err
}
