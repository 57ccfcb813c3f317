package requests

import (
	"github.com/google/go-dap"

	"dapwire/pkg/decode"
)

// CommandSetBreakpoints is the command name of the setBreakpoints request.
const CommandSetBreakpoints = "setBreakpoints"

// DecodeSetBreakpoints decodes a setBreakpoints request.
//
// The envelope is decoded first; "arguments" must then be present and an object.
// Failures from DecodeSetBreakpointsArguments are returned as is, so callers see
// the same error they would get decoding the arguments on their own.
func DecodeSetBreakpoints(obj decode.Object) (*dap.SetBreakpointsRequest, error) {
	env, args, err := requestWithArguments(obj, CommandSetBreakpoints)
	if err != nil {
		return nil, err
	}
	arguments, err := DecodeSetBreakpointsArguments(args)
	if err != nil {
		return nil, err
	}
	return &dap.SetBreakpointsRequest{
		Request:   env.Request(),
		Arguments: arguments,
	}, nil
}

// DecodeSetBreakpointsArguments decodes the arguments of a setBreakpoints request.
// "source" and "breakpoints" are required; "lines" and "sourceModified" are optional.
func DecodeSetBreakpointsArguments(args decode.Object) (dap.SetBreakpointsArguments, error) {
	srcObj, err := args.Object("source")
	if err != nil {
		return dap.SetBreakpointsArguments{}, err
	}
	source, err := DecodeSource(srcObj)
	if err != nil {
		return dap.SetBreakpointsArguments{}, decode.NestedDecodeFailure("source", err)
	}

	breakpoints, err := objects(args, "breakpoints", true, DecodeSourceBreakpoint)
	if err != nil {
		return dap.SetBreakpointsArguments{}, err
	}

	f := newFields(args)
	lines := f.optInts("lines")
	sourceModified := f.optBool("sourceModified")
	if f.err != nil {
		return dap.SetBreakpointsArguments{}, f.err
	}

	return dap.SetBreakpointsArguments{
		Source:         source,
		Breakpoints:    breakpoints,
		Lines:          lines,
		SourceModified: sourceModified,
	}, nil
}

// DecodeSourceBreakpoint decodes one element of setBreakpoints' "breakpoints".
func DecodeSourceBreakpoint(obj decode.Object) (dap.SourceBreakpoint, error) {
	f := newFields(obj)
	bp := dap.SourceBreakpoint{
		Line:         f.int("line"),
		Column:       f.optInt("column"),
		Condition:    f.optStr("condition"),
		HitCondition: f.optStr("hitCondition"),
		LogMessage:   f.optStr("logMessage"),
	}
	if f.err != nil {
		return dap.SourceBreakpoint{}, f.err
	}
	return bp, nil
}

// DecodeSource decodes a DAP Source. Every field is optional; adapterData is
// carried through untouched.
func DecodeSource(obj decode.Object) (dap.Source, error) {
	f := newFields(obj)
	src := dap.Source{
		Name:             f.optStr("name"),
		Path:             f.optStr("path"),
		SourceReference:  f.optInt("sourceReference"),
		PresentationHint: f.optStr("presentationHint"),
		Origin:           f.optStr("origin"),
	}
	f.raw("adapterData", &src.AdapterData)
	if f.err != nil {
		return dap.Source{}, f.err
	}

	sources, err := objects(obj, "sources", false, DecodeSource)
	if err != nil {
		return dap.Source{}, err
	}
	src.Sources = sources

	checksums, err := objects(obj, "checksums", false, DecodeChecksum)
	if err != nil {
		return dap.Source{}, err
	}
	src.Checksums = checksums
	return src, nil
}

// DecodeChecksum decodes a Source checksum; both fields are required.
func DecodeChecksum(obj decode.Object) (dap.Checksum, error) {
	f := newFields(obj)
	algorithm := f.str("algorithm")
	checksum := f.str("checksum")
	if f.err != nil {
		return dap.Checksum{}, f.err
	}
	return dap.Checksum{
		Algorithm: dap.ChecksumAlgorithm(algorithm),
		Checksum:  checksum,
	}, nil
}
