package requests

import (
	"testing"

	"github.com/google/go-dap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dapwire/pkg/decode"
)

const validSetBreakpoints = `{"seq":1,"type":"request","command":"setBreakpoints",` +
	`"arguments":{"source":{"path":"/a.ts"},"breakpoints":[{"line":10}]}}`

func mustParse(t *testing.T, s string) decode.Object {
	t.Helper()
	obj, err := decode.ParseObject([]byte(s))
	require.NoError(t, err)
	return obj
}

func requireDecodeError(t *testing.T, err error, kind decode.Kind, field string) *decode.DecodeError {
	t.Helper()
	require.Error(t, err)
	de, ok := decode.AsDecodeError(err)
	require.True(t, ok, "expected *decode.DecodeError, got %T: %v", err, err)
	assert.Equal(t, kind, de.Kind, "error: %v", err)
	assert.Equal(t, field, de.Field, "error: %v", err)
	return de
}

func TestDecodeSetBreakpoints(t *testing.T) {
	req, err := DecodeSetBreakpoints(mustParse(t, validSetBreakpoints))
	require.NoError(t, err)

	assert.Equal(t, 1, req.Seq)
	assert.Equal(t, "request", req.Type)
	assert.Equal(t, "setBreakpoints", req.Command)
	assert.Equal(t, "/a.ts", req.Arguments.Source.Path)
	require.Len(t, req.Arguments.Breakpoints, 1)
	assert.Equal(t, 10, req.Arguments.Breakpoints[0].Line)
}

func TestDecodeSetBreakpointsAllFields(t *testing.T) {
	in := `{"seq":42,"type":"request","command":"setBreakpoints","arguments":{
		"source":{"name":"main.go","path":"/src/main.go","sourceReference":7,
			"checksums":[{"algorithm":"SHA256","checksum":"abc"}]},
		"breakpoints":[
			{"line":3},
			{"line":9,"column":2,"condition":"x > 1","hitCondition":"3","logMessage":"x={x}"}
		],
		"lines":[3,9],
		"sourceModified":true}}`

	req, err := DecodeSetBreakpoints(mustParse(t, in))
	require.NoError(t, err)

	want := &dap.SetBreakpointsRequest{
		Request: dap.Request{
			ProtocolMessage: dap.ProtocolMessage{Seq: 42, Type: "request"},
			Command:         "setBreakpoints",
		},
		Arguments: dap.SetBreakpointsArguments{
			Source: dap.Source{
				Name:            "main.go",
				Path:            "/src/main.go",
				SourceReference: 7,
				Checksums:       []dap.Checksum{{Algorithm: "SHA256", Checksum: "abc"}},
			},
			Breakpoints: []dap.SourceBreakpoint{
				{Line: 3},
				{Line: 9, Column: 2, Condition: "x > 1", HitCondition: "3", LogMessage: "x={x}"},
			},
			Lines:          []int{3, 9},
			SourceModified: true,
		},
	}
	assert.Equal(t, want, req)
}

func TestDecodeSetBreakpointsEmptyBreakpoints(t *testing.T) {
	req, err := DecodeSetBreakpoints(mustParse(t,
		`{"seq":1,"type":"request","command":"setBreakpoints","arguments":{"source":{},"breakpoints":[]}}`))
	require.NoError(t, err)
	assert.Empty(t, req.Arguments.Breakpoints)
}

func TestDecodeSetBreakpointsMissingFields(t *testing.T) {
	for _, key := range []string{"seq", "type", "command", "arguments"} {
		t.Run(key, func(t *testing.T) {
			obj := mustParse(t, validSetBreakpoints)
			delete(obj, key)

			req, err := DecodeSetBreakpoints(obj)
			assert.Nil(t, req)
			requireDecodeError(t, err, decode.KindMissingField, key)
		})
	}
}

func TestDecodeSetBreakpointsArgumentsNotObject(t *testing.T) {
	for _, raw := range []string{`"x"`, `3`, `[]`, `true`, `null`} {
		t.Run(raw, func(t *testing.T) {
			obj := mustParse(t, `{"seq":1,"type":"request","command":"setBreakpoints","arguments":`+raw+`}`)
			_, err := DecodeSetBreakpoints(obj)
			requireDecodeError(t, err, decode.KindTypeMismatch, "arguments")
		})
	}
}

func TestDecodeSetBreakpointsEnvelopeErrors(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		kind  decode.Kind
		field string
	}{
		{"fractional seq", `{"seq":1.5,"type":"request","command":"setBreakpoints","arguments":{}}`, decode.KindTypeMismatch, "seq"},
		{"string seq", `{"seq":"1","type":"request","command":"setBreakpoints","arguments":{}}`, decode.KindTypeMismatch, "seq"},
		{"not a request", `{"seq":1,"type":"event","command":"setBreakpoints","arguments":{}}`, decode.KindInvalidValue, "type"},
		{"numeric command", `{"seq":1,"type":"request","command":5,"arguments":{}}`, decode.KindTypeMismatch, "command"},
		{"other command", `{"seq":1,"type":"request","command":"next","arguments":{}}`, decode.KindInvalidValue, "command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSetBreakpoints(mustParse(t, tt.in))
			requireDecodeError(t, err, tt.kind, tt.field)
		})
	}
}

func TestDecodeSetBreakpointsNestedErrorsPropagate(t *testing.T) {
	tests := []struct {
		name string
		args string
		path string
	}{
		{"breakpoint without line", `{"source":{},"breakpoints":[{"line":1},{"column":4}]}`, "breakpoints[1].line"},
		{"breakpoint not an object", `{"source":{},"breakpoints":[7]}`, "breakpoints[0]"},
		{"breakpoints not an array", `{"source":{},"breakpoints":{}}`, "breakpoints"},
		{"missing breakpoints", `{"source":{}}`, "breakpoints"},
		{"bad checksum", `{"source":{"checksums":[{"algorithm":"MD5"}]},"breakpoints":[]}`, "source.checksums[0].checksum"},
		{"bad lines", `{"source":{},"breakpoints":[],"lines":[1,"2"]}`, "lines[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := mustParse(t, tt.args)
			_, standalone := DecodeSetBreakpointsArguments(args)
			require.Error(t, standalone)

			obj := mustParse(t, `{"seq":1,"type":"request","command":"setBreakpoints","arguments":`+tt.args+`}`)
			req, err := DecodeSetBreakpoints(obj)
			assert.Nil(t, req)
			require.Error(t, err)

			assert.Equal(t, standalone, err)
			assert.Equal(t, tt.path, decode.Path(err))
		})
	}
}

func TestDecodeSetBreakpointsIdempotent(t *testing.T) {
	obj := mustParse(t, validSetBreakpoints)

	first, err := DecodeSetBreakpoints(obj)
	require.NoError(t, err)
	second, err := DecodeSetBreakpoints(obj)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)

	first.Arguments.Breakpoints[0].Line = 99
	assert.Equal(t, 10, second.Arguments.Breakpoints[0].Line)
}

func TestDecodeSourceAdapterData(t *testing.T) {
	src, err := DecodeSource(mustParse(t, `{"path":"/x","adapterData":{"k":[1,2]}}`))
	require.NoError(t, err)
	assert.NotNil(t, src.AdapterData)
}
