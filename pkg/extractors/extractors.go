// Package extractors finds Content-Length framed DAP messages in raw byte streams.
package extractors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// MaxBodySize is the largest frame body accepted.
const MaxBodySize = 10 * 1024 * 1024

const contentLengthPrefix = "content-length:"

var headerTerminator = []byte("\r\n\r\n")

// ExtractDAPMessage extracts the first DAP message of data.
//
// jsonObj is the body of the first frame. remainingCompleted holds the well-formed
// frames that follow it, headers included, and remainingIncomplete starts at the
// first frame that is truncated or malformed. found is false when data does not
// begin with a complete frame; data is then returned as remainingCompleted.
func ExtractDAPMessage(data []byte) (jsonObj []byte, remainingCompleted []byte, found bool,
	remainingIncomplete []byte) {
	if len(data) == 0 {
		return nil, data, false, nil
	}

	bodyStart, contentLength, ok := parseHeader(data)
	if !ok {
		return nil, data, false, nil
	}
	bodyEnd := bodyStart + contentLength
	if len(data) < bodyEnd {
		return nil, data, false, nil
	}

	jsonObj = data[bodyStart:bodyEnd]
	remaining := data[bodyEnd:]
	offset := FirstInvalidDAP(remaining)
	if offset == -1 {
		return jsonObj, remaining, true, nil
	}
	return jsonObj, remaining[:offset], true, remaining[offset:]
}

// parseHeader reads the header block at the start of data and returns where the
// body begins and how long it is. ok is false while the header is incomplete or
// when it carries no usable Content-Length.
func parseHeader(data []byte) (bodyStart, contentLength int, ok bool) {
	headerEnd := bytes.Index(data, headerTerminator)
	if headerEnd == -1 {
		return 0, 0, false
	}
	contentLength = -1
	for _, line := range bytes.Split(data[:headerEnd], []byte("\r\n")) {
		line = bytes.TrimSpace(line)
		if !bytes.HasPrefix(bytes.ToLower(line), []byte(contentLengthPrefix)) {
			continue
		}
		n, err := strconv.Atoi(string(bytes.TrimSpace(line[len(contentLengthPrefix):])))
		if err != nil {
			return 0, 0, false
		}
		contentLength = n
	}
	if contentLength < 0 || contentLength > MaxBodySize {
		return 0, 0, false
	}
	return headerEnd + len(headerTerminator), contentLength, true
}

// FirstInvalidDAP scans consecutive DAP frames in buf and
// returns the byte offset where the stream stops being well-formed.
// It returns -1 when everything up to len(buf) is valid.
func FirstInvalidDAP(buf []byte) int {
	if len(buf) == 0 {
		return -1
	}

	off := 0
	for off < len(buf) {
		start := off
		contentLength := -1
		headerComplete := false

		for off < len(buf) {
			nl := bytes.IndexByte(buf[off:], '\n')
			if nl == -1 {
				return start
			}
			line := bytes.TrimSpace(buf[off : off+nl])
			off += nl + 1

			if len(line) == 0 {
				headerComplete = true
				break
			}
			if bytes.HasPrefix(bytes.ToLower(line), []byte(contentLengthPrefix)) {
				cl, err := strconv.Atoi(string(bytes.TrimSpace(line[len(contentLengthPrefix):])))
				if err != nil || cl < 0 {
					return start
				}
				contentLength = cl
			}
		}

		if !headerComplete || contentLength < 0 || contentLength > MaxBodySize {
			return start
		}
		if off+contentLength > len(buf) {
			return start
		}
		if !json.Valid(buf[off : off+contentLength]) {
			return start
		}
		off += contentLength
	}
	return -1
}

// SplitFrames returns the bodies of every complete frame at the start of buf
// and the unconsumed tail, which is either empty or begins with a partial or
// malformed frame.
func SplitFrames(buf []byte) (bodies [][]byte, rest []byte) {
	rest = buf
	for {
		body, completed, found, incomplete := ExtractDAPMessage(rest)
		if !found {
			return bodies, rest
		}
		bodies = append(bodies, body)
		rest = rest[len(rest)-len(completed)-len(incomplete):]
	}
}

// Scan hands every complete frame in buf to fn. A header block that can never
// yield a frame is skipped up to the next Content-Length header. It returns
// the partial frame left over and the number of bytes skipped.
func Scan(buf []byte, fn func(body []byte)) (rest []byte, discarded int) {
	rest = buf
	for {
		var bodies [][]byte
		bodies, rest = SplitFrames(rest)
		for _, body := range bodies {
			fn(body)
		}
		if !Malformed(rest) {
			return rest, discarded
		}
		skip := resync(rest)
		discarded += skip
		rest = rest[skip:]
	}
}

// resync returns the offset of the next Content-Length header after the start
// of buf, or len(buf) when there is none.
func resync(buf []byte) int {
	lower := bytes.ToLower(buf)
	i := bytes.Index(lower[1:], []byte(contentLengthPrefix))
	if i == -1 {
		return len(buf)
	}
	return i + 1
}

// Malformed reports whether buf starts with a complete header block that has
// no usable Content-Length. Such input never becomes a frame.
func Malformed(buf []byte) bool {
	if !bytes.Contains(buf, headerTerminator) {
		return false
	}
	_, _, ok := parseHeader(buf)
	return !ok
}

// BuildDAPMessage frames body with a Content-Length header.
func BuildDAPMessage(body []byte) []byte {
	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(body))
	out := make([]byte, 0, len(header)+len(body))
	out = append(out, header...)
	return append(out, body...)
}
