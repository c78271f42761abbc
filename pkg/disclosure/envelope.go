package disclosure

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// BinaryMarker is the first line of every binary envelope.
const BinaryMarker = "[Binary file - base64 encoded]"

// EncodeContent returns data verbatim when it is valid UTF-8 and otherwise a
// binary envelope: BinaryMarker, a newline, then the standard base64 encoding
// of data.
func EncodeContent(data []byte) (string, bool) {
	if utf8.Valid(data) {
		return string(data), false
	}
	return BinaryMarker + "\n" + base64.StdEncoding.EncodeToString(data), true
}

// DecodeContent reverses EncodeContent. The second return value reports
// whether content was a binary envelope.
func DecodeContent(content string) ([]byte, bool, error) {
	payload, ok := strings.CutPrefix(content, BinaryMarker+"\n")
	if !ok {
		return []byte(content), false, nil
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, true, errors.Wrap(err, "invalid base64 payload")
	}
	return data, true, nil
}
