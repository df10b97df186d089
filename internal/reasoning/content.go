package reasoning

import (
	"bytes"
	"encoding/json"
)

// Assignment labels shared by the request content and the reply payload.
const (
	FirstLabel  = "imgtext_1"
	SecondLabel = "imgtext_2"
)

// BuildContent serializes the two residual text lists into the request
// content: two labeled assignments separated by a newline. Output is
// deterministic for a given input; nil lists serialize as [].
func BuildContent(onlyInFirst, onlyInSecond []string) string {
	var b bytes.Buffer
	b.WriteString(FirstLabel)
	b.WriteByte('=')
	b.Write(marshalList(onlyInFirst))
	b.WriteByte('\n')
	b.WriteString(SecondLabel)
	b.WriteByte('=')
	b.Write(marshalList(onlyInSecond))
	return b.String()
}

// marshalList encodes a string list without HTML escaping so that text such
// as "<b>" or "A&B" reaches the service unchanged.
func marshalList(values []string) []byte {
	if values == nil {
		values = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a []string cannot fail.
	_ = enc.Encode(values)
	return bytes.TrimRight(buf.Bytes(), "\n")
}
