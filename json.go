package fsroute

import (
	"encoding/json"
	"io"
)

// encodeJSON writes body as JSON to w. Centralized so every JSON writer
// (the default Response writer, the response validator's wrapper, and
// the 404/405/error-envelope writers in package server) encodes the
// same way.
func encodeJSON(w io.Writer, body any) error {
	enc := json.NewEncoder(w)
	return enc.Encode(body)
}
