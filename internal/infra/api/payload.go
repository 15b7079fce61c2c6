package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
)

const (
	maxCallbackBody = 1 << 20
	maxMultipartMem = 1 << 20
)

var errMalformed = errors.New("malformed callback payload")

// parseCallback flattens a form, multipart or JSON callback body into a field
// mapping. JSON scalars keep their literal text; nested values are dropped.
func parseCallback(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCallbackBody)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errMalformed, err)
		}
		return flattenJSON(b)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMultipartMem); err != nil {
			return nil, fmt.Errorf("%w: %v", errMalformed, err)
		}
	default:
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("%w: %v", errMalformed, err)
		}
	}

	out := make(map[string]string, len(r.PostForm))
	for k, vs := range r.PostForm {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out, nil
}

func flattenJSON(b []byte) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if raw == nil {
		return nil, errMalformed
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			out[k] = t
		case json.Number:
			out[k] = t.String()
		case bool:
			out[k] = strconv.FormatBool(t)
		case nil:
			out[k] = ""
		}
	}
	return out, nil
}
