package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
)

// maxBodyBytes caps request bodies read by BindNestedOrFlat
const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("request body is empty")

// BindNestedOrFlat decodes the body into obj, accepting either {"<key>": {...}} or the flat object.
// The body is restored for later reads.
func BindNestedOrFlat(c *gin.Context, key string, obj interface{}) error {
	if c.Request.Body == nil {
		return errEmptyBody
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if len(bytes.TrimSpace(body)) == 0 {
		return errEmptyBody
	}

	var nested map[string]json.RawMessage
	if err := json.Unmarshal(body, &nested); err == nil {
		if val, ok := nested[key]; ok {
			return json.Unmarshal(val, obj)
		}
	}
	return json.Unmarshal(body, obj)
}
