package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
)

// getParam reads a path or query parameter whether the router stores it
// with a leading colon or not.
func getParam(r *http.Request, name string) string {
	if val := r.URL.Query().Get(":" + name); val != "" {
		return val
	}
	if val := r.URL.Query().Get(name); val != "" {
		return val
	}
	return r.PathValue(name)
}

// intParam parses an integer path parameter. Returns 0 when missing or
// malformed.
func intParam(r *http.Request, name string) int {
	id, err := strconv.Atoi(getParam(r, name))
	if err != nil {
		return 0
	}
	return id
}

// decodeOptional decodes a JSON body that the endpoint does not require.
// An absent body is fine; a malformed one is still an error.
func decodeOptional(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
