// internal/api/handlers/helpers_test.go
package handlers

import "encoding/json"

func decodeJSON(body []byte, v interface{}) error {
	return json.Unmarshal(body, v)
}
