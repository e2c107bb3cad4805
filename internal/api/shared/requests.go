package shared

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Global validator instance for reuse
var validate = validator.New()

// DecodeJSON decodes the request body into the given struct.
func DecodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// ValidateRequest validates the given struct using the validator package.
// Types carrying their own Validate method use that instead.
func ValidateRequest(v interface{}) error {
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}
	return validate.Struct(v)
}
