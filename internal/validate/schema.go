package validate

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Document checks raw JSON against a JSON schema. Schema violations come back as
// Errors; a malformed schema or document is a plain error.
func Document(schema string, document []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(document),
	)
	if err != nil {
		return fmt.Errorf("validating document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var errs Errors
	for _, desc := range result.Errors() {
		errs.Add(desc.Field(), CodeSchema, desc.Description())
	}
	return errs.Err()
}
