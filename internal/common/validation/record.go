// internal/common/validation/record.go

// Package validation checks assembled application records against a JSON
// schema before the single store write.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// applicationRecordSchema describes the persisted shape of an application.
// The store-assigned fields (id, timestamps) are not part of the payload.
const applicationRecordSchema = `{
	"type": "object",
	"required": ["userId", "programId", "durationWeeks", "targetStartDate", "paymentStatus", "status", "personalInfo", "experience", "travel"],
	"properties": {
		"userId": {"type": "string", "minLength": 1},
		"programId": {"type": "string", "minLength": 1},
		"durationWeeks": {"type": "integer", "minimum": 1},
		"targetStartDate": {"type": "string"},
		"paymentStatus": {"type": "string", "enum": ["pending_setup_fee", "paid", "failed"]},
		"status": {"type": "string", "enum": ["submitted", "pending_review", "approved", "rejected"]},
		"personalInfo": {
			"type": "object",
			"required": ["firstName", "lastName", "email", "phone"],
			"properties": {
				"firstName": {"type": "string", "minLength": 1},
				"lastName": {"type": "string", "minLength": 1},
				"email": {"type": "string", "minLength": 3},
				"phone": {"type": "string", "minLength": 1}
			}
		},
		"experience": {
			"type": "object",
			"required": ["motivation"],
			"properties": {
				"motivation": {"type": "string", "minLength": 1},
				"skills": {"type": "string"}
			}
		},
		"travel": {
			"type": "object",
			"required": ["insuranceAssent"],
			"properties": {
				"arrivalDate": {"type": "string"},
				"insuranceAssent": {"type": "boolean", "enum": [true]}
			}
		}
	}
}`

// ValidateApplicationRecord validates the assembled record payload. A non-nil
// error means the record must not be written.
func ValidateApplicationRecord(record map[string]interface{}) error {
	schemaLoader := gojsonschema.NewStringLoader(applicationRecordSchema)
	documentLoader := gojsonschema.NewGoLoader(record)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed to run: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("record failed schema validation: %s", strings.Join(msgs, "; "))
	}

	return nil
}
