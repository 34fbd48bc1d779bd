// Package validation validates request payloads and configuration seeds.
//
// Struct tags go through go-playground/validator:
//
//	type Credential struct {
//	    Username string `json:"username" validate:"required,max=255"`
//	}
//	if err := validation.Validate(cred); err != nil { ... }
//
// Validate returns an *errors.AppError with per-field details. A custom
// "rolename" tag accepts authority names such as USER or ROLE_ADMIN.
//
// For ad hoc checks the chained Validator collects field errors:
//
//	v := validation.New().Required("username", name).MaxLength("username", name, 255)
//	if appErr := v.Validate(); appErr != nil { ... }
package validation
