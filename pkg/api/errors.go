package api

import "fmt"

// ErrorObject is a single entry of the JSON:API error envelope. The
// three authentication/authorization failures use fixed literal bodies
// asserted by clients, so the values here are part of the contract.
type ErrorObject struct {
	Status string      `json:"status"`
	Source ErrorSource `json:"source"`
	Title  string      `json:"title"`
	Detail string      `json:"detail"`
}

// ErrorSource points at the request element that caused the error.
type ErrorSource struct {
	Pointer string `json:"pointer"`
}

// ErrorsDocument is the top-level error response body.
type ErrorsDocument struct {
	Errors []ErrorObject `json:"errors"`
}

// Error implements the error interface.
func (e ErrorObject) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Status, e.Title, e.Detail)
}

// ForbiddenError is returned for every guarded request without a valid
// bearer token, and for owner-scoped operations on foreign resources.
// Missing header, malformed header, and unknown token are deliberately
// indistinguishable.
func ForbiddenError() ErrorObject {
	return ErrorObject{
		Status: "403",
		Source: ErrorSource{Pointer: "/headers/authorization"},
		Title:  "Not authorized",
		Detail: "You have no right to access this resource.",
	}
}

// InvalidCredentialsError is returned when a login/password exchange
// fails. Unknown login and wrong password share this body to avoid
// login enumeration.
func InvalidCredentialsError() ErrorObject {
	return ErrorObject{
		Status: "401",
		Source: ErrorSource{Pointer: "/data/attributes/password"},
		Title:  "Invalid login or password",
		Detail: "You must provide valid credentials in order to exchange them for token.",
	}
}

// InvalidAuthorizationCodeError is returned when a delegated login
// code exchange fails.
func InvalidAuthorizationCodeError() ErrorObject {
	return ErrorObject{
		Status: "401",
		Source: ErrorSource{Pointer: "/code"},
		Title:  "Authentication code is invalid",
		Detail: "You must provide valid code in order to exchange it for token.",
	}
}

// ValidationErrors maps a field name to its failure messages. It is
// rendered directly as the 422 response body.
type ValidationErrors map[string][]string

// Add appends a message for a field.
func (v ValidationErrors) Add(field, message string) {
	v[field] = append(v[field], message)
}

// Any reports whether at least one field failed.
func (v ValidationErrors) Any() bool {
	return len(v) > 0
}

// Error implements the error interface.
func (v ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(v))
}

// Validation failure messages. The wording is fixed; clients match on it.
const (
	MsgBlank = "can't be blank"
	MsgTaken = "has already been taken"
)
