// Package validation provides centralized input validation logic.
// This includes bucket argument parsing, bucket name validation and
// pattern checks.
//
// All user inputs are validated before any remote call is issued.
package validation
