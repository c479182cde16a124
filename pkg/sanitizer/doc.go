// Package sanitizer provides input normalization functions for care
// request and booking data.
//
// All normalization functions are idempotent - applying them multiple times
// produces the same result. Functions handle invalid input gracefully,
// typically by returning empty strings or empty slices rather than errors.
//
// Normalization includes:
//   - Strings: Collapse whitespace, trim leading/trailing spaces
//   - Labels: Lowercase, remove all special characters - "Dog-Walking" becomes "dogwalking"
//   - Slices: Remove duplicates and empty values after normalization
package sanitizer
