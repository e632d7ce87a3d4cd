// Package utils converts the loosely typed values of upstream payloads and
// database drivers into the types the normalizers need.
package utils
