// Package conv provides checked integer conversions for layout arithmetic.
//
// Block sizes are computed in uintptr while element counts arrive as int and
// memory budgets are tracked as int64. Every crossing between those domains
// goes through this package so that an overflowing request is reported
// instead of silently wrapping into a small allocation.
package conv
