// Package pages holds full documents. Every page shares Layout, whose header
// carries the auth buttons for the current user read.
package pages
