// Package components holds the leaf UI pieces shared by every page.
package components
