// Package version reports build information for the menustats command.
package version
