//go:build tools
// +build tools

// Package tools pins the code generators run by go generate, mockgen first.
package help_desk

import (
	_ "go.uber.org/mock/mockgen"
)
