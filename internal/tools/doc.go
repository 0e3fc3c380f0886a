// Package tools wraps external command execution behind small interfaces
// so the launcher and the replay pipeline can be tested against fakes.
package tools
