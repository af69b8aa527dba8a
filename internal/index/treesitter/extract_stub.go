//go:build !cgo

package treesitter

import "context"

// Without CGO the grammars cannot be linked, so the scanner reports
// itself unavailable and extraction yields nothing.

func parserAvailable() bool {
	return false
}

func extractFile(ctx context.Context, relPath string, source []byte) ([]symbolRecord, []importRecord, error) {
	return nil, nil, nil
}
