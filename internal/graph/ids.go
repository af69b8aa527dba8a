package graph

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// NodeID computes the stable id for a discovered code entity from its
// composite key (type, file path, line-or-name). The same logical entity
// always hashes to the same id, which is what makes re-discovery merge
// instead of duplicate.
//
// Format: cre:<type>:<hash16>
func NodeID(nodeType NodeType, file string, lineOrName string) string {
	canonical := strings.Join([]string{
		"type:" + string(nodeType),
		"file:" + file,
		"at:" + lineOrName,
	}, "|")

	sum := blake2b.Sum256([]byte(canonical))
	return fmt.Sprintf("cre:%s:%s", nodeType, hex.EncodeToString(sum[:8]))
}

// NodeIDForLine is a convenience for entities identified by file position.
func NodeIDForLine(nodeType NodeType, file string, line int) string {
	return NodeID(nodeType, file, fmt.Sprintf("%d", line))
}
