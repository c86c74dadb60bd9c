package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// SnapshotKeyOpts are the render options that change a snapshot.
type SnapshotKeyOpts struct {
	Gap             int
	WorkspaceLayout string
	MonitorLayout   string
	FloatClasses    []string
}

// SnapshotKey keys the snapshot of a scenario, identified by the hash of
// its file content, rendered with opts. Float class order and case do not
// affect the key.
func SnapshotKey(scenarioHash string, opts SnapshotKeyOpts) string {
	classes := make([]string, len(opts.FloatClasses))
	for i, c := range opts.FloatClasses {
		classes[i] = strings.ToLower(c)
	}
	slices.Sort(classes)
	classes = slices.Compact(classes)
	return hashKey("snapshot", scenarioHash, opts.Gap, opts.WorkspaceLayout, opts.MonitorLayout, classes)
}

// ArtifactKey keys a rendering of a cached snapshot in an output format
// ("svg", "dot").
func ArtifactKey(snapshotKey, format string) string {
	return hashKey("artifact", snapshotKey, format)
}
