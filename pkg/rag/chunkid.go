package rag

import (
	"fmt"
	"time"

	"ai-docchat-be/pkg/utils"
)

const timestampLayout = "20060102_150405"

// maxFilenamePrefix bounds the filename part of a chunk id so ids stay short
// enough to read in logs and store dashboards.
const maxFilenamePrefix = 20

// ChunkID builds the stored id for one chunk. The index is the run-wide chunk
// counter, so re-uploading the same file within one run cannot collide, and
// the timestamp separates runs: re-running a document appends new chunks
// rather than overwriting old ones.
func ChunkID(filename, sessionID string, runTime time.Time, index int) string {
	safe := utils.SanitizeFilename(filename, maxFilenamePrefix)
	return fmt.Sprintf("%s_%s_%s_%d", safe, sessionID, runTime.Format(timestampLayout), index)
}

// NewSessionID returns a timestamp-derived session id for callers that did
// not supply one. Callers needing idempotent session reuse must always pass
// an explicit id.
func NewSessionID(t time.Time) string {
	return "chat_" + t.Format(timestampLayout)
}
