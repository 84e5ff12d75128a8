package badger

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Key prefixes for different data types
const (
	fileRecordPrefix  = "filrec"
	fileProjectPrefix = "filproj"
	fileStatusPrefix  = "filstat"
	chunkRecordPrefix = "chkrec"
)

// makeFileKey generates a key for a file row by ID.
func makeFileKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", fileRecordPrefix, id))
}

// makeFileProjectKey generates a composite key for the project index.
// Format: prefix:projectID:^timestamp:fileID
// The timestamp is bit-inverted so lexicographic iteration yields newest
// first, which is the listing order.
func makeFileProjectKey(projectID string, createdAt time.Time, fileID string) []byte {
	prefix := fmt.Sprintf("%s:%s:", fileProjectPrefix, projectID)
	buf := make([]byte, len(prefix)+8+len(fileID))
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], ^uint64(createdAt.UnixMicro()))
	offset += 8
	copy(buf[offset:], fileID)
	return buf
}

// makeFileProjectPrefix generates the iteration prefix for one project.
func makeFileProjectPrefix(projectID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", fileProjectPrefix, projectID))
}

// makeFileStatusKey generates a composite key for the status index.
// Format: prefix:status:fileID
func makeFileStatusKey(status, fileID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", fileStatusPrefix, status, fileID))
}

// makeFileStatusPrefix generates the iteration prefix for one status.
func makeFileStatusPrefix(status string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", fileStatusPrefix, status))
}

// makeChunkKey generates a composite key for a chunk row.
// Format: prefix:fileID:index
// The index is BigEndian so iteration yields chunks in order.
func makeChunkKey(fileID string, index int) []byte {
	prefix := fmt.Sprintf("%s:%s:", chunkRecordPrefix, fileID)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(index))
	return buf
}

// makeChunkPrefix generates the iteration prefix for one file's chunks.
func makeChunkPrefix(fileID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", chunkRecordPrefix, fileID))
}
