package storage

import (
	"fmt"
	"strings"
)

// ArtifactKind identifies one class of persisted byte artifact.
type ArtifactKind string

const (
	KindRaw       ArtifactKind = "raw"
	KindConverted ArtifactKind = "converted"
	KindEnriched  ArtifactKind = "enriched"
	KindChunks    ArtifactKind = "chunks"
	KindEmbedding ArtifactKind = "embedding"
)

// ArtifactPath builds the deterministic blob key for an artifact:
//
//	{tenant}/{project}/{file}/{kind}/{name}
//
// The hierarchy is file-before-kind: all artifacts of one file live under a
// single prefix, so deleting a file is a single prefix delete and no two
// files can share a prefix that would allow cross-tenant traversal.
// Recomputing the path for the same inputs always yields the same result,
// which is what makes stage output writes idempotent overwrites.
func ArtifactPath(tenantID, projectID, fileID string, kind ArtifactKind, name string) (string, error) {
	for _, seg := range []string{tenantID, projectID, fileID, name} {
		if err := checkSegment(seg); err != nil {
			return "", err
		}
	}
	switch kind {
	case KindRaw, KindConverted, KindEnriched, KindChunks, KindEmbedding:
	default:
		return "", fmt.Errorf("%w: unknown kind %q", ErrBadKey, kind)
	}
	return fmt.Sprintf("%s/%s/%s/%s/%s", tenantID, projectID, fileID, kind, name), nil
}

// FilePrefix returns the blob prefix holding every artifact of one file.
// Deleting a file cascades by deleting this prefix.
func FilePrefix(tenantID, projectID, fileID string) (string, error) {
	for _, seg := range []string{tenantID, projectID, fileID} {
		if err := checkSegment(seg); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%s/%s/%s/", tenantID, projectID, fileID), nil
}

// RawPath returns the key for the raw upload, preserving the original
// filename for downstream context.
func RawPath(tenantID, projectID, fileID, filename string) (string, error) {
	return ArtifactPath(tenantID, projectID, fileID, KindRaw, filename)
}

// ConvertedPath returns the key for the converted artifact. Conversion
// always produces a PDF; the name keeps the original stem.
func ConvertedPath(tenantID, projectID, fileID, filename string) (string, error) {
	return ArtifactPath(tenantID, projectID, fileID, KindConverted, replaceExt(filename, ".pdf"))
}

// EnrichedPath returns the key for the enriched-document JSON artifact.
func EnrichedPath(tenantID, projectID, fileID string) (string, error) {
	return ArtifactPath(tenantID, projectID, fileID, KindEnriched, "document.json")
}

// ChunkPath returns the key for one chunk's text artifact.
func ChunkPath(tenantID, projectID, fileID string, index int) (string, error) {
	if index < 0 {
		return "", fmt.Errorf("%w: negative chunk index %d", ErrBadKey, index)
	}
	return ArtifactPath(tenantID, projectID, fileID, KindChunks, fmt.Sprintf("chunk_%d.json", index))
}

// EmbeddingPath returns the key for the embedding manifest artifact mapping
// chunk indices to vector ids.
func EmbeddingPath(tenantID, projectID, fileID string) (string, error) {
	return ArtifactPath(tenantID, projectID, fileID, KindEmbedding, "manifest.json")
}

func checkSegment(seg string) error {
	if seg == "" {
		return fmt.Errorf("%w: empty segment", ErrBadKey)
	}
	if seg == "." || seg == ".." {
		return fmt.Errorf("%w: %q", ErrBadKey, seg)
	}
	if strings.ContainsAny(seg, "/\\") {
		return fmt.Errorf("%w: %q contains a path separator", ErrBadKey, seg)
	}
	return nil
}

func replaceExt(filename, ext string) string {
	if i := strings.LastIndexByte(filename, '.'); i > 0 {
		return filename[:i] + ext
	}
	return filename + ext
}
