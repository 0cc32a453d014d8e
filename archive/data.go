// Package archive implements ArchiveChain's archive-data model and the
// content index derived from it (spec §4.3, §3).
package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Compression names the supported payload compressions (spec §3).
type Compression string

const (
	CompressionNone   Compression = "none"
	CompressionGzip   Compression = "gzip"
	CompressionZstd   Compression = "zstd"
	CompressionBrotli Compression = "brotli"
)

func validCompression(c Compression) bool {
	switch c {
	case CompressionNone, CompressionGzip, CompressionZstd, CompressionBrotli:
		return true
	default:
		return false
	}
}

const (
	MinReplicationCount     = 1
	MaxReplicationCount     = 15
	DefaultReplicationCount = 3
)

// Metadata is the immutable-after-inclusion archive metadata bundle
// (spec §3).
type Metadata struct {
	Screenshots        []string `json:"screenshots"`
	ExternalResources  []string `json:"external_resources"`
	LinkedPages        []string `json:"linked_pages"`
	Tags               []string `json:"tags"`
	Category           string   `json:"category"`
	Priority           int      `json:"priority"` // 1..10
	Language           string   `json:"language,omitempty"`
	Title              string   `json:"title,omitempty"`
	Description        string   `json:"description,omitempty"`
}

// ArchiveData is the on-chain archive descriptor (spec §3).
type ArchiveData struct {
	ArchiveID        string      `json:"archive_id"`
	OriginalURL      string      `json:"original_url"`
	CaptureTimestamp string      `json:"capture_timestamp"` // RFC-3339 UTC
	ContentType      string      `json:"content_type"`
	Compression      Compression `json:"compression"`
	SizeOriginal     int64       `json:"size_original"`
	SizeCompressed   int64       `json:"size_compressed"`
	Checksum         string      `json:"checksum"`
	Metadata         Metadata    `json:"metadata"`
	BlockHeight      *uint64     `json:"block_height,omitempty"`
	ReplicationCount int         `json:"replication_count"`
	StorageNodes     []string    `json:"storage_nodes"`
}

// ContentAddress computes the SHA-256 content address of raw content,
// hex-encoded, as ArchiveData.ArchiveID must equal at inclusion time.
func ContentAddress(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Validate checks the structural invariants spec §4.3 names: non-empty
// archive_id, well-formed RFC-3339 timestamp, non-negative sizes, and
// replication count in [1,15]. It does not check the archive_id/content or
// checksum/salt bindings, which need the raw content and a salt store;
// VerifyContentAddress and crypto.SaltStore provide those checks, and the
// chain package calls neither of them.
func (a *ArchiveData) Validate() error {
	if a.ArchiveID == "" {
		return newErr(ErrInvalidArchive, "archive_id is empty")
	}
	if a.OriginalURL == "" {
		return newErr(ErrInvalidArchive, "original_url is empty")
	}
	if _, err := time.Parse(time.RFC3339, a.CaptureTimestamp); err != nil {
		return newErr(ErrInvalidArchive, fmt.Sprintf("malformed capture_timestamp: %v", err))
	}
	if a.SizeOriginal < 0 || a.SizeCompressed < 0 {
		return newErr(ErrInvalidArchive, "sizes must be non-negative")
	}
	if !validCompression(a.Compression) {
		return newErr(ErrInvalidArchive, fmt.Sprintf("unsupported compression %q", a.Compression))
	}
	if a.ReplicationCount < MinReplicationCount || a.ReplicationCount > MaxReplicationCount {
		return newErr(ErrInvalidArchive, "replication_count out of [1,15] range")
	}
	if a.Metadata.Priority < 1 || a.Metadata.Priority > 10 {
		return newErr(ErrInvalidArchive, "metadata.priority out of [1,10] range")
	}
	return nil
}

// VerifyContentAddress reports whether a.ArchiveID equals the SHA-256 of
// content (spec §3 invariant).
func (a *ArchiveData) VerifyContentAddress(content []byte) bool {
	return a.ArchiveID == ContentAddress(content)
}

// WithDefaults fills ReplicationCount with its spec default (3) if unset.
func (a *ArchiveData) WithDefaults() {
	if a.ReplicationCount == 0 {
		a.ReplicationCount = DefaultReplicationCount
	}
}

// CaptureDate returns the YYYY-MM-DD date bucket used by the index.
func (a *ArchiveData) CaptureDate() (string, error) {
	t, err := time.Parse(time.RFC3339, a.CaptureTimestamp)
	if err != nil {
		return "", err
	}
	return t.UTC().Format("2006-01-02"), nil
}
