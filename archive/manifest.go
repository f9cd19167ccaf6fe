package archive

import (
	"time"
)

// ManifestFormat is the current manifest format version.
const ManifestFormat = 1

const (
	manifestFileName = "manifest.json"
	latestFileName   = "LATEST"
	idLayout         = "20060102T150405.000000000Z"
)

// Manifest describes one snapshot of a recording directory.
type Manifest struct {
	Format      int         `json:"format"`
	ID          string      `json:"id"`
	Recording   string      `json:"recording"`
	Source      string      `json:"source"`
	Version     string      `json:"version"`
	CreatedAt   time.Time   `json:"created_at"`
	Compression string      `json:"compression"`
	Archive     string      `json:"archive"` // blob name of the tar stream
	Size        int64       `json:"size"`    // uncompressed payload bytes
	Files       []FileEntry `json:"files"`
}

// FileEntry records one archived file.
type FileEntry struct {
	Name   string `json:"name"` // slash-separated, relative to the recording
	Size   int64  `json:"size"`
	Mode   uint32 `json:"mode"`
	CRC32C uint32 `json:"crc32c"`
}

func (m *Manifest) compression() (Compression, error) {
	return ParseCompression(m.Compression)
}
