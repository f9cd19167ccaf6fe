// Package blobstore provides storage for recording archives.
//
// BlobStore is the interface archives are written to and restored from.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: a local directory, writes are atomic renames
//   - MemoryStore: in memory, for tests
//   - s3.Store: Amazon S3 with multipart streaming uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Create(ctx, name) (WritableBlob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// A WritableBlob must not make partial data visible: the blob appears on a
// successful Close and never after Abort.
package blobstore
