// Package archive snapshots recording directories before they are migrated.
//
// A snapshot is a tar stream, optionally compressed with zstd or LZ4,
// written to any blobstore.BlobStore together with a JSON manifest that
// lists every file with its size and CRC32C checksum. A LATEST pointer per
// recording names the newest snapshot.
//
//	store, _ := s3.New(ctx, "lab-archive")
//	arch := archive.New(store, archive.WithCompression(archive.CompressionZstd))
//
//	eng := migrate.New(migrate.WithArchiver(arch))
//
// Verify re-reads a snapshot and checks it against its manifest. Restore
// unpacks it, replacing each file atomically once its checksum matched.
//
// With a resource.Controller (WithController) archive reads are throttled
// by the controller's IO limiter and copy buffers count against its memory
// budget.
package archive
