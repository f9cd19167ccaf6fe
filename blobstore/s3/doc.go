// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket", func(o *s3.Options) {
//	    o.Prefix = "archives/"
//	    o.Region = "eu-central-1"
//	})
//
// # Features
//
//   - Range reads for restoring archives
//   - Multipart streaming uploads with CRC32C checksums
//   - Automatic pagination for listing
//   - Configurable prefix and endpoint
package s3
