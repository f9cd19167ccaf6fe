// Package minio stores recording archives in MinIO or another
// S3-compatible service such as Ceph or Garage.
//
//	client, err := minio.New("nas.lab.local:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
//	    Secure: true,
//	})
//	if err != nil {
//	    return err
//	}
//	store := minioblob.NewStore(client, "recordings", "archives/")
//
// Streaming writes go through an io.Pipe into PutObject, so an archive
// is uploaded while it is being compressed.
package minio
