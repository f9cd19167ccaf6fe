// Package batch migrates every recording below a directory tree.
//
// Recordings are found with recording.Discover and migrated in parallel,
// at most one worker per recording, with the number of workers taken from
// a resource.Controller.
//
//	rc := resource.NewController(resource.Config{MaxWorkers: 4})
//	runner := batch.New(migrate.New(), batch.WithController(rc))
//	sum, err := runner.Run(ctx, "/data/study")
package batch
