// Package resource limits what concurrent recording migrations may use.
//
//   - Workers: how many recordings are migrated at once
//
//   - Memory: bytes held by in-memory archive buffers (blocking)
//
//   - IO: token bucket for archive reads and uploads
//
//     rc := resource.NewController(resource.Config{
//     MaxWorkers:         4,
//     IOLimitBytesPerSec: 50 << 20,
//     })
//
//     if err := rc.AcquireWorker(ctx); err != nil {
//     return err
//     }
//     defer rc.ReleaseWorker()
//
//     r := resource.NewRateLimitedReader(ctx, file, rc)
//
// All methods are safe for concurrent use and treat a nil Controller as
// unlimited.
package resource
