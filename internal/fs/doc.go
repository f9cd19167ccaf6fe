// Package fs abstracts the filesystem calls recording stores and archives
// make, so tests can inject failures.
//
// [LocalFS] forwards to the os package. [FaultyFS] wraps another
// FileSystem and fails writes, syncs or renames on paths matching a rule:
//
//	faulty := fs.NewFaultyFS(nil)
//	faulty.AddRule("pupil_data", fs.Fault{FailAfterBytes: -1, FailOnRename: true})
//	store := recording.NewLocalStore(dir, recording.WithFileSystem(faulty))
//
// Recording files are replaced through [WriteAtomic]: the new content goes
// to a hidden temp file next to the target, is synced, and is renamed over
// it. Readers see either the old file or the new one.
//
// Calls take no context.Context; local syscalls cannot be interrupted.
// Remote storage lives behind blobstore instead.
package fs
