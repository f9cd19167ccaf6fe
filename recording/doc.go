// Package recording models an on-disk eye-tracking recording and the storage
// capability migration steps and readers use to access it.
//
// # Layout
//
//	info.csv / user_info.csv      key,value metadata (first found wins)
//	<topic>_timestamps.npy        float64 timestamps, one per event
//	<topic>.pldata                msgpack frames [topic-label, payload]
//	offline_data/offline_<topic>* cached variants, preferred when present
//	pupil_data, world.intrinsics  legacy single-value msgpack objects
//	<name>.time                   raw big-endian float64 (Pupil Mobile)
//
// # Store
//
// [Store] is the only way steps touch the filesystem. [LocalStore] implements
// it over internal/fs with atomic replace-on-write semantics; every write
// either lands completely or leaves the previous file in place.
//
// Missing files surface as errors satisfying errors.Is(err, fs.ErrNotExist).
// Malformed content surfaces as [*FormatError].
package recording
