// Package reeljob persists reel jobs: their lifecycle status, the current
// human-readable step, and the artifacts the asset pipeline produces along the
// way (voiceover, music, timed segments, website analysis).
//
// Three interchangeable backends sit behind the Store interface:
//   - FileStore keeps an in-process map mirrored to one JSON object on disk.
//     A gofrs/flock lock file refuses a second process.
//   - RedisStore keeps one key per job and a per-user "last job" pointer.
//     Writes are whole-value overwrites, so concurrent writers to the same job
//     race and the last one wins.
//   - SQLiteStore keeps the JSON document in a jobs table for single-host
//     deployments that want SQL tooling.
//
// Open picks a backend from configuration at construction time. Every backend
// returns (nil, nil) for operations on a missing job and hands out deep copies
// so callers can never mutate stored state by accident.
package reeljob
