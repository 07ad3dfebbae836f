// Package repositories implements SQLite persistence for the local match cache and the sync history.
//
// Key Implementations:
//   - [MatchRepository] : best catalog match per local file, upserted by file path
//   - [SyncRunRepository] : one row per liked-tracks sync run
//
// Both repositories expect the schema created by [shared.RunMigrations]. Ids are v4 UUIDs
// from [shared.GenerateID].
package repositories
