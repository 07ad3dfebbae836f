// Package models defines the track records exchanged between the catalog client, the local library reader, and the
// matching-and-reconciliation core.
//
// The package contains two categories of types:
//
// 1. Transient records: constructed per invocation from collaborator data
//   - [TrackRecord] : One catalog track (id, name, artists, duration, popularity)
//   - [Collection] : Mapping from track id to [TrackRecord]
//   - [LocalTrackDescriptor] : Tag metadata of one local audio file used as a match query
//   - [LibraryEntry] : A [LocalTrackDescriptor] plus file location and secondary tags
//   - [ScoredMatch], [MatchResult] : Matcher output
//   - [ReconciliationDelta] : Reconciler output
//
// 2. Persistent entities: rows written by the repositories package
//   - [MatchRow] : Best catalog match cached per local file
//   - [SyncRun] : History of liked-tracks sync runs
//
// Validation failures are reported as [*ValidationError], which always matches [shared.ErrInvalidInput] with errors.Is.
package models
