// Package testutil holds test doubles and fixtures shared across packages.
//
//   - MockProvider: a scriptable transcription engine that can also be
//     registered under the "mock" engine name.
//   - Fixtures: sample segments and throwaway audio files.
//   - Database helpers: temporary SQLite history databases.
package testutil
