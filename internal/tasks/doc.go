// Package tasks runs long sheet operations off the UI thread with progress reporting.
//
// # Bulk export
//
// [Engine.BulkExport] exports many sheets concurrently:
//   - sheet names are queued as jobs and fed to a bounded worker pool
//   - every fetch waits on a shared rate limiter so the store's quota is respected
//   - a sheet that fails to load or write is recorded and the others carry on
//   - a manifest summarizing every sheet is written to the output directory
//
// # Progress Reporting
//
// Progress updates are sent on an optional channel with select/default, so a slow or
// absent reader never stalls the export. See [ProgressUpdate].
package tasks
