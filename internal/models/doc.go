// Package models defines domain entities and persistence interfaces for the gnx notebook editor.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight values read from a sheet store
//   - [Row] : One spreadsheet row keyed by column name
//   - [Table] : A fetched sheet with its header in column order
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Commit] : Journal entry for one story commit attempt
//
// All persistent entities implement the [Model] interface providing ID, timestamps and validation.
// The [Repository] interface defines standard CRUD operations for database access.
package models
