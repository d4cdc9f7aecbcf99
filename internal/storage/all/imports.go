// Package all wires the built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete backend to run, which in
// turn register their factories with the storage package.
//
// In other words, importing this package makes the following storage kinds
// available at runtime:
//
//   - "postgres" (dqcheck/internal/storage/postgres)
//   - "sqldb"    (dqcheck/internal/storage/sqldb; sqlite, mysql, mssql drivers)
//
// Typical usage (in cmd/dqcheck/main.go or a similar wiring layer):
//
//	import _ "dqcheck/internal/storage/all" // enable all built-in backends
//
//	repo, err := storage.New(ctx, storage.Config{
//	    Kind:   suite.Storage.Kind,
//	    Driver: suite.Storage.DB.Driver,
//	    DSN:    suite.Storage.DB.DSN,
//	    Table:  suite.Storage.DB.Table,
//	})
//
// If a binary only needs a subset of backends, import the specific backend
// packages instead of this one.
package all

import (
	_ "dqcheck/internal/storage/postgres"
	_ "dqcheck/internal/storage/sqldb"
)
