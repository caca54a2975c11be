// Package all wires all built-in warehouse backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete backend to run, which in
// turn register their factories and DDL renderers with the storage package.
//
// Importing this package makes the following storage kinds available:
//
//   - "postgres" (salesdw/internal/storage/postgres)
//   - "mysql"    (salesdw/internal/storage/mysql)
//   - "mssql"    (salesdw/internal/storage/mssql)
//   - "sqlite"   (salesdw/internal/storage/sqlite)
//
// Typical usage (in cmd/salesdw or a similar wiring layer):
//
//	import _ "salesdw/internal/storage/all"
//
//	wh, err := storage.New(ctx, storage.Config{Kind: cfg.Warehouse.Kind, DSN: cfg.Warehouse.DSN})
//	if err != nil {
//	    // handle error
//	}
//	defer wh.Close()
//
// A binary that supports only a subset of backends can import the backend
// packages it needs instead of this one.
package all

import (
	_ "salesdw/internal/storage/mssql"
	_ "salesdw/internal/storage/mysql"
	_ "salesdw/internal/storage/postgres"
	_ "salesdw/internal/storage/sqlite"
)
