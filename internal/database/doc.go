// Copyright (c) Elyx Authors.
// Licensed under the MIT License.

/*
Package database opens GORM connections for the SQL transcript store.

Dialector maps the configured driver (postgres, mysql, sqlite) to a GORM
dialector; sqlite uses the pure-Go glebarez driver so no cgo toolchain is
needed. Open applies pool limits from config.DatabaseConfig and pings once
before returning.
*/
package database
