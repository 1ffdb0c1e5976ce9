package taskmanager

// Blank-import every storage engine so storage.Open can resolve any
// supported DSN scheme without callers needing to import the adapter
// packages themselves.
import (
	_ "github.com/nextlevelbuilder/taskcore/storage/mysql"
	_ "github.com/nextlevelbuilder/taskcore/storage/postgres"
	_ "github.com/nextlevelbuilder/taskcore/storage/sqlite"
)
