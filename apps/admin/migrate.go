package main

import (
	"database/sql"
	"io/fs"

	"github.com/pkg/errors"
	"github.com/trezcool/goose"

	"github.com/trezcool/formazione/storage/database"
)

// mockable
var gooseFuncs = map[string]func(db *sql.DB, fsys fs.FS, dir string) error{
	"up":        goose.Up,
	"up-by-one": goose.UpByOne,
	"down":      goose.Down,
	"redo":      goose.Redo,
}

func (cli *commandLine) migrate(command string) error {
	fn, ok := gooseFuncs[command]
	if !ok {
		return errors.Errorf("%q: no such command", command)
	}
	return fn(cli.db, database.MigrationsFS, database.MigrationsDir)
}
