// Package journal keeps a SQLite log of migration runs.
//
// A Journal is a migrate.Observer: passed to the engine with
// migrate.WithObserver it stores one row per attempted step. RecordRun
// adds a summary row per run.
//
//	j, err := journal.Open(ctx, "migrations.db")
//	if err != nil {
//	    return err
//	}
//	defer j.Close()
//
//	eng := migrate.New(migrate.WithObserver(j))
//	rep, err := eng.Run(ctx, rec)
//	_ = j.RecordRun(ctx, rep, err)
package journal
