package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/janekbaraniewski/wfdash/internal/core"
	"github.com/samber/lo"
)

// sqliteDSN carries the pragmas in the DSN so mattn applies them to every
// pooled connection, not only the first one. Saves take the write lock at
// BEGIN, so a reader never upgrades into a deadlock with a save.
func sqliteDSN(path string) string {
	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_synchronous", "NORMAL")
	params.Set("_busy_timeout", "5000")
	params.Set("_txlock", "immediate")
	return path + "?" + params.Encode()
}

func configurePool(db *sql.DB) {
	// Readers keep their own connections so a save transaction never blocks a load.
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
}

// verifyColumns checks that an existing contributions table carries every
// canonical column. Tables written by older tools without an id column are
// reported instead of being half-read.
func verifyColumns(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, `PRAGMA table_info(beitraege)`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var have []string
	for rows.Next() {
		var (
			cid        int
			name, kind string
			notNull    int
			dflt       sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &kind, &notNull, &dflt, &pk); err != nil {
			return err
		}
		have = append(have, strings.ToLower(name))
	}
	if err := rows.Err(); err != nil {
		return err
	}

	missing := lo.Filter(core.CanonicalFields, func(field string, _ int) bool {
		return !lo.Contains(have, strings.ToLower(field))
	})
	if len(missing) > 0 {
		return fmt.Errorf("table beitraege lacks columns %s", strings.Join(missing, ", "))
	}
	return nil
}
