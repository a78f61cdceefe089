package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/charstudio/internal/dbx"
	"github.com/dmitrijs2005/charstudio/internal/server/repositories/characters"
)

// RepositoryManager vends repositories bound to a DBTX so that services can
// run them either directly on the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Characters(db dbx.DBTX) characters.Repository
}
