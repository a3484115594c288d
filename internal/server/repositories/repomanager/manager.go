package repomanager

import (
	"context"
	"database/sql"

	"github.com/sara-git-hub/diabcare/internal/dbx"
	"github.com/sara-git-hub/diabcare/internal/server/repositories/patients"
	"github.com/sara-git-hub/diabcare/internal/server/repositories/sessions"
	"github.com/sara-git-hub/diabcare/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Patients(db dbx.DBTX) patients.Repository
}
