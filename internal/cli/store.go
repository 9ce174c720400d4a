package cli

import (
	"fmt"

	"github.com/evalgate/evalgate/internal/config"
	"github.com/evalgate/evalgate/internal/ledger"
	"github.com/evalgate/evalgate/internal/ledger/pgstore"
	"github.com/evalgate/evalgate/internal/ledger/sqlstore"
)

// openStore connects to the configured ledger database and applies
// pending migrations. The returned func closes the connection.
func openStore(cfg config.Config) (ledger.Store, func() error, error) {
	switch cfg.DB.Driver {
	case "sqlite":
		s, err := sqlstore.OpenSQLite(cfg.DB.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := ledger.Migrate(s.DB(), ledger.DBSQLite); err != nil {
			_ = s.Close()
			return nil, nil, err
		}
		return s, s.Close, nil
	case "postgres":
		s, err := pgstore.OpenPostgres(cfg.DB.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := ledger.Migrate(s.DB(), ledger.DBPostgres); err != nil {
			_ = s.Close()
			return nil, nil, err
		}
		return s, s.Close, nil
	case "":
		return nil, nil, fmt.Errorf("no ledger database configured; set db.driver and db.dsn in %s", config.DefaultPath)
	default:
		return nil, nil, fmt.Errorf("unsupported db.driver %q", cfg.DB.Driver)
	}
}
