// Command seat-admin inspects and maintains the persisted seat map:
//
//	seat-admin migrate [-down]
//	seat-admin dump [-sector loge-3]
//	seat-admin reset -yes
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"ms-seating/internal/catalog"
	"ms-seating/internal/config"
	"ms-seating/internal/database/migrations"
	"ms-seating/internal/logger"
	"ms-seating/internal/models"
	seatdb "ms-seating/internal/seats/db"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: seat-admin <migrate|dump|reset> [flags]")
	os.Exit(2)
}

func open(cfg config.DatabaseConfig) (*bun.DB, error) {
	if cfg.Driver == "sqlite" {
		sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	}
	sqldb, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := sqldb.Ping(); err != nil {
		return nil, err
	}
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.NewWriterLogger(os.Stderr)
	log.SetLevel(cfg.Log.Level)

	bunDB, err := open(cfg.Database)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("connect: %v", err))
	}
	defer bunDB.Close()
	seatDB := &seatdb.DB{Bun: bunDB}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "migrate":
		fs := flag.NewFlagSet("migrate", flag.ExitOnError)
		down := fs.Bool("down", false, "roll back every migration")
		dir := fs.String("dir", cfg.Migrations.Dir, "migrations directory")
		_ = fs.Parse(args)
		err = migrate(ctx, cfg, bunDB, seatDB, log, *dir, *down)
	case "dump":
		fs := flag.NewFlagSet("dump", flag.ExitOnError)
		sector := fs.String("sector", "", "only draw this sector")
		_ = fs.Parse(args)
		err = dump(ctx, seatDB, *sector)
	case "reset":
		fs := flag.NewFlagSet("reset", flag.ExitOnError)
		yes := fs.Bool("yes", false, "confirm freeing every seat")
		_ = fs.Parse(args)
		if !*yes {
			log.Fatal("RESET", "refusing to free every seat without -yes")
		}
		err = seatDB.RemoveAll(ctx)
		if err == nil {
			log.LogDatabase("RESET", "seat_reservations", "every seat freed")
		}
	default:
		usage()
	}
	if err != nil {
		log.Fatal("ADMIN", err.Error())
	}
}

func migrate(ctx context.Context, cfg *config.Config, bunDB *bun.DB, seatDB *seatdb.DB, log *logger.Logger, dir string, down bool) error {
	if cfg.Database.Driver == "sqlite" {
		if down {
			_, err := bunDB.NewDropTable().Model((*models.SeatReservation)(nil)).IfExists().Exec(ctx)
			return err
		}
		return seatDB.CreateSchema(ctx)
	}

	runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{MigrationsDir: dir}, log)
	defer runner.Close()
	if down {
		return runner.MigrateDown()
	}
	return runner.RunMigrations()
}

func dump(ctx context.Context, seatDB *seatdb.DB, sectorID string) error {
	venue := catalog.Default()
	if sectorID != "" {
		if _, ok := venue.Sector(sectorID); !ok {
			return fmt.Errorf("unknown sector %q", sectorID)
		}
	}
	entries, err := seatDB.LoadAll(ctx)
	if err != nil {
		return err
	}
	fmt.Print(renderDump(venue, entries, sectorID))
	return nil
}
