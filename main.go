package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/mailfleet/mailfleet/config"
	"github.com/mailfleet/mailfleet/internal/database"
	"github.com/mailfleet/mailfleet/internal/repository"
	"github.com/mailfleet/mailfleet/server"
)

func main() {
	app := &cli.App{
		Name:  "mailfleet",
		Usage: "multi-company outbound email dispatch service",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "start the application server",
				Action: runServer,
			},
			{
				Name:   "migrate",
				Usage:  "run database migrations",
				Action: runMigrations,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func connect(cfg *config.Config) (*gorm.DB, error) {
	return database.NewConnection(&database.DatabaseConfig{
		Host:            cfg.DatabaseConfig.Host,
		Port:            cfg.DatabaseConfig.Port,
		User:            cfg.DatabaseConfig.User,
		DBName:          cfg.DatabaseConfig.DBName,
		Password:        cfg.DatabaseConfig.Password,
		MaxConn:         cfg.DatabaseConfig.MaxConn,
		MaxIdleConn:     cfg.DatabaseConfig.MaxIdleConn,
		ConnMaxLifetime: cfg.DatabaseConfig.ConnMaxLifetime,
		LogLevel:        cfg.DatabaseConfig.LogLevel,
		SSLMode:         cfg.DatabaseConfig.SSLMode,
	})
}

func runServer(c *cli.Context) error {
	cfg, err := config.InitConfig()
	if err != nil {
		return err
	}

	db, err := connect(cfg)
	if err != nil {
		return err
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("MailFleet starting up...")

	srv, err := server.NewServer(cfg, db)
	if err != nil {
		return err
	}
	if err := srv.Run(); err != nil {
		return err
	}

	log.Println("Shutdown complete")
	return nil
}

func runMigrations(c *cli.Context) error {
	cfg, err := config.InitConfig()
	if err != nil {
		return err
	}

	db, err := connect(cfg)
	if err != nil {
		return err
	}

	if err := repository.MigrateDB(db); err != nil {
		return err
	}
	log.Println("Database migration completed successfully")
	return nil
}
