package main

import (
	"github.com/wfunc/yamb/config"
	"github.com/wfunc/yamb/logger"
	"github.com/wfunc/yamb/persistence"
	"github.com/wfunc/yamb/server"
	"github.com/wfunc/yamb/services"
)

func main() {
	logger.Init()
	defer logger.Sync()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// The relay runs without a database; scores then live only in memory.
	var db persistence.Database
	if cfg.Database.Enabled {
		gormDB, err := persistence.NewGormPostgreSQL(
			cfg.Database.Postgres.Host,
			cfg.Database.Postgres.Port,
			cfg.Database.Postgres.User,
			cfg.Database.Postgres.Password,
			cfg.Database.Postgres.DBName,
		)
		if err != nil {
			logger.Log.Warnf("Database unavailable, continuing without persistence: %v", err)
		} else {
			logger.Log.Info("Database connection successful.")
			db = gormDB
			defer gormDB.Close()
		}
	}

	leaderboard, err := services.NewLeaderboardService(db, cfg.Game.LeaderboardSize)
	if err != nil {
		logger.Log.Fatalf("Failed to load leaderboard: %v", err)
	}

	gameServer := server.NewGameServer(cfg, leaderboard)

	logger.Log.Infof("Starting Yamb relay on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
