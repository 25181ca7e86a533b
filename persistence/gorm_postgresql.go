package persistence

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/yamb/models"
)

// GormPostgreSQL stores scores through GORM.
type GormPostgreSQL struct {
	db *gorm.DB
}

func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.GormHighscore{}, &models.GormMatchRecord{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func (p *GormPostgreSQL) SaveScore(name string, score int) error {
	return p.db.Create(&models.GormHighscore{Name: name, Score: score}).Error
}

func (p *GormPostgreSQL) TopScores(limit int) ([]models.ScoreEntry, error) {
	var rows []models.GormHighscore
	if err := p.db.Order("score DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]models.ScoreEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, models.ScoreEntry{Name: row.Name, Score: row.Score})
	}
	return entries, nil
}

func (p *GormPostgreSQL) SaveMatchRecord(record models.MatchRecord) error {
	// Round-trip through JSON to fit the jsonb column.
	data, err := json.Marshal(record.Players)
	if err != nil {
		return err
	}

	var players []interface{}
	if err := json.Unmarshal(data, &players); err != nil {
		return err
	}

	row := models.GormMatchRecord{
		RoomID:  record.RoomID,
		Players: map[string]interface{}{"players": players},
	}
	return p.db.Create(&row).Error
}

func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
