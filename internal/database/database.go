package database

import (
	"fmt"

	"github.com/RaysoLee/mindreshape/internal/config"
	logging "github.com/RaysoLee/mindreshape/internal/logging"
	"github.com/RaysoLee/mindreshape/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Init(log *zap.Logger) {
	var err error
	dbConf := config.Conf.Database
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		dbConf.Host, dbConf.User, dbConf.Password, dbConf.DBName, dbConf.Port)

	gormLogger := logging.NewGormZapLogger(log)
	gormLogger.LogLevel = logger.Warn

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	log.Info("Database connection established successfully.")
	runMigrations(log)
}

// Migrate runs AutoMigrate against an arbitrary database handle. Tests
// use it with an in-memory SQLite database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserStats{},
		&models.Assessment{},
		&models.Question{},
		&models.QuestionOption{},
		&models.AssessmentSession{},
		&models.Answer{},
		&models.AssessmentResult{},
		&models.Conversation{},
		&models.Message{},
		&models.PracticeLog{},
		&models.Task{},
		&models.UserTask{},
	)
}

func runMigrations(log *zap.Logger) {
	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}
	log.Info("Database migrations completed successfully.")

	// AutoMigrate creates the unique indexes from the model tags; the
	// transcript read path additionally wants a composite ordering index.
	messagesIndex := `CREATE INDEX IF NOT EXISTS idx_messages_conversation_created ON messages (conversation_id, created_at);`
	if err := DB.Exec(messagesIndex).Error; err != nil {
		log.Fatal("Failed to create custom index on messages table", zap.Error(err))
	}
	log.Info("Custom indexes ensured successfully.")
}
