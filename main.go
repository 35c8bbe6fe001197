package main

import (
	"context"

	"github.com/RaysoLee/mindreshape/internal/config"
	"github.com/RaysoLee/mindreshape/internal/database"
	"github.com/RaysoLee/mindreshape/internal/llm"
	logger "github.com/RaysoLee/mindreshape/internal/logging"
	"github.com/RaysoLee/mindreshape/internal/router"
	"github.com/RaysoLee/mindreshape/internal/services"

	"go.uber.org/zap"
)

func main() {
	// Bootstrap logger so config loading has somewhere to report.
	log, err := logger.Init(logger.Options{})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	if err := config.Init(".", log); err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Rebuild the logger with the configured rotation settings.
	logConf := config.Conf.Logging
	log, err = logger.Init(logger.Options{
		Directory:  logConf.Directory,
		MaxSize:    logConf.MaxSize,
		MaxBackups: logConf.MaxBackups,
		MaxAge:     logConf.MaxAge,
		Compress:   logConf.Compress,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	database.Init(log)

	// Load the assessment and task catalogs on first start.
	seedConf := config.Conf.Seed
	if err := services.SeedCatalogs(context.Background(), log, seedConf.AssessmentsFile, seedConf.TasksFile); err != nil {
		log.Fatal("Failed to seed catalogs", zap.Error(err))
	}

	provider, err := llm.NewProvider(config.Conf.LLM)
	if err != nil {
		log.Fatal("Failed to configure LLM provider", zap.Error(err))
	}

	quiz := services.NewQuizService(log)
	chat := services.NewChatService(log, provider, config.Conf.LLM.MaxTokens, config.Conf.LLM.Timeout)

	r := router.Setup(log, quiz, chat)

	port := ":" + config.Conf.Server.Port
	log.Info("Server listening on http://localhost" + port)
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}
