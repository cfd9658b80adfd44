package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArowuTest/aidhub-backend/internal/config"
	mongorepo "github.com/ArowuTest/aidhub-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/aidhub-backend/internal/utils"
	"github.com/ArowuTest/aidhub-backend/pkg/logger"
	"github.com/ArowuTest/aidhub-backend/pkg/mongodb"
	"github.com/sirupsen/logrus"
)

// import_beneficiaries loads a CSV export of beneficiaries into MongoDB
func main() {
	if len(os.Args) < 2 {
		logrus.Fatal("usage: import_beneficiaries <file.csv>")
	}
	csvFilePath := os.Args[1]

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		logrus.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	client, err := mongodb.NewClient(connectCtx, cfg.MongoDB.URI)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDB.Database)
	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		log.WithError(err).Fatal("Failed to create indexes")
	}

	file, err := os.Open(csvFilePath)
	if err != nil {
		log.WithError(err).Fatal("Failed to open CSV file")
	}
	defer file.Close()

	importer := utils.NewCSVImporter(mongorepo.NewBeneficiaryRepository(db), log)
	result, err := importer.ImportBeneficiaries(ctx, file, config.GetEnv("IMPORTED_BY", "csv-import"))
	if err != nil {
		log.WithError(err).Fatal("Failed to import data")
	}

	for _, msg := range result.Errors {
		log.Warn(msg)
	}
	log.WithFields(logrus.Fields{
		"file":    csvFilePath,
		"rows":    result.TotalRows,
		"created": result.Created,
		"updated": result.Updated,
		"failed":  len(result.Errors),
	}).Info("Data imported")
}
