package main

import (
	"context"
	"flag"

	"adagency/internal/app/dsn"
	"adagency/internal/app/repository"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	seed := flag.Bool("seed", false, "заполнить каталог и создать сотрудников")
	flag.Parse()

	_ = godotenv.Load()

	dsnStr := dsn.FromEnv()
	if dsnStr == "" {
		logrus.Fatal("DSN string is empty. Check your .env file")
	}

	db, err := gorm.Open(postgres.Open(dsnStr), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	logrus.Info("Connected to database successfully")

	if err := repository.Migrate(db); err != nil {
		logrus.Fatal(err)
	}
	logrus.Info("Database migration completed successfully")

	if *seed {
		if err := seedData(context.Background(), repository.NewWithDB(db)); err != nil {
			logrus.Fatalf("Failed to seed database: %v", err)
		}
		logrus.Info("Demo data seeded")
	}
}
