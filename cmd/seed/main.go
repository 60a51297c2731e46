package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/liljarn/gandalf/config"
	"github.com/liljarn/gandalf/internal/domain/entity"
	"github.com/liljarn/gandalf/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	dsn := cfg.PostgresDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "gandalf@middle.earth"
	password := "password123"
	salt, err := helpers.GenerateSalt()
	if err != nil {
		log.Fatalf("failed to generate salt: %v", err)
	}
	hash := helpers.Encrypt(password, salt)
	birthDate, _ := time.Parse(entity.BirthDateLayout, "1990-01-01")

	id := uuid.New()
	err = db.QueryRow(`
		INSERT INTO user_data (uuid, email, password, salt, first_name, last_name, birth_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (email) DO UPDATE SET first_name = EXCLUDED.first_name
		RETURNING uuid
	`, id, email, hash, salt, "Demo", "User", birthDate).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed profile: %v", err)
	}
	fmt.Printf("seeded profile: uuid=%s email=%s password=%s\n", id, email, password)
}
