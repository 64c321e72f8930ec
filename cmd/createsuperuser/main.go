// Command createsuperuser adds an administrator account to an already migrated database.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"portal-united/directory/internal/config"
	"portal-united/directory/internal/constants"
)

const insertSuperuser = `
INSERT INTO users (username, email, password_hash, first_name, user_type, is_active, is_staff, is_superuser, date_joined)
VALUES ($1, $2, $3, $4, $5, true, true, true, NOW())
RETURNING id
`

const insertProfile = `
INSERT INTO person_profiles (user_id, first_name, created_at, updated_at)
VALUES ($1, $2, NOW(), NOW())
`

func main() {
	username := flag.String("username", "", "username of the new superuser")
	email := flag.String("email", "", "e-mail address")
	password := flag.String("password", os.Getenv("SUPERUSER_PASSWORD"), "password (defaults to $SUPERUSER_PASSWORD)")
	flag.Parse()

	if *username == "" || *email == "" || len(*password) < 8 {
		flag.Usage()
		log.Fatal("username, email and a password of at least 8 characters are required")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	tx, err := db.Beginx()
	if err != nil {
		log.Fatalf("begin: %v", err)
	}

	var id int64
	err = tx.QueryRowx(insertSuperuser, *username, strings.ToLower(*email), string(hash), *username, string(constants.UserTypePerson)).Scan(&id)
	if err != nil {
		_ = tx.Rollback()
		log.Fatalf("insert superuser: %v", err)
	}
	if _, err := tx.Exec(insertProfile, id, *username); err != nil {
		_ = tx.Rollback()
		log.Fatalf("insert profile: %v", err)
	}
	if err := tx.Commit(); err != nil {
		log.Fatalf("commit: %v", err)
	}

	fmt.Println("Superuser created:", *username, "id", id)
}
