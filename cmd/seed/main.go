// Command seed loads a demo catalog and an admin account into the database.
// Intended for local development only.
package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	var (
		dsn           = flag.String("dsn", "", "PostgreSQL DSN (defaults to DATABASE_URL)")
		adminEmail    = flag.String("admin-email", "admin@example.com", "admin account email")
		adminPassword = flag.String("admin-password", "admin123", "admin account password")
	)
	flag.Parse()

	connStr := *dsn
	if connStr == "" {
		connStr = os.Getenv("DATABASE_URL")
	}
	if connStr == "" {
		connStr = "host=localhost port=5432 user=postgres password=postgres dbname=recaatinga_db sslmode=disable"
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	if err := seedAdmin(db, *adminEmail, *adminPassword); err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}
	if err := seedDemoGame(db); err != nil {
		log.Fatalf("Failed to seed demo game: %v", err)
	}

	fmt.Println("Seed complete")
}

func seedAdmin(db *sql.DB, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	res, err := db.Exec(`
		INSERT INTO users (name, email, password, role, achievements)
		VALUES ('Administrator', $1, $2, 'admin', '[]')
		ON CONFLICT (email) DO NOTHING`,
		email, string(hash))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		log.Printf("admin %s already exists, skipping", email)
	} else {
		log.Printf("admin %s created", email)
	}
	return nil
}

func seedDemoGame(db *sql.DB) error {
	const slug = "caatinga-basics"

	var exists bool
	if err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM games WHERE slug = $1)`, slug).Scan(&exists); err != nil {
		return err
	}
	if exists {
		log.Printf("game %s already exists, skipping", slug)
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var gameID int64
	err = tx.QueryRow(`
		INSERT INTO games (title, slug, description, game_type)
		VALUES ('Caatinga Basics', $1, 'Introduction to the Caatinga biome', 'quiz')
		RETURNING id`, slug).Scan(&gameID)
	if err != nil {
		return err
	}

	levels := []struct {
		number   int
		title    string
		videoURL string
		minScore int
	}{
		{1, "What is the Caatinga?", "https://videos.example.com/caatinga/intro.mp4", 20},
		{2, "Flora of the Caatinga", "https://videos.example.com/caatinga/flora.mp4", 20},
	}

	questions := [][]struct {
		text    string
		options [4]string
		correct int
	}{
		{
			{"The Caatinga is found in which region of Brazil?",
				[4]string{"South", "Northeast", "North", "Midwest"}, 1},
			{"The Caatinga climate is best described as:",
				[4]string{"Tropical humid", "Semi-arid", "Subtropical", "Equatorial"}, 1},
			{"Which of these is a typical Caatinga landscape feature?",
				[4]string{"Dense rainforest", "Mangroves", "Thorny shrubland", "Grassland plains"}, 2},
		},
		{
			{"Which plant is iconic in the Caatinga?",
				[4]string{"Mandacaru cactus", "Rubber tree", "Araucaria", "Mangrove"}, 0},
			{"Many Caatinga plants shed their leaves to:",
				[4]string{"Attract pollinators", "Reduce water loss", "Grow faster", "Avoid predators"}, 1},
			{"The word Caatinga comes from Tupi and means:",
				[4]string{"Dry land", "White forest", "Thorn field", "Hot plain"}, 1},
		},
	}

	for i, lvl := range levels {
		var levelID int64
		err = tx.QueryRow(`
			INSERT INTO levels (game_id, level_number, title, video_url, min_score)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			gameID, lvl.number, lvl.title, lvl.videoURL, lvl.minScore).Scan(&levelID)
		if err != nil {
			return err
		}

		for _, q := range questions[i] {
			optionsJSON, err := json.Marshal(q.options[:])
			if err != nil {
				return err
			}
			_, err = tx.Exec(`
				INSERT INTO questions (level_id, text, options, correct_option, points)
				VALUES ($1, $2, $3, $4, 10)`,
				levelID, q.text, optionsJSON, q.correct)
			if err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Printf("game %s created with %d levels", slug, len(levels))
	return nil
}
