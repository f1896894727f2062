package main

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"uasfleet/hangar/internal/db"
)

func main() {
	label := flag.String("label", "bot", "label describing the integration the key is for")
	flag.Parse()

	_ = godotenv.Load()

	conn, err := sql.Open("postgres", db.PostgresDSN())
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer conn.Close()

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		log.Fatalf("generate key: %v", err)
	}
	key := hex.EncodeToString(raw)

	var id string
	row := conn.QueryRow(
		`INSERT INTO api_keys (key, label, status) VALUES ($1, $2, true) RETURNING id`,
		key, *label,
	)
	if err := row.Scan(&id); err != nil {
		log.Fatalf("insert api key: %v", err)
	}

	fmt.Println("New API Key:", key)
	fmt.Println("Key ID:", id)
}
