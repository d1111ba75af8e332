package repository

import (
	"database/sql"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

func GenerateRandomNumber() int {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	return rng.Intn(900000000) + 100000000
}

// GenerateOrderNumber builds a human-readable document number like
// "OC-AB12345". The prefix identifies the document type (OC purchase
// order, SC quote request).
func GenerateOrderNumber(prefix string) string {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	letters := "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	code := string(letters[rng.Intn(len(letters))]) + string(letters[rng.Intn(len(letters))])
	number := rng.Intn(90000) + 10000

	return fmt.Sprintf("%s-%s%d", strings.ToUpper(prefix), code, number)
}

// FetchSupplierName resolves a supplier's display name. Used to refresh
// the denormalized supplier_name carried by quote entries whenever the
// supplier id changes.
func FetchSupplierName(db *sql.DB, supplierID int) (string, error) {
	var name string
	err := db.QueryRow(`SELECT name FROM supplier WHERE id = $1`, supplierID).Scan(&name)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("supplier %d not found", supplierID)
		}
		return "", fmt.Errorf("failed to fetch supplier name: %w", err)
	}
	return name, nil
}

// FetchMaterialName resolves a material's display name for snapshot
// items and document lines.
func FetchMaterialName(db *sql.DB, materialID int) (string, error) {
	var name string
	err := db.QueryRow(`SELECT name FROM material WHERE id = $1`, materialID).Scan(&name)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("material %d not found", materialID)
		}
		return "", fmt.Errorf("failed to fetch material name: %w", err)
	}
	return name, nil
}
