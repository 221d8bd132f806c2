package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // register postgres dialect
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/openshelf/circulation-engine-go/circulation"
)

// Library is the population a demo run works against. Every run seeds a fresh
// cohort of members and books; rows from earlier runs stay in place.
type Library struct {
	MemberIDs []uuid.UUID
	BookIDs   []uuid.UUID
	StaffIDs  []uuid.UUID
}

var membershipClasses = []circulation.MembershipClass{
	circulation.MembershipClassStudent,
	circulation.MembershipClassFaculty,
	circulation.MembershipClassPublic,
}

var firstNames = []string{
	"Ava", "Bruno", "Clara", "Daniel", "Edith", "Felix", "Greta", "Hugo",
	"Iris", "Jonas", "Klara", "Liam", "Mara", "Nils", "Olga", "Paul",
}

var lastNames = []string{
	"Abbott", "Berger", "Calloway", "Dietrich", "Eklund", "Fontaine", "Grau",
	"Hartmann", "Ibsen", "Jensen", "Keller", "Lindqvist", "Moreau",
}

var bookTitles = []string{
	"The Silent Archive", "Maps of a Vanished Coast", "A Field Guide to Rain",
	"The Clockmaker's Apprentice", "Letters from the North Station",
	"Gardens Under Glass", "The Last Ferry Out", "Notes on a Borrowed City",
	"The Cartographer's Daughter", "Winter in the Reading Room",
	"A Short History of Long Walks", "The Lighthouse Ledger",
	"Paper Boats and Other Essays", "The Orchard at the Edge of Town",
	"Salt Roads", "The Quiet Part of the River", "An Atlas of Small Islands",
	"The Borrower's Almanac",
}

var bookAuthors = []string{
	"Helena Voss", "Marcus Thorne", "Ingrid Dahl", "Tomas Reiner",
	"Beatriz Campos", "Elias Wendt", "Noor Haddad", "Sofia Meretti",
	"Arthur Blake", "Yuki Tanaka", "Camille Roux", "Peter Almqvist",
}

// seedLibrary inserts the member and book rows the driver will circulate.
// Staff are plain identifiers recorded on loans; they have no table.
func seedLibrary(ctx context.Context, pool *pgxpool.Pool, memberCount int, bookCount int) (Library, error) {
	library := Library{
		MemberIDs: make([]uuid.UUID, 0, memberCount),
		BookIDs:   make([]uuid.UUID, 0, bookCount),
		StaffIDs:  []uuid.UUID{uuid.New(), uuid.New(), uuid.New()},
	}

	memberRows := make([]any, 0, memberCount)

	for i := 0; i < memberCount; i++ {
		id := uuid.New()
		library.MemberIDs = append(library.MemberIDs, id)

		// A slice of the population is suspended, so issue attempts against
		// them exercise the eligibility rejections.
		status := circulation.MemberStatusActive
		if i%10 == 9 {
			status = circulation.MemberStatusSuspended
		}

		name := memberName(i)
		memberRows = append(memberRows, goqu.Record{
			"id":               id,
			"name":             name,
			"email":            memberEmail(name, i),
			"membership_class": membershipClasses[i%len(membershipClasses)],
			"status":           status,
		})
	}

	if err := execInsert(ctx, pool, "members", memberRows); err != nil {
		return Library{}, fmt.Errorf("seeding members: %w", err)
	}

	bookRows := make([]any, 0, bookCount)

	for i := 0; i < bookCount; i++ {
		id := uuid.New()
		library.BookIDs = append(library.BookIDs, id)

		copies := i%3 + 1
		bookRows = append(bookRows, goqu.Record{
			"id":                id,
			"title":             bookTitles[i%len(bookTitles)],
			"author":            bookAuthors[i%len(bookAuthors)],
			"isbn":              fmt.Sprintf("978-1-09%07d", i),
			"total_copies":      copies,
			"available_copies":  copies,
			"replacement_price": decimal.New(int64(1250+(i*137)%2800), -2),
		})
	}

	if err := execInsert(ctx, pool, "books", bookRows); err != nil {
		return Library{}, fmt.Errorf("seeding books: %w", err)
	}

	return library, nil
}

func memberName(i int) string {
	return firstNames[i%len(firstNames)] + " " + lastNames[i%len(lastNames)]
}

func memberEmail(name string, i int) string {
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "."))
	return fmt.Sprintf("%s.%d@example.org", slug, i)
}

func execInsert(ctx context.Context, pool *pgxpool.Pool, table string, rows []any) error {
	sqlQuery, _, err := goqu.Dialect("postgres").Insert(table).Rows(rows...).ToSQL()
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, sqlQuery)

	return err
}
