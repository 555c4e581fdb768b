package sqlite

import (
	"strings"

	"github.com/maloquacious/roster/internal/people"
)

// initialSchema holds version tracking and the people table.
// AUTOINCREMENT keeps ids from being reused after a delete.
const initialSchema = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS people (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    first_name TEXT NOT NULL CHECK (first_name <> ''),
    last_name TEXT NOT NULL CHECK (last_name <> ''),
    date_of_birth TEXT,
    address TEXT,
    zip TEXT CHECK (zip IS NULL OR (length(zip) = 5 AND zip NOT GLOB '*[^0-9]*')),
    criminal_history INTEGER CHECK (criminal_history IN (0, 1)),
    addiction_history INTEGER CHECK (addiction_history IN (0, 1)),
    addiction_current INTEGER CHECK (addiction_current IN (0, 1)),
    disability INTEGER CHECK (disability IN (0, 1)),
    mental_illness_history INTEGER CHECK (mental_illness_history IN (0, 1)),
    high_school_ed INTEGER CHECK (high_school_ed IN (0, 1)),
    work_history INTEGER CHECK (work_history IN (0, 1)),
    higher_ed INTEGER CHECK (higher_ed IN (0, 1)),
    veteran INTEGER CHECK (veteran IN (0, 1)),
    dependents INTEGER CHECK (dependents IN (0, 1))
);
`

var (
	columnList = strings.Join(people.Fields, ", ")

	insertPerson = `INSERT INTO people (` + columnList + `) VALUES (?` +
		strings.Repeat(", ?", len(people.Fields)-1) + `)`

	selectPeople = `SELECT id, ` + columnList + ` FROM people ORDER BY id`
)

// seed builds a sample record; flags follow people.IndicatorFields.
func seed(first, last, dob, address, zip string, flags ...bool) people.Record {
	rec := people.Record{
		FirstName:   first,
		LastName:    last,
		DateOfBirth: &dob,
		Address:     &address,
		ZIP:         &zip,
	}
	for i, t := range rec.Indicators() {
		*t = people.TristateOf(flags[i])
	}
	return rec
}

// seedPeople fills an empty table so the listing is never blank on first run.
var seedPeople = []people.Record{
	seed("Ada", "Lovelace", "1815-12-10", "12 St James's Square, London", "20500",
		false, false, false, false, false, true, true, true, false, true),
	seed("Alan", "Turing", "1912-06-23", "Kings Parade, Cambridge", "02142",
		false, false, false, false, true, true, true, true, true, false),
	seed("Grace", "Hopper", "1906-12-09", "11 Wall Street, New York", "10001",
		false, false, false, false, false, true, true, true, true, false),
}
