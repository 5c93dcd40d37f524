package repository

import "fmt"

// NoteUnparameterized marks every Query built in this package. Values are
// interpolated into the statement text as-is, quotes included.
const NoteUnparameterized = "unparameterized, intentional"

// Query is a fully rendered SQL statement.
type Query struct {
	Text string
	Note string
}

func (q Query) String() string {
	return q.Text
}

// QueryObserver receives each Query right before it is executed.
type QueryObserver func(Query)

func newQuery(format string, args ...any) Query {
	return Query{
		Text: fmt.Sprintf(format, args...),
		Note: NoteUnparameterized,
	}
}

const (
	CreateUsersTable = `CREATE TABLE IF NOT EXISTS users (
	username TEXT PRIMARY KEY,
	password TEXT,
	profile TEXT
)`
	DropUsersTable = `DROP TABLE IF EXISTS users`
)

func FindByCredentialsQuery(username, password string) Query {
	return newQuery(`SELECT count(*) FROM users WHERE username='%s' AND password='%s'`, username, password)
}

func FindByUsernameQuery(username string) Query {
	return newQuery(`SELECT username, password, profile FROM users WHERE username='%s'`, username)
}

func CountByUsernameQuery(username string) Query {
	return newQuery(`SELECT count(*) FROM users WHERE username='%s'`, username)
}

func InsertQuery(username, password, profile string) Query {
	return newQuery(`INSERT INTO users (username, password, profile) VALUES ('%s', '%s', '%s')`, username, password, profile)
}

func UpdateQuery(username, password, profile string) Query {
	return newQuery(`UPDATE users SET password='%s', profile='%s' WHERE username='%s'`, password, profile, username)
}
