package database

// Tx is the transaction handle the repositories hand to the services: the
// repository opens it, the service that opened it commits or rolls back.
// *sql.Tx satisfies it; tests substitute an in-memory fake. Sharing one
// definition lets a store run reads on a transaction another store opened.
type Tx interface {
	Commit() error
	Rollback() error
}
