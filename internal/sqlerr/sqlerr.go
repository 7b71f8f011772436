// Package sqlerr translates PostgreSQL driver errors into API errors.
//
// Raw *pgconn.PgError values carry a SQLSTATE; this package maps them into a
// small Code enum and from there into errs.HTTPError values, so a foreign
// key violation reaches the client as a 404 and a check violation as a 400
// instead of a bare 500.
package sqlerr
