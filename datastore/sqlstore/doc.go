/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package sqlstore implements datastore.DataStore[T] on database/sql.
//
// Each store maps one table, with one column per schema field. FindBy issues
// a single SELECT ... LIMIT 1 with one equality predicate per filter entry;
// Persist issues an INSERT and reads the generated key back through
// LastInsertId when the record has no identity yet. Column and table names
// are checked against a plain identifier pattern before they reach SQL.
//
// The handle may be a *sql.DB or a *sql.Tx.
package sqlstore
