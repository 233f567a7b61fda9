// Package session implements the user actions of the translator front end.
//
// # Actions
//
//   - Translate: SQL -> translator -> extracted call expression, cached as
//     canonical text ("MongoDB Query: db.<c>.find(...)") in the last-query slot.
//   - Execute: ping the store, load the slot, parse the canonical text,
//     normalize, find. Results are returned in store order.
//   - Run: Translate then Execute.
//   - FindText: execute a call expression typed directly.
//   - Clear, CheckConnection, Last.
//
// Every failure is an *mql.Error whose Kind names the stage that failed;
// nothing panics past an action. A missing call expression in translator
// output is a warning carried on the Translation, not an error.
package session
