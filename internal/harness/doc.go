// Package harness runs conformance scenarios against the translate and
// execute actions.
//
// Each scenario gets a fresh in-memory document store seeded from its
// fixtures, a translator that answers from a table of canned responses,
// sequential ids and a fixed clock, so the trace of a scenario is
// reproducible byte for byte.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: filter_by_age
//	description: "Translate a range filter and execute it"
//	fixtures:
//	  students:
//	    - {name: Alice, age: 22}
//	    - {name: Bob, age: 19}
//	translator:
//	  - sql: SELECT name FROM students WHERE age > 20
//	    stdout: |
//	      Parsed OK
//	      db.students.find({'age': {'$gt': 20}}, {'name': 1})
//	flow:
//	  - action: translate
//	    sql: SELECT name FROM students WHERE age > 20
//	    expect:
//	      outcome: ok
//	  - action: execute
//	    expect:
//	      outcome: ok
//	      count: 1
//	assertions:
//	  - type: trace_order
//	    actions: [translate, execute]
//	  - type: last_query
//	    text: "MongoDB Query: db.students.find({'age': {'$gt': 20}}, {'name': 1})"
//
// fixtures may instead name a fixture file relative to the scenario file.
// Actions are translate, execute, run, find, clear and ping. Outcomes are
// "ok" or an error kind such as STORE_UNAVAILABLE. Setting store_down
// makes every liveness probe fail.
//
// # Assertions
//
//   - trace_contains: a step with the action (and outcome, if given) exists
//   - trace_order: the actions occur in the given order
//   - trace_count: the action occurs exactly count times
//   - last_query: the slot holds text, or is empty
//
// # Golden Files
//
// RunWithGolden compares a scenario's Transcript with
// testdata/golden/<name>.golden.
package harness
