// Package session holds the small interactive flows that mutate one record at a
// time (adding a definition, editing a record) and the quiz runner.
//
// Each flow is a state machine that can be driven directly with Handle-style
// calls, which is what the tests do, or run against a Prompter.
package session
