// Package service contains the application service behind the glossary CLI.
//
// GlossaryService owns the single record store of the process together with
// its search history, the file repository and the random source. It opens a
// glossary from its cache or from the raw import file, answers searches, applies
// adds, edits and deletes, builds quizzes, and saves everything back.
//
// Every method takes a context first and checks it before touching files. The
// service is not safe for concurrent use.
package service
