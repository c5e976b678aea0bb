// Package domain contains the core business entities, value objects, and
// domain logic of the application: glossary records, search history entries
// and the error taxonomy shared by every other package. It is independent of
// any specific storage format or delivery mechanism.
package domain
