// Package csvfile persists a glossary as plain text files on an afero
// filesystem.
//
// A glossary imported from "terms.txt" is cached as "terms.csv":
//
//	Keyword,Definition
//	cat,small pet|meows|
//
// and its search history is kept in "terms.hist.csv":
//
//	Code,Term
//	0,cat
//	1,pet
//
// Code 0 is a keyword search and code 1 a definition search. Commas and pipes
// are not escaped.
package csvfile
