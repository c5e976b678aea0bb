// Package importer turns the free-form glossary text a user maintains by hand
// into domain records.
//
// The format is line oriented. The first line is a header. A keyword line looks
// like
//
//	keyword`first meaning|second meaning
//
// and a line without a backtick continues the previous keyword:
//
//	third meaning|fourth meaning
//
// Repeating a keyword later in the file replaces the earlier record.
package importer
