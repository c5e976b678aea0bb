// Package quiz implements multiple-choice quiz generation over a glossary:
// sampling records by insertion id, building distractor options and scoring.
// All randomness comes from an injected Rand so results are reproducible.
package quiz
