// Package pattern holds the regular-expression rule tables used to classify
// user prompts and AI responses.
//
// A rule table is plain data: each Rule pairs a case-insensitive,
// word-boundary aware expression with the category it signals and a human
// readable message. A Matcher compiles a table once and folds over it in
// order, so the first rule listed wins when callers only need one answer.
//
// Text is normalized before matching (Unicode decomposition, combining marks
// removed, lower cased) so that "Salmonélla" and "SALMONELLA" hit the same
// rule. Digits and symbols are left alone; temperatures such as "350°F" must
// survive normalization intact.
//
// Extra rules can be appended from YAML with LoadRules or ParseRules.
package pattern
