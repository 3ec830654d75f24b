package models

import "regexp"

var (
	recipeNameRe = regexp.MustCompile(`\p{L}`)
	usernameRe   = regexp.MustCompile(`^[\w.@+-]+$`)
	tagColorRe   = regexp.MustCompile(`^#[A-Fa-f0-9]{6}$`)
	tagSlugRe    = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// ValidRecipeName reports whether the name contains at least one letter
// (any script). Names made up purely of digits or punctuation are rejected.
func ValidRecipeName(name string) bool {
	return recipeNameRe.MatchString(name)
}

// ValidUsername reports whether the username contains only word characters
// and the symbols ". @ + -".
func ValidUsername(username string) bool {
	return usernameRe.MatchString(username)
}

// ValidTagColor reports whether the color is a six-digit hex code like "#1a2B3c".
func ValidTagColor(color string) bool {
	return tagColorRe.MatchString(color)
}

// ValidTagSlug reports whether the slug contains only letters, digits,
// hyphens and underscores.
func ValidTagSlug(slug string) bool {
	return tagSlugRe.MatchString(slug)
}
