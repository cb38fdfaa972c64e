package qual

// Accepts reports whether a value qualified provided may flow where required is
// expected (assignment, argument passing, return).
func Accepts(required, provided Qualifier) bool {
	return IsSubtype(provided, required)
}
