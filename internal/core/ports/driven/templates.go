package driven

// TemplateSource supplies reply templates keyed by template set name,
// e.g. "greeting" or "food_recommendation".
type TemplateSource interface {
	// LoadTemplates returns the template sets. Sets missing from the
	// result keep their built-in defaults.
	LoadTemplates() (map[string][]string, error)
}
