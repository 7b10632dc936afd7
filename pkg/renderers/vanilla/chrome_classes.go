package vanilla

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassForm      ChromeClass = "cf-form"
	ClassHeader    ChromeClass = "cf-header"
	ClassSection   ChromeClass = "cf-section"
	ClassGrid      ChromeClass = "cf-grid"
	ClassField     ChromeClass = "cf-field"
	ClassFieldWide ChromeClass = "cf-field--wide"
	ClassInvalid   ChromeClass = "cf-field--missing"
	ClassReveal    ChromeClass = "cf-reveal"
	ClassMissing   ChromeClass = "cf-missing"
	ClassComplete  ChromeClass = "cf-complete"
	ClassNote      ChromeClass = "cf-note"
	ClassActions   ChromeClass = "cf-actions"
	ClassChart     ChromeClass = "cf-chart"
)

func chromeClasses() map[string]string {
	return map[string]string{
		"form":     string(ClassForm),
		"header":   string(ClassHeader),
		"section":  string(ClassSection),
		"grid":     string(ClassGrid),
		"missing":  string(ClassMissing),
		"complete": string(ClassComplete),
		"note":     string(ClassNote),
		"actions":  string(ClassActions),
	}
}
