package builtin

// Canonical maps known aliases to a canonical display value. Lookups are made
// on the lower-cased, cleaned input.
type Canonical map[string]string

// Lookup returns the canonical value for s and whether s was a known alias.
func (c Canonical) Lookup(s string) (string, bool) {
	v, ok := c[Lower(s)]
	return v, ok
}

// Or returns the canonical value for s, or fallback(s) when s is not a known
// alias.
func (c Canonical) Or(s string, fallback func(string) string) string {
	if v, ok := c.Lookup(s); ok {
		return v
	}
	return fallback(s)
}

// CategoryAliases canonicalizes product categories.
var CategoryAliases = Canonical{
	"toy":     "Toys",
	"toys":    "Toys",
	"gadgets": "Gadgets",
	"makeup":  "Make up",
	"bag":     "Bags",
}

// GenderAliases canonicalizes gender codes.
var GenderAliases = Canonical{
	"male":   "M",
	"m":      "M",
	"female": "F",
	"f":      "F",
}
