package entity

// KnowledgeEntry is a curated guidance snippet. Entries come from a static
// dataset and are never mutated at runtime.
type KnowledgeEntry struct {
	Id       string
	Locale   string
	Title    string
	Summary  string
	Guidance []string
	Keywords []string
	Tags     []string
	Source   string
}

// Document flattens the entry into the text that gets embedded.
func (e KnowledgeEntry) Document() string {
	doc := e.Title + "\n" + e.Summary
	for _, g := range e.Guidance {
		doc += "\n" + g
	}
	for _, k := range e.Keywords {
		doc += " " + k
	}
	for _, t := range e.Tags {
		doc += " " + t
	}
	return doc
}
