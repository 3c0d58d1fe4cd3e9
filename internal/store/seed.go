package store

import "fmt"

// demoUsers and friends give the catalog something to search out of the box.
// Bodies are JSON-ish attribute blobs the facet predicates match against.
var demoUsers = []struct {
	id, name, team string
	active         bool
}{
	{"1", "Alice Smith", "platform", true},
	{"2", "Albert Jones", "platform", true},
	{"3", "Alina Petrova", "design", true},
	{"4", "Bob Martin", "design", false},
	{"5", "Carol White", "sales", true},
	{"6", "Dmitri Ivanov", "platform", true},
	{"7", "Elena Garcia", "sales", false},
	{"8", "Frank Miller", "support", true},
	{"9", "Grace Chen", "support", true},
	{"10", "Alan Turing", "research", true},
	{"11", "Ada Lovelace", "research", true},
	{"12", "Haruki Tanaka", "design", true},
}

var demoProjects = []struct {
	id, name, status, owner string
}{
	{"p1", "Apollo Migration", "open", "1"},
	{"p2", "Billing Rewrite", "open", "5"},
	{"p3", "Search Relevance", "closed", "10"},
	{"p4", "Mobile Refresh", "open", "3"},
	{"p5", "Audit Trail", "closed", "8"},
	{"p6", "Alerting Pipeline", "open", "6"},
}

var demoTags = []string{
	"backend", "frontend", "urgent", "infra", "design", "research",
	"billing", "mobile", "security", "performance",
}

// SeedDemo populates the catalog with demo relations. Safe to call
// repeatedly: inserts are INSERT OR IGNORE. Returns the number of new rows.
func (s *Store) SeedDemo() (int, error) {
	var records []Record

	for _, u := range demoUsers {
		records = append(records, Record{
			Relation: "users",
			ID:       u.id,
			Label:    u.name,
			Body: fmt.Sprintf(`{"name":%q,"team":%q,"active":%q}`,
				u.name, u.team, boolStr(u.active)),
		})
	}
	for _, p := range demoProjects {
		records = append(records, Record{
			Relation: "projects",
			ID:       p.id,
			Label:    p.name,
			Body: fmt.Sprintf(`{"title":%q,"status":%q,"owner":%q}`,
				p.name, p.status, p.owner),
		})
	}
	for i, tag := range demoTags {
		records = append(records, Record{
			Relation: "tags",
			ID:       fmt.Sprintf("t%d", i+1),
			Label:    tag,
			Body:     fmt.Sprintf(`{"tag":%q}`, tag),
		})
	}

	return s.SaveRecords(records)
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
