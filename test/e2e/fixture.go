package e2e

import (
	"os"
	"path/filepath"
	"time"

	"github.com/abelbrown/facetline/internal/store"
)

// seedFixtureDB creates ~/.facetline/catalog.db under the test home with a
// small deterministic catalog. Seeding before first launch also keeps the app
// from loading its demo data.
func seedFixtureDB(homeDir string) error {
	dataDir := filepath.Join(homeDir, ".facetline")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	st, err := store.Open(filepath.Join(dataDir, "catalog.db"))
	if err != nil {
		return err
	}
	defer st.Close()

	records := []store.Record{
		{
			Relation: "projects",
			ID:       "p1",
			Label:    "Orbital Platform",
			Body:     `{"title":"Orbital Platform","status":"open"}`,
		},
		{
			Relation: "projects",
			ID:       "p2",
			Label:    "Quartz Archive",
			Body:     `{"title":"Quartz Archive","status":"closed"}`,
		},
		{
			Relation: "users",
			ID:       "1",
			Label:    "Fixture Person",
			Body:     `{"name":"Fixture Person","active":"true"}`,
		},
	}
	if _, err := st.SaveRecords(records); err != nil {
		return err
	}
	return nil
}

func readSnapshot(f *os.File) string {
	if err := f.SetReadDeadline(time.Now().Add(50 * time.Millisecond)); err != nil {
		return ""
	}
	out := make([]byte, 0, 8192)
	buf := make([]byte, 4096)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if err != nil {
			break
		}
	}
	return string(out)
}
