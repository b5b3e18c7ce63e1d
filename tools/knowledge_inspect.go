package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"help-desk/domain"
	"help-desk/repositories"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// seedEntry is one verified answer of a seed file.
type seedEntry struct {
	Domain     domain.Domain       `yaml:"domain"`
	Specialist domain.SpecialistID `yaml:"specialist"`
	Question   string              `yaml:"question"`
	Answer     string              `yaml:"answer"`
	Sources    []string            `yaml:"sources"`
}

func main() {
	dbPath := flag.String("db", "./data/badger", "Path to badger DB")
	indexPath := flag.String("index", "./data/bluge", "Path to bluge index")
	seed := flag.String("seed", "", "YAML file of verified answers to store before listing")
	ttl := flag.Duration("ttl", 0, "TTL of seeded entries, zero keeps them")
	flag.Parse()

	logger := logs.GetLoggerFromString("WARN")
	db, err := badger.Open(badger.DefaultOptions(*dbPath).WithLogger(nil))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(*indexPath))
	if err != nil {
		log.Fatal("Error while opening Bluge: ", err)
	}
	defer writer.Close()

	knowledge := repositories.NewKnowledgeRepository(db, writer, logger, *ttl, 0)

	if *seed != "" {
		n, err := seedFrom(knowledge, *seed)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Stored %d entries from %s\n", n, *seed)
	}

	answers, err := knowledge.List()
	if err != nil {
		log.Fatal(err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Domain", "Specialist", "Verified", "Stored", "Question", "Sources"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, a := range answers {
		id := a.ID
		if len(id) > 8 {
			id = id[:8]
		}
		table.Append([]string{
			id,
			string(a.Domain),
			string(a.SpecialistID),
			fmt.Sprint(a.Verified),
			a.StoredAt.Format(time.DateTime),
			a.Question,
			strings.Join(a.Sources, "; "),
		})
	}
	table.Render()
}

func seedFrom(knowledge repositories.KnowledgeRepository, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var entries []seedEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return 0, fmt.Errorf("seed file %s: %w", path, err)
	}
	for i, e := range entries {
		if e.Question == "" || e.Answer == "" || !lo.Contains(domain.AllDomains, e.Domain) {
			return i, fmt.Errorf("seed entry %d is incomplete", i)
		}
		_, err := knowledge.Store(context.Background(), repositories.CachedAnswer{
			Domain:       e.Domain,
			SpecialistID: e.Specialist,
			Question:     e.Question,
			Answer:       e.Answer,
			Sources:      e.Sources,
			Verified:     true,
		})
		if err != nil {
			return i, err
		}
	}
	return len(entries), nil
}
