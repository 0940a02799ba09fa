// Command migrate applies versioned BigQuery migrations for the warehouse
// dataset, tracking what ran in a schema_migrations table.
package main

import (
	"context"
	"crypto/sha256"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/joho/godotenv"
	"google.golang.org/api/iterator"

	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/logger"
)

// Migration is one pending .sql file.
type Migration struct {
	Version  int
	Name     string
	Filename string
	SQL      string
	Checksum string
}

var migrationPattern = regexp.MustCompile(`^(\d{4})_(.+)\.sql$`)

var (
	projectID     = flag.String("project", "", "GCP project ID (required)")
	datasetID     = flag.String("dataset", "ecommerce", "BigQuery dataset ID")
	appliedBy     = flag.String("applied-by", "migrate-cli", "Name recorded as the applier")
	migrationsDir = flag.String("migrations", "migrations/bigquery", "Path to migrations directory")
)

func main() {
	_ = godotenv.Load()
	flag.Parse()

	log := logger.New()

	if *projectID == "" {
		if env := os.Getenv("BQ_PROJECT"); env != "" {
			*projectID = env
		} else {
			log.Fatal().Msg("Error: -project (or BQ_PROJECT) is required")
		}
	}

	ctx := logger.WithContext(context.Background(), log)

	client, err := bigquery.NewClient(ctx, *projectID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery client")
	}
	defer client.Close()

	log.Info().Str("project", *projectID).Str("dataset", *datasetID).Msg("Connected to BigQuery")

	if err := ensureSchemaMigrationsTable(ctx, client); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure schema_migrations table")
	}

	migrations, err := readMigrations(*migrationsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read migrations")
	}

	appliedVersions, err := appliedVersions(ctx, client)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read applied migrations")
	}

	applied := 0
	for _, m := range migrations {
		if appliedVersions[m.Version] {
			log.Info().Str("migration", m.Filename).Msg("Already applied, skipping")
			continue
		}

		log.Info().Str("migration", m.Filename).Msg("Applying")
		if err := runQuery(ctx, client, m.SQL, nil); err != nil {
			log.Fatal().Err(err).Str("migration", m.Filename).Msg("Migration failed")
		}
		if err := recordMigration(ctx, client, m); err != nil {
			log.Fatal().Err(err).Str("migration", m.Filename).Msg("Failed to record migration")
		}
		applied++
	}

	if applied == 0 {
		log.Info().Msg("No new migrations to apply, dataset is up to date")
	} else {
		log.Info().Int("applied", applied).Msg("Migrations applied")
	}
}

func ensureSchemaMigrationsTable(ctx context.Context, client *bigquery.Client) error {
	sql := fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s.%s.schema_migrations` ("+
		"version INT64 NOT NULL, "+
		"name STRING NOT NULL, "+
		"applied_at TIMESTAMP NOT NULL, "+
		"checksum STRING, "+
		"applied_by STRING)",
		*projectID, *datasetID)
	return runQuery(ctx, client, sql, nil)
}

// readMigrations loads NNNN_name.sql files sorted by version. {{PROJECT_ID}}
// and {{DATASET_ID}} placeholders are substituted; checksums are taken over
// the raw file so the same migration applied to two datasets matches.
func readMigrations(dir string) ([]Migration, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		// allow running from the binary's own directory
		alt := filepath.Join("..", "..", dir)
		if _, err := os.Stat(alt); os.IsNotExist(err) {
			return nil, fmt.Errorf("migrations directory not found: %s", dir)
		}
		dir = alt
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var migrations []Migration
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		matches := migrationPattern.FindStringSubmatch(file.Name())
		if matches == nil {
			continue
		}
		version, err := strconv.Atoi(matches[1])
		if err != nil {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file.Name(), err)
		}

		sql := string(content)
		sql = strings.ReplaceAll(sql, "{{PROJECT_ID}}", *projectID)
		sql = strings.ReplaceAll(sql, "{{DATASET_ID}}", *datasetID)

		migrations = append(migrations, Migration{
			Version:  version,
			Name:     matches[2],
			Filename: file.Name(),
			SQL:      sql,
			Checksum: fmt.Sprintf("%x", sha256.Sum256(content)),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

func appliedVersions(ctx context.Context, client *bigquery.Client) (map[int]bool, error) {
	sql := fmt.Sprintf("SELECT version FROM `%s.%s.schema_migrations` ORDER BY version",
		*projectID, *datasetID)

	it, err := client.Query(sql).Read(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "Not found") {
			return map[int]bool{}, nil
		}
		return nil, fmt.Errorf("reading applied migrations: %w", err)
	}

	versions := make(map[int]bool)
	for {
		var row struct {
			Version int64
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating results: %w", err)
		}
		versions[int(row.Version)] = true
	}
	return versions, nil
}

func recordMigration(ctx context.Context, client *bigquery.Client, m Migration) error {
	sql := fmt.Sprintf("INSERT INTO `%s.%s.schema_migrations` "+
		"(version, name, applied_at, checksum, applied_by) "+
		"VALUES (@version, @name, CURRENT_TIMESTAMP(), @checksum, @applied_by)",
		*projectID, *datasetID)

	params := []bigquery.QueryParameter{
		{Name: "version", Value: m.Version},
		{Name: "name", Value: m.Name},
		{Name: "checksum", Value: m.Checksum},
		{Name: "applied_by", Value: *appliedBy},
	}
	return runQuery(ctx, client, sql, params)
}

func runQuery(ctx context.Context, client *bigquery.Client, sql string, params []bigquery.QueryParameter) error {
	q := client.Query(sql)
	q.Parameters = params

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}
