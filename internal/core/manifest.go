package core

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	dataDirName      = ".mdpack"
	manifestFileName = "manifest.sqlite"
)

// Manifest file statuses.
const (
	StatusCopied = "copied"
	StatusFailed = "failed"
)

// ManifestPath returns the manifest location inside an export destination.
func ManifestPath(destRoot string) string {
	return filepath.Join(destRoot, dataDirName, manifestFileName)
}

// Manifest is the recorded description of one export run.
type Manifest struct {
	RunID     string
	Source    string
	MaxDepth  int // Unbounded when unlimited
	Seeds     []string
	CreatedAt time.Time
	Files     []ManifestFile
	Links     []Edge
}

// ManifestFile is one exported file.
type ManifestFile struct {
	Path    string
	Depth   int
	IsSeed  bool
	Size    int64
	Status  string
	Failure string // failure category, empty on success
}

type dbExecer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func openDBAt(path string) (*sql.DB, error) {
	return sql.Open("sqlite", fmt.Sprintf("file:%s", path))
}

func initSchema(db dbExecer) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id         TEXT PRIMARY KEY,
			source     TEXT NOT NULL,
			max_depth  INTEGER,
			seeds      TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS files (
			id      INTEGER PRIMARY KEY,
			path    TEXT NOT NULL UNIQUE,
			depth   INTEGER NOT NULL,
			is_seed INTEGER NOT NULL DEFAULT 0,
			size    INTEGER NOT NULL DEFAULT 0,
			status  TEXT NOT NULL,
			failure TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS links (
			id          INTEGER PRIMARY KEY,
			source_path TEXT NOT NULL,
			target_path TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_links_source ON links(source_path);`,
		`CREATE INDEX IF NOT EXISTS idx_links_target ON links(target_path);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// NewManifest assembles the manifest of a traversal and its copy outcome.
// Links are kept only when both ends were exported.
func NewManifest(source string, maxDepth int, tr *TraverseResult, mr *MaterializeResult) *Manifest {
	m := &Manifest{
		RunID:     uuid.NewString(),
		Source:    source,
		MaxDepth:  maxDepth,
		Seeds:     append([]string(nil), tr.Seeds...),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	copied := make(map[string]CopyRecord, len(mr.Copied))
	for _, c := range mr.Copied {
		copied[c.Path] = c
	}
	failed := make(map[string]FailureRecord, len(mr.Failures))
	for _, f := range mr.Failures {
		failed[f.Path] = f
	}

	for _, p := range tr.Paths() {
		mf := ManifestFile{Path: p, Depth: tr.Depths[p], IsSeed: tr.IsSeed(p)}
		if c, ok := copied[p]; ok {
			mf.Size = c.Size
			mf.Status = StatusCopied
		} else if f, ok := failed[p]; ok {
			mf.Status = StatusFailed
			mf.Failure = string(f.Category)
		} else {
			mf.Status = StatusFailed
			mf.Failure = string(FailureUnresolved)
		}
		m.Files = append(m.Files, mf)
	}
	for _, e := range tr.Edges {
		if _, ok := tr.Depths[e.To]; ok {
			m.Links = append(m.Links, e)
		}
	}
	return m
}

// WriteManifest stores m under destRoot, replacing any previous manifest.
// It returns the manifest path.
func WriteManifest(destRoot string, m *Manifest) (string, error) {
	dir := filepath.Join(destRoot, dataDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	final := ManifestPath(destRoot)
	tmpPath := final + ".tmp"
	_ = os.Remove(tmpPath)
	defer os.Remove(tmpPath)

	db, err := openDBAt(tmpPath)
	if err != nil {
		return "", err
	}
	defer db.Close()

	if err := initSchema(db); err != nil {
		return "", err
	}

	tx, err := db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var maxDepth any
	if m.MaxDepth >= 0 {
		maxDepth = m.MaxDepth
	}
	if _, err := tx.Exec(
		`INSERT INTO runs (id, source, max_depth, seeds, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.RunID, m.Source, maxDepth, strings.Join(m.Seeds, "\n"), m.CreatedAt.Unix(),
	); err != nil {
		return "", err
	}
	for _, f := range m.Files {
		var failure any
		if f.Failure != "" {
			failure = f.Failure
		}
		if _, err := tx.Exec(
			`INSERT INTO files (path, depth, is_seed, size, status, failure) VALUES (?, ?, ?, ?, ?, ?)`,
			f.Path, f.Depth, boolInt(f.IsSeed), f.Size, f.Status, failure,
		); err != nil {
			return "", err
		}
	}
	for _, l := range m.Links {
		if _, err := tx.Exec(
			`INSERT INTO links (source_path, target_path) VALUES (?, ?)`,
			l.From, l.To,
		); err != nil {
			return "", err
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	if err := db.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, final); err != nil {
		return "", err
	}
	return final, nil
}

// ReadManifest loads the manifest stored under destRoot.
func ReadManifest(destRoot string) (*Manifest, error) {
	p := ManifestPath(destRoot)
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return nil, fmt.Errorf("manifest not found: export with --manifest first")
	}
	db, err := openDBAt(p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	m := &Manifest{}
	var maxDepth sql.NullInt64
	var seeds string
	var created int64
	row := db.QueryRow(`SELECT id, source, max_depth, seeds, created_at FROM runs LIMIT 1`)
	if err := row.Scan(&m.RunID, &m.Source, &maxDepth, &seeds, &created); err != nil {
		return nil, fmt.Errorf("read run: %w", err)
	}
	m.MaxDepth = Unbounded
	if maxDepth.Valid {
		m.MaxDepth = int(maxDepth.Int64)
	}
	if seeds != "" {
		m.Seeds = strings.Split(seeds, "\n")
	}
	m.CreatedAt = time.Unix(created, 0).UTC()

	rows, err := db.Query(`SELECT path, depth, is_seed, size, status, COALESCE(failure, '') FROM files ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var f ManifestFile
		var isSeed int
		if err := rows.Scan(&f.Path, &f.Depth, &isSeed, &f.Size, &f.Status, &f.Failure); err != nil {
			return nil, err
		}
		f.IsSeed = isSeed == 1
		m.Files = append(m.Files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	linkRows, err := db.Query(`SELECT source_path, target_path FROM links ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer linkRows.Close()
	for linkRows.Next() {
		var e Edge
		if err := linkRows.Scan(&e.From, &e.To); err != nil {
			return nil, err
		}
		m.Links = append(m.Links, e)
	}
	return m, linkRows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
