// Command goldrun runs the golden test corpus under tests/testdata outside
// of `go test`, recording pass/fail/duration history in a local sqlite
// database so a -failed-only rerun doesn't need to repeat the whole
// corpus.
package main

import (
	"bytes"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	_ "modernc.org/sqlite"

	"github.com/lumen-lang/lumen/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	root := flag.String("root", ".", "repository root")
	dbPath := flag.String("db", "goldrun.db", "sqlite history database path")
	failedOnly := flag.Bool("failed-only", false, "only rerun tests that last failed")
	flag.Parse()

	projectRoot, err := filepath.Abs(*root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "goldrun: resolving root: %s\n", err)
		return 1
	}

	db, err := openHistory(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "goldrun: opening history db: %s\n", err)
		return 1
	}
	defer db.Close()

	testdataDir := filepath.Join(projectRoot, "tests", "testdata")
	tests, err := discoverTests(testdataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "goldrun: discovering tests: %s\n", err)
		return 1
	}

	if *failedOnly {
		tests, err = filterToLastFailed(db, tests)
		if err != nil {
			fmt.Fprintf(os.Stderr, "goldrun: filtering failed tests: %s\n", err)
			return 1
		}
	}

	binaryPath := filepath.Join(projectRoot, "lumen-goldrun-binary")
	defer os.Remove(binaryPath)
	if out, err := exec.Command("go", "build", "-o", binaryPath, "./cmd/lumen").CombinedOutput(); err != nil {
		fmt.Fprintf(os.Stderr, "goldrun: building lumen: %s\n%s\n", err, out)
		return 1
	}

	passed, failed := 0, 0
	for _, tc := range tests {
		ok, dur := runOne(binaryPath, projectRoot, tc)
		if err := recordRun(db, tc.name, ok, dur); err != nil {
			fmt.Fprintf(os.Stderr, "goldrun: recording %s: %s\n", tc.name, err)
		}
		if ok {
			passed++
			fmt.Printf("ok   %s (%s)\n", tc.name, dur)
		} else {
			failed++
			fmt.Printf("FAIL %s (%s)\n", tc.name, dur)
		}
	}

	printSummary(db, *dbPath, passed, failed)
	if failed > 0 {
		return 1
	}
	return 0
}

type testCase struct {
	name     string
	lumPath  string
	wantPath string
}

func discoverTests(testdataDir string) ([]testCase, error) {
	var cases []testCase
	err := filepath.Walk(testdataDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		for _, ext := range config.SourceFileExtensions {
			if !strings.HasSuffix(path, ext) {
				continue
			}
			want := strings.TrimSuffix(path, ext) + ".want"
			if _, err := os.Stat(want); err == nil {
				cases = append(cases, testCase{
					name:     strings.TrimSuffix(filepath.Base(path), ext),
					lumPath:  path,
					wantPath: want,
				})
			}
		}
		return nil
	})
	return cases, err
}

func runOne(binaryPath, projectRoot string, tc testCase) (bool, time.Duration) {
	wantBytes, err := os.ReadFile(tc.wantPath)
	if err != nil {
		return false, 0
	}
	want := strings.TrimSpace(string(wantBytes))

	start := time.Now()
	cmd := exec.Command(binaryPath, tc.lumPath)
	cmd.Dir = projectRoot
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	_ = cmd.Run()
	dur := time.Since(start)

	stdoutStr := strings.TrimSpace(stdout.String())
	stderrStr := strings.TrimSpace(strings.ReplaceAll(stderr.String(), projectRoot+"/", ""))

	var got string
	switch {
	case stdoutStr != "" && stderrStr != "":
		got = stdoutStr + "\n" + stderrStr
	case stdoutStr != "":
		got = stdoutStr
	default:
		got = stderrStr
	}
	return strings.TrimSpace(got) == want, dur
}

func openHistory(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			test_name   TEXT NOT NULL,
			passed      INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			run_at      TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func recordRun(db *sql.DB, name string, passed bool, dur time.Duration) error {
	_, err := db.Exec(
		`INSERT INTO runs (test_name, passed, duration_ms, run_at) VALUES (?, ?, ?, ?)`,
		name, passed, dur.Milliseconds(), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// filterToLastFailed keeps only the tests whose most recent recorded run
// did not pass (or that have no recorded run at all).
func filterToLastFailed(db *sql.DB, tests []testCase) ([]testCase, error) {
	lastPassed := make(map[string]bool)
	rows, err := db.Query(`
		SELECT test_name, passed FROM runs r
		WHERE run_at = (SELECT MAX(run_at) FROM runs WHERE test_name = r.test_name)
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var passed bool
		if err := rows.Scan(&name, &passed); err != nil {
			return nil, err
		}
		lastPassed[name] = passed
	}

	var out []testCase
	for _, tc := range tests {
		if ok, seen := lastPassed[tc.name]; !seen || !ok {
			out = append(out, tc)
		}
	}
	return out, nil
}

func printSummary(db *sql.DB, dbPath string, passed, failed int) {
	fmt.Printf("\n%d passed, %d failed\n", passed, failed)

	var lastPass sql.NullString
	_ = db.QueryRow(`SELECT MAX(run_at) FROM runs WHERE passed = 1`).Scan(&lastPass)
	if lastPass.Valid {
		if t, err := time.Parse(time.RFC3339, lastPass.String); err == nil {
			fmt.Printf("last passing run: %s\n", humanize.Time(t))
		}
	}

	if info, err := os.Stat(dbPath); err == nil {
		fmt.Printf("history database: %s (%s)\n", dbPath, humanize.Bytes(uint64(info.Size())))
	}
}
