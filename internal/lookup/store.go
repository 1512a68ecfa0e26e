package lookup

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/tormodhaugland/twig/internal/tree"
)

var ErrUnresolved = errors.New("token did not resolve")

// Replace overwrites both token maps in one transaction. root is the
// traversal root of the pass that produced them.
func (s *Store) Replace(root string, labels tree.Labels) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM labeled", "DELETE FROM numbered"} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clearing lookup store: %w", err)
		}
	}

	dirStmt, err := tx.Prepare("INSERT INTO labeled (label, path, position) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer dirStmt.Close()
	for i, d := range labels.Dirs {
		if _, err := dirStmt.Exec(d.Label, d.Path, i); err != nil {
			return fmt.Errorf("storing label %s: %w", d.Label, err)
		}
	}

	fileStmt, err := tx.Prepare("INSERT INTO numbered (num, path, parent) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer fileStmt.Close()
	for _, f := range labels.Files {
		if _, err := fileStmt.Exec(f.Number, f.Path, f.Parent); err != nil {
			return fmt.Errorf("storing number %d: %w", f.Number, err)
		}
	}

	if _, err := tx.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('root', ?)", root); err != nil {
		return fmt.Errorf("storing root: %w", err)
	}

	return tx.Commit()
}

// Root returns the traversal root of the last stored pass.
func (s *Store) Root() (string, error) {
	var root string
	err := s.conn.QueryRow("SELECT value FROM meta WHERE key = 'root'").Scan(&root)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return root, err
}

// Lookup resolves one token: integers against the numbered map, anything
// else against the labeled map. Labels are matched case-insensitively.
func (s *Store) Lookup(token string) (string, error) {
	token = strings.TrimSpace(token)
	var (
		path string
		err  error
	)
	if n, convErr := strconv.Atoi(token); convErr == nil {
		err = s.conn.QueryRow("SELECT path FROM numbered WHERE num = ?", n).Scan(&path)
	} else {
		err = s.conn.QueryRow("SELECT path FROM labeled WHERE label = ?", strings.ToUpper(token)).Scan(&path)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrUnresolved, token)
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

// ResolveTokens resolves each token to the path that produced it. Tokens
// that fail are collected in unresolved; the rest still resolve. err is only
// set when the store itself fails.
func (s *Store) ResolveTokens(tokens []string) (resolved, unresolved []string, err error) {
	for _, tok := range tokens {
		p, lerr := s.Lookup(tok)
		if errors.Is(lerr, ErrUnresolved) {
			unresolved = append(unresolved, tok)
			continue
		}
		if lerr != nil {
			return nil, nil, lerr
		}
		resolved = append(resolved, p)
	}
	return resolved, unresolved, nil
}

// Expand resolves tokens for file-oriented commands: a number yields its
// file and a directory label yields every stored file directly under that
// directory.
func (s *Store) Expand(tokens []string) (files, unresolved []string, err error) {
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if _, convErr := strconv.Atoi(tok); convErr == nil {
			p, lerr := s.Lookup(tok)
			if errors.Is(lerr, ErrUnresolved) {
				unresolved = append(unresolved, tok)
				continue
			}
			if lerr != nil {
				return nil, nil, lerr
			}
			files = append(files, p)
			continue
		}

		dir, lerr := s.Lookup(tok)
		if errors.Is(lerr, ErrUnresolved) {
			unresolved = append(unresolved, tok)
			continue
		}
		if lerr != nil {
			return nil, nil, lerr
		}
		under, qerr := s.filesUnder(dir)
		if qerr != nil {
			return nil, nil, qerr
		}
		files = append(files, under...)
	}
	return files, unresolved, nil
}

func (s *Store) filesUnder(dir string) ([]string, error) {
	rows, err := s.conn.Query("SELECT path FROM numbered WHERE parent = ? ORDER BY num", dir)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// Item is one stored token and its path.
type Item struct {
	Token string `json:"token"`
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
}

// Items lists every stored token, directories first, in render order.
func (s *Store) Items() ([]Item, error) {
	var items []Item

	rows, err := s.conn.Query("SELECT label, path FROM labeled ORDER BY position")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.Token, &it.Path); err != nil {
			rows.Close()
			return nil, err
		}
		it.IsDir = true
		items = append(items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.conn.Query("SELECT num, path FROM numbered ORDER BY num")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			n  int
			it Item
		)
		if err := rows.Scan(&n, &it.Path); err != nil {
			return nil, err
		}
		it.Token = strconv.Itoa(n)
		items = append(items, it)
	}
	return items, rows.Err()
}

// Hit is a fuzzy search result.
type Hit struct {
	Item
	Score          int   `json:"score"`
	MatchedIndexes []int `json:"-"`
}

// Search fuzzy-matches query against every stored path, best first.
func (s *Store) Search(query string, limit int) ([]Hit, error) {
	items, err := s.Items()
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(items))
	for i, it := range items {
		paths[i] = it.Path
	}

	matches := fuzzy.Find(query, paths)
	hits := make([]Hit, 0, len(matches))
	for _, m := range matches {
		hits = append(hits, Hit{
			Item:           items[m.Index],
			Score:          m.Score,
			MatchedIndexes: m.MatchedIndexes,
		})
		if limit > 0 && len(hits) >= limit {
			break
		}
	}
	return hits, nil
}
