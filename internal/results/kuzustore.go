//go:build cgo

package results

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	kuzu "github.com/kuzudb/go-kuzu"
)

// Entry kinds stored in the kind column.
const (
	entryStart      = "start"
	entryCheckpoint = "checkpoint"
	entryFinish     = "finish"
)

// KuzuStore implements the Store interface on top of an embedded KuzuDB.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
//
// Every entry is a node carrying its stage, its scope (the stage for starts
// and finishes, the segment for checkpoints), the time as nanoseconds since
// midnight and a registration sequence number that orders equal times.
type KuzuStore struct {
	mu   sync.Mutex // serialises transactions on the single connection
	db   *kuzu.Database
	conn *kuzu.Connection
	seq  int64
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a database directory at
// dbPath. KuzuDB creates the directory itself for new databases.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	// Ensure parent directory exists (KuzuDB creates the leaf directory).
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(path string) (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Entry(
		id STRING,
		stage_id STRING,
		scope STRING,
		kind STRING,
		rider_id STRING,
		t INT64,
		seq INT64,
		PRIMARY KEY(id)
	)`,
}

// InitSchema creates the entry table if it does not exist and resumes the
// registration sequence of an existing database.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	rows, err := s.query("MATCH (e:Entry) RETURN max(e.seq)", nil)
	if err != nil {
		return err
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		s.seq = int64(toInt(rows[0][0]))
	}
	return nil
}

// ---------- Write operations ----------

// Commit writes every entry of reg inside one transaction after checking
// that none of them exists yet.
func (s *KuzuStore) Commit(_ context.Context, reg Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	type row struct {
		kind, scope string
		t           TimeOfDay
	}
	rows := make([]row, 0, len(reg.Checkpoints)+2)
	rows = append(rows, row{entryStart, reg.StageID, reg.Start})
	for _, cp := range reg.Checkpoints {
		rows = append(rows, row{entryCheckpoint, cp.SegmentID, cp.Time})
	}
	rows = append(rows, row{entryFinish, reg.StageID, reg.Finish})

	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		id := entryID(r.kind, r.scope, reg.RiderID)
		if seen[id] {
			return fmt.Errorf("%s %s listed twice: %w", r.kind, r.scope, ErrDuplicateResult)
		}
		seen[id] = true
		found, err := s.query("MATCH (e:Entry {id: $id}) RETURN e.id", map[string]any{"id": id})
		if err != nil {
			return err
		}
		if len(found) > 0 {
			return fmt.Errorf("%s %s rider %s: %w", r.kind, r.scope, reg.RiderID, ErrDuplicateResult)
		}
	}

	if err := s.exec("BEGIN TRANSACTION", nil); err != nil {
		return err
	}
	seq := s.seq
	for _, r := range rows {
		seq++
		err := s.exec(
			`CREATE (e:Entry {
				id: $id,
				stage_id: $stage,
				scope: $scope,
				kind: $kind,
				rider_id: $rider,
				t: $t,
				seq: $seq
			})`,
			map[string]any{
				"id":    entryID(r.kind, r.scope, reg.RiderID),
				"stage": reg.StageID,
				"scope": r.scope,
				"kind":  r.kind,
				"rider": reg.RiderID,
				"t":     int64(r.t),
				"seq":   seq,
			},
		)
		if err != nil {
			_ = s.exec("ROLLBACK", nil)
			return err
		}
	}
	if err := s.exec("COMMIT", nil); err != nil {
		_ = s.exec("ROLLBACK", nil)
		return err
	}
	s.seq = seq
	return nil
}

// RemoveAll deletes every entry of the rider in the stage.
func (s *KuzuStore) RemoveAll(_ context.Context, stageID, riderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exec(
		"MATCH (e:Entry) WHERE e.stage_id = $stage AND e.rider_id = $rider DELETE e",
		map[string]any{"stage": stageID, "rider": riderID},
	)
}

// DropStage deletes every entry recorded for the stage.
func (s *KuzuStore) DropStage(_ context.Context, stageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exec(
		"MATCH (e:Entry) WHERE e.stage_id = $stage DELETE e",
		map[string]any{"stage": stageID},
	)
}

// DropSegment deletes every checkpoint recorded at the segment.
func (s *KuzuStore) DropSegment(_ context.Context, segmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exec(
		"MATCH (e:Entry) WHERE e.kind = $kind AND e.scope = $scope DELETE e",
		map[string]any{"kind": entryCheckpoint, "scope": segmentID},
	)
}

// ---------- Read operations ----------

// Find returns the rider's start and finish in the stage, or nil.
func (s *KuzuStore) Find(_ context.Context, stageID, riderID string) (*RiderEntries, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start, err := s.lookup(entryStart, stageID, riderID)
	if err != nil || start == nil {
		return nil, err
	}
	finish, err := s.lookup(entryFinish, stageID, riderID)
	if err != nil || finish == nil {
		return nil, err
	}
	return &RiderEntries{Start: *start, Finish: *finish}, nil
}

// FindAtSegment returns the rider's checkpoint at the segment, or nil.
func (s *KuzuStore) FindAtSegment(_ context.Context, segmentID, riderID string) (*TimedEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(entryCheckpoint, segmentID, riderID)
}

// Starts returns the stage's start entries in time order.
func (s *KuzuStore) Starts(_ context.Context, stageID string) ([]TimedEntry, error) {
	return s.sequence(entryStart, stageID)
}

// Finishes returns the stage's finish entries in time order.
func (s *KuzuStore) Finishes(_ context.Context, stageID string) ([]TimedEntry, error) {
	return s.sequence(entryFinish, stageID)
}

// Checkpoints returns the segment's checkpoint entries in time order.
func (s *KuzuStore) Checkpoints(_ context.Context, segmentID string) ([]TimedEntry, error) {
	return s.sequence(entryCheckpoint, segmentID)
}

// StagesForRider lists the stages in which the rider has a start entry.
func (s *KuzuStore) StagesForRider(_ context.Context, riderID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.query(
		`MATCH (e:Entry) WHERE e.kind = $kind AND e.rider_id = $rider
		 RETURN e.stage_id ORDER BY e.stage_id`,
		map[string]any{"kind": entryStart, "rider": riderID},
	)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, toString(r[0]))
	}
	return out, nil
}

// ---------- Internal helpers ----------

// sequence returns the entries of one kind and scope ordered by time, then by
// registration sequence.
func (s *KuzuStore) sequence(kind, scope string) ([]TimedEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.query(
		`MATCH (e:Entry) WHERE e.kind = $kind AND e.scope = $scope
		 RETURN e.rider_id, e.t ORDER BY e.t, e.seq`,
		map[string]any{"kind": kind, "scope": scope},
	)
	if err != nil {
		return nil, err
	}
	out := make([]TimedEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, TimedEntry{RiderID: toString(r[0]), Time: TimeOfDay(toInt64(r[1]))})
	}
	return out, nil
}

// lookup fetches a single entry by kind, scope and rider. Caller holds s.mu.
func (s *KuzuStore) lookup(kind, scope, riderID string) (*TimedEntry, error) {
	rows, err := s.query(
		"MATCH (e:Entry {id: $id}) RETURN e.t",
		map[string]any{"id": entryID(kind, scope, riderID)},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &TimedEntry{RiderID: riderID, Time: TimeOfDay(toInt64(rows[0][0]))}, nil
}

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	if len(params) == 0 {
		res, err := s.conn.Query(cypher)
		if err != nil {
			return fmt.Errorf("kuzu: execute: %w", err)
		}
		res.Close()
		return nil
	}
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// entryID produces the primary key of an entry: "kind:scope:rider".
func entryID(kind, scope, riderID string) string {
	return kind + ":" + scope + ":" + riderID
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func toInt(v any) int {
	return int(toInt64(v))
}
