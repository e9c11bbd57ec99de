package repo

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"allsky/internal/platform/store"

	"github.com/google/uuid"
)

// AuditTable receives one row per selection served
const AuditTable = "image_downloads"

// Download kinds
const (
	KindSelect   = "select"
	KindSize     = "size"
	KindDownload = "download"
	KindNight    = "night"
)

// Download is one audit row
type Download struct {
	ID            uuid.UUID
	RequestedAt   time.Time
	Kind          string
	StartDate     time.Time
	EndDate       time.Time
	SiderealStart float64
	SiderealEnd   *float64
	ClearOnly     bool
	Images        int
	TotalMB       float64
}

// Auditor records served selections
type Auditor interface {
	Record(ctx context.Context, d Download) error
}

// Discard drops every record
type Discard struct{}

// Record implements Auditor
func (Discard) Record(context.Context, Download) error { return nil }

// Verifier is an Auditor that can check its sink before serving
type Verifier interface {
	Verify(ctx context.Context) error
}

// ErrNoAuditTable means the audit sink is reachable but AuditTable is missing
var ErrNoAuditTable = errors.New("audit table " + AuditTable + " not found")

type chAuditor struct {
	ch  store.Clickhouse
	off atomic.Bool
}

// NewClickhouse writes audit rows to AuditTable
func NewClickhouse(c store.Clickhouse) Auditor {
	if c == nil {
		return Discard{}
	}
	return &chAuditor{ch: c}
}

// Verify looks AuditTable up in the current database. A missing table
// switches the auditor off; other failures leave it on
func (a *chAuditor) Verify(ctx context.Context) error {
	rows, err := a.ch.Query(ctx,
		"select name from system.tables where database = currentDatabase() and name = ?", AuditTable)
	if err != nil {
		return err
	}
	defer rows.Close()

	if rows.Next() {
		a.off.Store(false)
		return nil
	}
	if err := rows.Err(); err != nil {
		return err
	}
	a.off.Store(true)
	return ErrNoAuditTable
}

func (a *chAuditor) Record(ctx context.Context, d Download) error {
	if a.off.Load() {
		return nil
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	var clearOnly uint8
	if d.ClearOnly {
		clearOnly = 1
	}
	return a.ch.Insert(ctx, AuditTable, [][]any{{
		d.ID,
		d.RequestedAt.UTC(),
		d.Kind,
		d.StartDate,
		d.EndDate,
		d.SiderealStart,
		d.SiderealEnd,
		clearOnly,
		uint32(d.Images),
		d.TotalMB,
	}})
}
