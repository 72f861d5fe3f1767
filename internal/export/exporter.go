// Package export renders geneset exports from the enrichment engine into a
// blob store, one GMT and one JSON artifact per run.
package export

import (
	"bytes"
	"compath/internal/blob"
	"compath/internal/core"
	"compath/internal/gmt"
	"compath/pkg/domain"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	contentTypeGMT  = "text/tab-separated-values"
	contentTypeJSON = "application/json"
)

// AuditEntry captures audit trail metadata for exports.
type AuditEntry struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	Actor      string    `json:"actor"`
	Artifacts  []string  `json:"artifacts"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AuditSink records export audit entries.
type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry)
}

type noopAudit struct{}

func (noopAudit) Record(context.Context, AuditEntry) {}

// Result describes one completed export run.
type Result struct {
	ID        string      `json:"id"`
	Pathways  int         `json:"pathways"`
	Artifacts []blob.Info `json:"artifacts"`
}

// Exporter renders ExportGenesets output into immutable blob artifacts.
type Exporter struct {
	engine *core.Engine
	store  blob.Store
	audit  AuditSink
	logger core.Logger
	now    func() time.Time
}

// Option customises exporter construction.
type Option func(*Exporter)

// WithAudit installs an audit sink. The default discards entries.
func WithAudit(sink AuditSink) Option {
	return func(x *Exporter) {
		if sink != nil {
			x.audit = sink
		}
	}
}

// WithLogger installs a logger. The default discards everything.
func WithLogger(l core.Logger) Option {
	return func(x *Exporter) {
		if l != nil {
			x.logger = l
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(x *Exporter) {
		if now != nil {
			x.now = now
		}
	}
}

// New validates the bindings and constructs an exporter.
func New(engine *core.Engine, store blob.Store, opts ...Option) (*Exporter, error) {
	if engine == nil {
		return nil, domain.NewConfigurationError("engine")
	}
	if store == nil {
		return nil, domain.NewConfigurationError("blob store")
	}
	x := &Exporter{
		engine: engine,
		store:  store,
		audit:  noopAudit{},
		logger: core.NopLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x, nil
}

// ExportGenesets snapshots the full geneset mapping into one GMT and one
// JSON artifact under a unique run prefix and records an audit entry.
func (x *Exporter) ExportGenesets(ctx context.Context, actor string) (Result, error) {
	genesets, err := x.engine.ExportGenesets(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("collect genesets: %w", err)
	}

	id := uuid.NewString()
	prefix := fmt.Sprintf("exports/%s/%s", x.now().UTC().Format("2006-01-02"), id)

	var gmtBuf bytes.Buffer
	if err := gmt.Write(&gmtBuf, genesets); err != nil {
		return Result{}, fmt.Errorf("render gmt: %w", err)
	}
	jsonPayload, err := json.MarshalIndent(genesets, "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("render json: %w", err)
	}

	meta := map[string]string{"actor": actor, "export_id": id}
	gmtInfo, err := x.store.Put(ctx, prefix+"/genesets.gmt", &gmtBuf, blob.PutOptions{
		ContentType: contentTypeGMT,
		Metadata:    meta,
	})
	if err != nil {
		return Result{}, fmt.Errorf("store gmt artifact: %w", err)
	}
	jsonInfo, err := x.store.Put(ctx, prefix+"/genesets.json", bytes.NewReader(jsonPayload), blob.PutOptions{
		ContentType: contentTypeJSON,
		Metadata:    meta,
	})
	if err != nil {
		return Result{}, fmt.Errorf("store json artifact: %w", err)
	}

	result := Result{
		ID:        id,
		Pathways:  len(genesets),
		Artifacts: []blob.Info{gmtInfo, jsonInfo},
	}
	x.audit.Record(ctx, AuditEntry{
		ID:         id,
		Action:     "export_genesets",
		Actor:      actor,
		Artifacts:  []string{gmtInfo.Key, jsonInfo.Key},
		OccurredAt: x.now().UTC(),
	})
	x.logger.Info("genesets exported", "export_id", id, "pathways", result.Pathways, "driver", x.store.Driver())
	return result, nil
}

// ListExports returns artifact infos for previous runs, newest keys last.
func (x *Exporter) ListExports(ctx context.Context) ([]blob.Info, error) {
	return x.store.List(ctx, "exports/")
}
