package export

import (
	"compath/internal/blob"
	"compath/internal/core"
	"compath/internal/gmt"
	"compath/internal/infra/persistence/memory"
	"compath/pkg/domain"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

type recordingAudit struct {
	entries []AuditEntry
}

func (a *recordingAudit) Record(_ context.Context, entry AuditEntry) {
	a.entries = append(a.entries, entry)
}

func seededEngine(t *testing.T) *core.Engine {
	t.Helper()
	store := memory.NewStore()
	err := store.Populate(context.Background(), []domain.PathwayRecord{
		{Identifier: "1", Name: "PW1", Symbols: []string{"TP53", "BRCA1"}},
		{Identifier: "2", Name: "PW2", Symbols: []string{"TP53"}},
	})
	if err != nil {
		t.Fatalf("populate: %v", err)
	}
	engine, err := core.NewFromStore(store)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return engine
}

func TestNewValidatesBindings(t *testing.T) {
	engine := seededEngine(t)
	if _, err := New(nil, blob.NewMemoryStore()); err == nil {
		t.Fatal("expected error for nil engine")
	}
	if _, err := New(engine, nil); err == nil {
		t.Fatal("expected error for nil blob store")
	}
	var cfgErr *domain.ConfigurationError
	_, err := New(engine, nil)
	if !errors.As(err, &cfgErr) || cfgErr.Field != "blob store" {
		t.Fatalf("expected configuration error naming blob store, got %v", err)
	}
}

func TestExportGenesets(t *testing.T) {
	engine := seededEngine(t)
	store := blob.NewMemoryStore()
	audit := &recordingAudit{}
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	exporter, err := New(engine, store,
		WithAudit(audit),
		WithClock(func() time.Time { return fixed }),
	)
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}

	result, err := exporter.ExportGenesets(context.Background(), "curator")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if result.Pathways != 2 {
		t.Fatalf("expected 2 pathways, got %d", result.Pathways)
	}
	if len(result.Artifacts) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(result.Artifacts))
	}
	for _, info := range result.Artifacts {
		if !strings.HasPrefix(info.Key, "exports/2024-03-01/"+result.ID+"/") {
			t.Fatalf("artifact key %q lacks run prefix", info.Key)
		}
		if info.Metadata["actor"] != "curator" {
			t.Fatalf("artifact %q missing actor metadata", info.Key)
		}
	}

	t.Run("gmt artifact parses back", func(t *testing.T) {
		_, rc, err := store.Get(context.Background(), result.Artifacts[0].Key)
		if err != nil {
			t.Fatalf("get gmt: %v", err)
		}
		defer rc.Close()
		records, err := gmt.Parse(rc)
		if err != nil {
			t.Fatalf("parse gmt: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if records[0].Name != "PW1" || len(records[0].Symbols) != 2 {
			t.Fatalf("unexpected first record: %+v", records[0])
		}
	})

	t.Run("json artifact round trips", func(t *testing.T) {
		info, rc, err := store.Get(context.Background(), result.Artifacts[1].Key)
		if err != nil {
			t.Fatalf("get json: %v", err)
		}
		defer rc.Close()
		if info.ContentType != contentTypeJSON {
			t.Fatalf("unexpected content type %q", info.ContentType)
		}
		payload, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read json: %v", err)
		}
		var decoded map[string][]string
		if err := json.Unmarshal(payload, &decoded); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		got := decoded["PW1"]
		if len(got) != 2 || got[0] != "BRCA1" || got[1] != "TP53" {
			t.Fatalf("expected sorted PW1 symbols, got %v", got)
		}
	})

	t.Run("audit entry recorded", func(t *testing.T) {
		if len(audit.entries) != 1 {
			t.Fatalf("expected 1 audit entry, got %d", len(audit.entries))
		}
		entry := audit.entries[0]
		if entry.Action != "export_genesets" || entry.Actor != "curator" {
			t.Fatalf("unexpected entry: %+v", entry)
		}
		if entry.ID != result.ID {
			t.Fatalf("entry id %q does not match run id %q", entry.ID, result.ID)
		}
		if len(entry.Artifacts) != 2 {
			t.Fatalf("expected 2 artifact keys, got %v", entry.Artifacts)
		}
		if !entry.OccurredAt.Equal(fixed) {
			t.Fatalf("expected fixed timestamp, got %v", entry.OccurredAt)
		}
	})

	t.Run("list exports", func(t *testing.T) {
		infos, err := exporter.ListExports(context.Background())
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(infos) != 2 {
			t.Fatalf("expected 2 stored artifacts, got %d", len(infos))
		}
	})
}

func TestExportRunsDoNotCollide(t *testing.T) {
	engine := seededEngine(t)
	store := blob.NewMemoryStore()
	exporter, err := New(engine, store)
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}
	if _, err := exporter.ExportGenesets(context.Background(), "a"); err != nil {
		t.Fatalf("first export: %v", err)
	}
	if _, err := exporter.ExportGenesets(context.Background(), "b"); err != nil {
		t.Fatalf("second export: %v", err)
	}
	infos, err := exporter.ListExports(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 4 {
		t.Fatalf("expected 4 artifacts across 2 runs, got %d", len(infos))
	}
}
