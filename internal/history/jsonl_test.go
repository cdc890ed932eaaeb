package history

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/daniel4e393653-cmd/cetus-rebalance-bot/internal/model"
)

func TestJSONLRecorderAppendsRecords(t *testing.T) {
	// The directory does not exist yet; the recorder must create it.
	path := filepath.Join(t.TempDir(), "out", "history.jsonl")
	rec := NewJSONLRecorder(path)
	ctx := context.Background()

	first := model.RebalanceRecord{
		PositionID:   "0xpos",
		PoolID:       "0xpool",
		OldTickLower: 1000,
		OldTickUpper: 2000,
		NewTickLower: 2000,
		NewTickUpper: 3000,
		CurrentTick:  2500,
		Liquidity:    "1000000",
		NewLiquidity: "1926509",
		DryRun:       true,
		FinalState:   "out_of_range",
	}
	if err := rec.Record(ctx, first); err != nil {
		t.Fatalf("record: %v", err)
	}

	second := first
	second.PositionID = "0xpos2"
	second.NewPositionID = "0xpos-new"
	second.DryRun = false
	second.FinalState = "done"
	second.Digests = []string{"digest-1", "digest-2", "digest-3", "digest-4"}
	if err := rec.Record(ctx, second); err != nil {
		t.Fatalf("record: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	var got []model.RebalanceRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var r model.RebalanceRecord
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			t.Fatalf("unmarshal line: %v", err)
		}
		got = append(got, r)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected two lines, got %d", len(got))
	}
	if got[0].PositionID != "0xpos" || !got[0].DryRun || got[0].FinalState != "out_of_range" {
		t.Fatalf("first record %+v", got[0])
	}
	if got[0].NewLiquidity != "1926509" || got[0].CurrentTick != 2500 {
		t.Fatalf("first record %+v", got[0])
	}
	if got[1].NewPositionID != "0xpos-new" || got[1].FinalState != "done" {
		t.Fatalf("second record %+v", got[1])
	}
	if len(got[1].Digests) != 4 {
		t.Fatalf("second record digests %v", got[1].Digests)
	}
}
