package tableau

import (
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observeLogs(t *testing.T, lvl zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(lvl)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })
	return logs
}

func TestCountBatchBreaks(t *testing.T) {
	add := BatchKey{BlendMode: BlendAdd}
	normal := BatchKey{}
	splits := []*MeshSplit{
		{Key: normal}, {Key: normal}, {Key: add}, {Key: normal}, {Key: add}, {Key: add},
	}
	if got := countBatchBreaks(splits); got != 2 {
		t.Errorf("countBatchBreaks = %d, want 2", got)
	}
	if got := countBatchBreaks(nil); got != 0 {
		t.Errorf("countBatchBreaks(nil) = %d", got)
	}
}

func TestDebugLogCountsBreaks(t *testing.T) {
	logs := observeLogs(t, zapcore.DebugLevel)

	c := loadComp(t, Options{Duration: 10, Debug: true, Limits: Limits{MaxItemsPerSplit: 2}},
		spriteDef("a", 0, 5), spriteDef("b", 0, 5), spriteDef("c", 0, 5),
	)
	c.Tick(0.5)

	ticks := logs.FilterMessage("tick").All()
	if len(ticks) != 1 {
		t.Fatalf("tick logs = %d, want 1", len(ticks))
	}
	fields := ticks[0].ContextMap()
	if fields["splits"] != int64(2) || fields["breaks"] != int64(1) {
		t.Errorf("fields = %v", fields)
	}
	if fields["active"] != int64(3) {
		t.Errorf("active = %v, want 3", fields["active"])
	}
}

func TestNoDebugLogWithoutDebug(t *testing.T) {
	logs := observeLogs(t, zapcore.DebugLevel)

	c := loadComp(t, Options{Duration: 10}, spriteDef("a", 0, 5))
	c.Tick(0.5)

	if n := logs.FilterMessage("tick").Len(); n != 0 {
		t.Errorf("tick logs = %d without Debug", n)
	}
}

func TestDebugTreeDepthWarning(t *testing.T) {
	logs := observeLogs(t, zapcore.WarnLevel)

	chain := func(n int) []ItemDef {
		defs := make([]ItemDef, n)
		for i := range defs {
			defs[i] = ItemDef{ID: fmt.Sprintf("n%d", i), Duration: 1}
			if i > 0 {
				defs[i].ParentID = fmt.Sprintf("n%d", i-1)
			}
		}
		return defs
	}

	loadComp(t, Options{Duration: 1, Debug: true}, chain(4)...)
	if n := logs.FilterMessage("item tree too deep").Len(); n != 0 {
		t.Errorf("short chain logged %d warnings", n)
	}

	loadComp(t, Options{Duration: 1, Debug: true}, chain(debugMaxTreeDepth+4)...)
	if logs.FilterMessage("item tree too deep").Len() == 0 {
		t.Error("deep chain should warn")
	}
}

func TestValidateDetectsCorruption(t *testing.T) {
	c := loadComp(t, Options{Duration: 10}, spriteDef("a", 0, 5), spriteDef("b", 0, 5))
	c.Tick(0.5)

	if err := c.reconciler.validate(); err != nil {
		t.Fatalf("healthy partition: %v", err)
	}

	c.reconciler.splits[0].Items = nil
	err := c.reconciler.validate()
	if err == nil || !strings.Contains(err.Error(), "empty") {
		t.Errorf("validate = %v, want an empty split error", err)
	}
}
