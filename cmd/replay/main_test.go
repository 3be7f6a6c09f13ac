package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"backend-speedtrack/internal/config"
	"backend-speedtrack/internal/replay"

	"github.com/muktihari/fit/encoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"
	"github.com/muktihari/fit/proto"
)

func testConfig() config.Config {
	floor := 0.3
	return config.Config{JitterFloorKmh: &floor}
}

func writeActivity(t *testing.T) string {
	t.Helper()
	start := time.Date(2024, 5, 1, 7, 30, 0, 0, time.UTC)
	fit := &proto.FIT{Messages: []proto.Message{
		mesgdef.NewFileId(nil).SetType(typedef.FileActivity).SetTimeCreated(start).ToMesg(nil),
	}}
	lon := 2.35
	for i := 0; i < 5; i++ {
		fit.Messages = append(fit.Messages, mesgdef.NewRecord(nil).
			SetTimestamp(start.Add(time.Duration(i)*time.Second)).
			SetPositionLat(int32((48.85+float64(i)*0.0001)*11930464.7111)).
			SetPositionLong(int32(lon*11930464.7111)).
			SetSpeed(3000).
			SetGpsAccuracy(3).
			ToMesg(nil))
	}
	var buf bytes.Buffer
	if err := encoder.New(&buf).Encode(fit); err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "activity.fit")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestRunPrintsTable(t *testing.T) {
	path := writeActivity(t)
	var out bytes.Buffer
	if err := run([]string{"-input", path, "-duration", "10"}, &out, testConfig); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"Samples", "emitted", "Avg speed", "10.80 km/h"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("missing %q in output:\n%s", want, out.String())
		}
	}
}

func TestRunPrintsJSON(t *testing.T) {
	path := writeActivity(t)
	var out bytes.Buffer
	if err := run([]string{"-input", path, "-profile", "basic", "-json"}, &out, testConfig); err != nil {
		t.Fatalf("run: %v", err)
	}
	var report replay.Report
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Samples != 5 || report.Analytics != nil {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestRunErrors(t *testing.T) {
	if err := run(nil, &bytes.Buffer{}, testConfig); err == nil {
		t.Fatalf("expected missing input error")
	}
	if err := run([]string{"-input", "missing.fit"}, &bytes.Buffer{}, testConfig); err == nil {
		t.Fatalf("expected read error")
	}
	path := writeActivity(t)
	if err := run([]string{"-input", path, "-profile", "warp"}, &bytes.Buffer{}, testConfig); err == nil {
		t.Fatalf("expected profile error")
	}
}
