package progression

import "testing"

func TestLevelFloorAndClamp(t *testing.T) {
	if got := Level(0).Level; got != 1 {
		t.Errorf("Level(0) = %d, want 1", got)
	}
	if got := Level(-500).Level; got != 1 {
		t.Errorf("Level(-500) = %d, want 1", got)
	}
	if got := Level(10_000_000).Level; got != MaxLevel {
		t.Errorf("Level(10M) = %d, want %d", got, MaxLevel)
	}
	if got := Level(10_000_000).ToNext; got != 0 {
		t.Errorf("ToNext at cap = %d, want 0", got)
	}
}

func TestLevelKnownPoints(t *testing.T) {
	tests := []struct {
		xp   int64
		want int
	}{
		{10_000, 11},
		{50_000, 47},
		{100_000, 75},
	}
	for _, tt := range tests {
		if got := Level(tt.xp).Level; got != tt.want {
			t.Errorf("Level(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestLevelMonotonic(t *testing.T) {
	prev := 0
	for xp := int64(0); xp <= 600_000; xp += 5_000 {
		level := Level(xp).Level
		if level < prev {
			t.Fatalf("level dropped from %d to %d at xp %d", prev, level, xp)
		}
		prev = level
	}
}

func TestXPForLevel(t *testing.T) {
	if got := XPForLevel(0); got != 0 {
		t.Errorf("XPForLevel(0) = %d, want 0", got)
	}
	if got := XPForLevel(MaxLevel); got != 500_000 {
		t.Errorf("XPForLevel(max) = %d, want 500000", got)
	}
	if got := XPForLevel(MaxLevel + 10); got != 500_000 {
		t.Errorf("XPForLevel(max+10) = %d, want 500000", got)
	}

	prev := int64(-1)
	for l := 1; l < MaxLevel; l++ {
		xp := XPForLevel(l)
		if xp <= prev {
			t.Fatalf("XPForLevel not increasing at level %d: %d <= %d", l, xp, prev)
		}
		prev = xp
	}
}

func TestDailyTarget(t *testing.T) {
	got := DailyTarget()
	if got < 136 || got > 138 {
		t.Errorf("DailyTarget() = %f, want ~137", got)
	}
}

func TestRankForLevel(t *testing.T) {
	tests := []struct {
		level int
		want  Rank
	}{
		{1, RankE}, {9, RankE},
		{10, RankD}, {19, RankD},
		{20, RankC}, {39, RankC},
		{40, RankB}, {59, RankB},
		{60, RankA}, {79, RankA},
		{80, RankS}, {99, RankS},
		{100, RankSS}, {120, RankSS},
	}
	for _, tt := range tests {
		if got := RankForLevel(tt.level); got != tt.want {
			t.Errorf("RankForLevel(%d) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestRankAtLeast(t *testing.T) {
	if !RankS.AtLeast(RankC) {
		t.Error("S should be at least C")
	}
	if RankD.AtLeast(RankB) {
		t.Error("D should not be at least B")
	}
	if !RankA.AtLeast(RankA) {
		t.Error("A should be at least A")
	}
	if !Rank("bogus").AtLeast(RankE) {
		t.Error("unknown ranks compare as E")
	}
}
