package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeAdvanceFiresTicker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := NewFake(start)

	ticker := f.NewTicker(5 * time.Second)
	f.Advance(5 * time.Second)

	select {
	case got := <-ticker.C():
		assert.Equal(t, start.Add(5*time.Second), got)
	default:
		t.Fatal("expected ticker to fire after advancing past interval")
	}
}

func TestFakeAdvanceCatchesUpMultipleTicks(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := NewFake(start)

	ticker := f.NewTicker(1 * time.Second)
	f.Advance(3 * time.Second)

	fired := 0
	for {
		select {
		case <-ticker.C():
			fired++
			continue
		default:
		}
		break
	}
	assert.GreaterOrEqual(t, fired, 1)
}

func TestFakeStopSuppressesFutureTicks(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := NewFake(start)

	ticker := f.NewTicker(1 * time.Second)
	ticker.Stop()
	f.Advance(5 * time.Second)

	select {
	case <-ticker.C():
		t.Fatal("stopped ticker must not fire")
	default:
	}
}

func TestFakeNowReflectsAdvance(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := NewFake(start)
	f.Advance(90 * time.Second)
	require.Equal(t, start.Add(90*time.Second), f.Now())
}
