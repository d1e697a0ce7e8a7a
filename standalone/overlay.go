package standalone

import (
	"fmt"
	"strings"

	"github.com/user-none/snesfront/audio"
	"github.com/user-none/snesfront/pump"
)

// sessionStats is what the diagnostics overlay shows.
type sessionStats struct {
	TPS            float64
	Paused         bool
	Pump           pump.Stats
	Ring           audio.RingStats
	Buffered       int
	Capacity       int
	DeviceBuffered int // -1 without an audio device
	Triggers       uint64
	SkippedTicks   uint64
	DroppedFrames  uint64
}

// String formats the stats one counter group per line.
func (s sessionStats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "TPS %.1f", s.TPS)
	if s.Paused {
		b.WriteString("  PAUSED")
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "ticks %d  skipped %d  busy %d  engine errors %d\n",
		s.Pump.Ticks, s.SkippedTicks, s.Pump.BusySkips, s.Pump.EngineErrors)
	fmt.Fprintf(&b, "ring %d/%d  written %d  read %d\n",
		s.Buffered, s.Capacity, s.Ring.Written, s.Ring.Read)
	fmt.Fprintf(&b, "overwritten %d  underruns %d  dropped batches %d\n",
		s.Ring.Overwritten, s.Ring.Underruns, s.Pump.DroppedBatches)
	if s.DeviceBuffered >= 0 {
		fmt.Fprintf(&b, "device buffered %d  ", s.DeviceBuffered)
	} else {
		b.WriteString("no audio device  ")
	}
	fmt.Fprintf(&b, "dropped frames %d", s.DroppedFrames)
	return b.String()
}
