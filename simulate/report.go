package simulate

import (
	"strconv"

	"github.com/QuangTung97/mylloc/allocator"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// WriteJSON writes the whole report as one JSON object.
func (r Report) WriteJSON(w *jwriter.Writer) {
	obj := w.Object()
	r.Config.writeJSON(obj.Name("config"))
	obj.Name("init_break").Int(int(r.InitBreak))

	rounds := obj.Name("rounds").Array()
	for _, round := range r.Rounds {
		round.writeJSON(w)
	}
	rounds.End()

	obj.Name("final_break").Int(int(r.FinalBreak))
	r.FinalStats.WriteJSON(obj.Name("final_stats"))
	writeCounters(obj.Name("counters"), r.Counters)
	obj.Name("chunks").Int(r.ChunksAtEnd)
	obj.Name("elapsed_seconds").Float64(r.Elapsed.Seconds())
	obj.End()
}

func (c Config) writeJSON(w *jwriter.Writer) {
	obj := w.Object()
	obj.Name("rounds").Int(c.Rounds)
	obj.Name("slots").Int(c.Slots)
	obj.Name("steps").Int(c.Steps)
	obj.Name("seed").String(strconv.FormatUint(c.Seed, 10))
	obj.Name("min_size").Int(int(c.MinSize))
	obj.Name("max_size").Int(int(c.MaxSize))
	obj.Name("heap_limit").Int(int(c.HeapLimit))
	obj.Name("mmap").Bool(c.Mmap)
	obj.Name("check_releases").Bool(c.CheckReleases)
	obj.End()
}

func (r Round) writeJSON(w *jwriter.Writer) {
	obj := w.Object()
	obj.Name("index").Int(r.Index)
	obj.Name("break_before").Int(int(r.BreakBefore))
	obj.Name("break_after").Int(int(r.BreakAfter))
	obj.Name("growth").Int(int(r.Growth()))

	events := obj.Name("events").Array()
	for _, e := range r.Events {
		e.writeJSON(w)
	}
	events.End()

	r.Stats.WriteJSON(obj.Name("stats"))
	obj.End()
}

func (e Event) writeJSON(w *jwriter.Writer) {
	obj := w.Object()
	obj.Name("step").Int(e.Step)
	obj.Name("slot").Int(e.Slot)
	obj.Name("op").String(e.Kind.String())
	obj.Name("size").Int(int(e.Size))
	obj.Name("pointer").Int(int(e.Pointer))
	obj.End()
}

func writeCounters(w *jwriter.Writer, c allocator.Counters) {
	obj := w.Object()
	obj.Name("alloc_calls").Int(c.AllocCalls)
	obj.Name("zero_size_calls").Int(c.ZeroSizeCalls)
	obj.Name("reused").Int(c.Reused)
	obj.Name("grown").Int(c.Grown)
	obj.Name("grow_bytes").Int(int(c.GrowBytes))
	obj.Name("exhausted").Int(c.Exhausted)
	obj.Name("release_calls").Int(c.ReleaseCalls)
	obj.Name("null_releases").Int(c.NullReleases)
	obj.End()
}
