/*
Package tickflow runs dataflow graphs whose nodes live in independently
scheduled regions.

# Overview

A graph is built from ports (package port) joined with type-checked
connections (package connect). Ports that belong to a region (package
region) are region-aware: when such a connection is terminated, the
library decides once whether data crosses a region boundary and, if it
does, inserts a staging buffer (package buffer) that the producer commits
on its switch tick and the consumer receives on its work tick.

The Infrastructure in this package owns the regions and drives them from
a virtual clock (package clock):

	infra := tickflow.New()
	fast := infra.AddRegion("sensor", tickflow.FastTick)
	slow := infra.AddRegion("display", tickflow.MediumTick)

	reading := port.NewStateValue(0.0)
	shown := region.Bind(slow, port.NewStateSink[float64]())
	region.States(region.Bind(fast, reading.Source())).Into(shown)

	fast.WorkTick().Subscribe(func(connect.Void) { reading.Set(sample()) })

	if err := infra.Run(ctx, 100); err != nil {
	    log.Fatal(err)
	}

# Steps

Every Step advances the clock by one tick. Regions whose TickRate divides
the tick count are due. All due regions run their switch phase, then all
due regions run their work phase. With WithParallelRegions the regions of
a phase run on separate goroutines and the phase boundary is a barrier.

# Errors

A panic in a tick is recovered and returned as *PanicError with the
region, phase and stack. A cancelled context is returned as
*CancellationError. Wiring mistakes (double staging, expired regions) are
panics raised while the graph is being built.
*/
package tickflow
