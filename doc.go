// Package flightcore provides a cooperative, single-threaded task scheduler
// for embedded flight software style workloads: a fixed task table, a FIFO
// ready queue, a deadline ordered sleep queue, explicit block/wake and
// stackless tasks that resume from recorded continuation markers.
//
// The root package is a façade wiring the scheduler with logging, lifecycle
// events, progress counters and tracing from a single Config:
//
//	srv, _ := flightcore.New()
//	sched := srv.Scheduler()
//	sched.Start(blink, led)
//	srv.Run(ctx)
//
// The building blocks live under service/ and can be used on their own.
package flightcore
