// Package scheduler implements a cooperative, non-preemptive task scheduler.
//
// Tasks are plain functions. Each dispatch invokes one task function from the
// head of the ready queue; the function runs until it returns, either because
// it finished a step (Success), failed (Error, the task is killed) or reached
// a suspension point (Suspended). Suspension points are reached through the
// Frame handed to the function:
//
//	func blink(f *scheduler.Frame, arg any) scheduler.Result {
//		led := arg.(*Led)
//		switch f.Resume() {
//		case 0:
//			led.On()
//			return f.Sleep(1, 100)
//		case 1:
//			led.Off()
//			return f.Sleep(2, 100)
//		}
//		return f.Exit(scheduler.Success)
//	}
//
// Locals do not survive a suspension; state that must outlive one belongs in
// the task argument. A function calling another suspension-capable function
// goes through Frame.Call and returns its Suspended result unchanged, which
// builds the depth-indexed chain of markers the next dispatch replays.
//
// All storage (task table, queues, continuation stacks, wake mailbox) is
// allocated by New. Scheduler methods must be called from the goroutine
// driving dispatch; WakeAsync is the only method safe to call from elsewhere.
package scheduler
