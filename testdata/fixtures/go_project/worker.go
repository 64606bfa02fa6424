package main

import "time"

func runJob(deadline time.Duration) {
	if deadline <= 0 {
		panic(&JobTimeoutError{Seconds: 30})
	}
}

func drainQueue(depth int) {
	if depth > 1000 {
		panic(&QueueOverflowError{Depth: depth, Queue: "jobs"})
	}
}
