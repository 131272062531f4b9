// Package workqueue provides the dynamic work-queue engine of a
// distributed storage daemon: named pools of worker goroutines that
// grow and shrink automatically under load, with completion callbacks
// delivered through a single edge-triggered bridge that an external
// event loop drains.
//
// # Quick Start
//
// Create an engine, drive its drain loop, and submit work:
//
//	engine, err := workqueue.NewEngine()
//	if err != nil {
//		log.Fatal(err)
//	}
//	go engine.Run(context.Background())
//
//	pool, err := engine.CreatePool("io", workqueue.Dynamic)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	pool.Submit(&workqueue.WorkFunc{
//		RunFunc:  func() { /* runs on a worker goroutine */ },
//		DoneFunc: func() { /* runs later on the drain goroutine */ },
//	})
//
// # Key Concepts
//
// Work: a unit of deferred work bundling an execute step (Run) and a
// completion callback (Done). Run executes on a worker goroutine with
// no pool lock held; Done executes on the drain goroutine, also outside
// all locks, so it may re-enter the pool.
//
// Pool: an independently sized work queue. Its worker count doubles
// when submissions outpace the workers and shrinks one worker at a time
// once load subsides and the protection period has elapsed.
//
// ThreadControl: the sizing mode. Ordered pools never exceed one worker
// and therefore execute items strictly in submission order; Dynamic
// pools are capped at twice the cluster node count; Unlimited pools
// have no cap.
//
// Engine: the process-scoped context owning the completion bridge and
// the pool registry. Embedders with their own poll/epoll reactor
// register the bridge's eventfd and call Engine.Drain when it becomes
// readable; everyone else runs Engine.Run on a goroutine.
//
// # Ordering
//
// Within an Ordered pool, completion callbacks fire in exactly
// submission order. Dynamic and Unlimited pools preserve submission
// order for dequeue but complete items in whatever order their
// executions finish.
//
// For more details, see https://github.com/flockstore/go-work-queue
package workqueue
