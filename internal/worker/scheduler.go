package worker

import (
	"context"
	"log"

	"github.com/sourcegraph/conc"
)

// StartAllWorkers starts count workers built by newWorker. They stop when
// ctx is done; Wait on the returned group to join them.
func StartAllWorkers(ctx context.Context, count int, newWorker func() *ClashWorker) *conc.WaitGroup {
	log.Printf("Starting %d clash workers...", count)

	wg := conc.NewWaitGroup()
	for i := 0; i < count; i++ {
		w := newWorker()
		wg.Go(func() {
			w.Run(ctx)
		})
	}

	log.Println("All workers started")
	return wg
}
