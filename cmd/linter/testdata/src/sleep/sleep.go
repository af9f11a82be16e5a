package sleep

import "time"

func wait() {
	time.Sleep(time.Second) // want `time.Sleep\(\) is not interruptible, use a timer with select on the context instead`
}
