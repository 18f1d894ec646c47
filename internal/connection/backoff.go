package connection

import "time"

// BackoffDelay 计算第attempt次重连前的等待时间（attempt从1开始）
// 指数退避：min(initial * 2^(attempt-1), max)
func BackoffDelay(attempt int, initial, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := initial
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= max {
			return max
		}
	}
	if delay > max {
		return max
	}
	return delay
}
