package repository

// Option applies a configuration option to the StreakBoard.
type Option func(*StreakBoard)

// WithTopCacheSize sets how many leading entries are kept in the read
// snapshot served without taking the lock.
func WithTopCacheSize(n int) Option {
	return func(s *StreakBoard) {
		if n > 0 {
			s.topCacheSize = n
		}
	}
}
