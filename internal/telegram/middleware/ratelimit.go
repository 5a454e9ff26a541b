package middleware

import (
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultWarningInterval = 30 * time.Second
	cleanupInterval        = 10 * time.Minute
	inactiveThreshold      = time.Hour
)

// userLimit tracks rate limit state for a single user
type userLimit struct {
	limiter       *rate.Limiter
	lastSeen      time.Time
	warningsSent  int
	lastWarningAt time.Time
	mu            sync.Mutex
}

// RateLimiterMiddleware keeps one token bucket per user.
// A bucket holds up to burst tokens and refills at requestsPerMinute.
type RateLimiterMiddleware struct {
	limits          map[int64]*userLimit
	mu              sync.Mutex
	burst           int
	refill          rate.Limit
	warningInterval time.Duration
	logger          *zap.Logger
	sender          Sender
	now             func() time.Time
	stop            chan struct{}
	stopOnce        sync.Once
}

// NewRateLimiterMiddleware creates a limiter and starts the inactive user cleanup.
// Close stops the cleanup.
func NewRateLimiterMiddleware(
	requestsPerMinute int,
	burstSize int,
	logger *zap.Logger,
	sender Sender,
) *RateLimiterMiddleware {
	rl := newRateLimiter(requestsPerMinute, burstSize, logger, sender, time.Now)
	go rl.cleanupInactiveUsers()
	return rl
}

func newRateLimiter(
	requestsPerMinute int,
	burstSize int,
	logger *zap.Logger,
	sender Sender,
	now func() time.Time,
) *RateLimiterMiddleware {
	if burstSize < 1 {
		burstSize = 1
	}

	return &RateLimiterMiddleware{
		limits:          make(map[int64]*userLimit),
		burst:           burstSize,
		refill:          rate.Limit(float64(requestsPerMinute) / 60.0),
		warningInterval: defaultWarningInterval,
		logger:          logger,
		sender:          sender,
		now:             now,
		stop:            make(chan struct{}),
	}
}

// Handle processes the update through rate limiting
func (rl *RateLimiterMiddleware) Handle(update tgbotapi.Update, next func(tgbotapi.Update)) {
	userID, chatID, ok := updateIDs(update)
	if !ok {
		next(update)
		return
	}

	if !rl.allowRequest(userID, chatID) {
		rl.logger.Warn("rate limit exceeded",
			zap.Int64("user_id", userID),
			zap.Int64("chat_id", chatID),
		)
		return
	}

	next(update)
}

// Close stops the cleanup goroutine
func (rl *RateLimiterMiddleware) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiterMiddleware) allowRequest(userID, chatID int64) bool {
	now := rl.now()

	rl.mu.Lock()
	limit, exists := rl.limits[userID]
	if !exists {
		limit = &userLimit{limiter: rate.NewLimiter(rl.refill, rl.burst)}
		rl.limits[userID] = limit
	}
	rl.mu.Unlock()

	limit.mu.Lock()
	defer limit.mu.Unlock()

	limit.lastSeen = now
	if limit.limiter.AllowN(now, 1) {
		limit.warningsSent = 0
		return true
	}

	// at most one warning per interval
	if now.Sub(limit.lastWarningAt) > rl.warningInterval {
		limit.warningsSent++
		limit.lastWarningAt = now

		rl.sendRateLimitWarning(chatID, limit.warningsSent)
	}

	return false
}

func (rl *RateLimiterMiddleware) sendRateLimitWarning(chatID int64, warningCount int) {
	var text string

	switch {
	case warningCount == 1:
		text = "⚠️ Too many requests. Please wait a moment."
	case warningCount == 2:
		text = "⚠️ Rate limit exceeded. Wait about 30 seconds before the next query."
	default:
		text = "🛑 You are sending queries too often. Please wait a minute."
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := rl.sender.Send(msg); err != nil {
		rl.logger.Error("failed to send rate limit warning",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

// cleanupInactiveUsers drops buckets idle for longer than inactiveThreshold
func (rl *RateLimiterMiddleware) cleanupInactiveUsers() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.removeInactive(rl.now())
		}
	}
}

func (rl *RateLimiterMiddleware) removeInactive(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for userID, limit := range rl.limits {
		limit.mu.Lock()
		if now.Sub(limit.lastSeen) > inactiveThreshold {
			delete(rl.limits, userID)
			rl.logger.Debug("cleaned up inactive user from rate limiter",
				zap.Int64("user_id", userID),
			)
		}
		limit.mu.Unlock()
	}
}
