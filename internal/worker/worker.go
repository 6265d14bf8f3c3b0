package worker

import (
	"context"
	"time"

	"github.com/rookgm/homechef/internal/events"
	"github.com/rookgm/homechef/internal/logger"
	"go.uber.org/zap"
)

// maximum attempts to create one chat channel
const maxAttempts = 5

type ChannelCreator interface {
	CreateChannel(ctx context.Context, req events.ChannelRequest) error
}

type pendingRequest struct {
	req      events.ChannelRequest
	attempts int
}

// ChannelDispatcher is worker creating chat channels for new orders in background
type ChannelDispatcher struct {
	creator       ChannelCreator
	queue         chan events.ChannelRequest
	retryInterval time.Duration
	// touched only by the Run goroutine
	pending []pendingRequest
}

// NewChannelDispatcher creates new chat channel dispatcher
func NewChannelDispatcher(creator ChannelCreator, queueSize int, retryInterval time.Duration) *ChannelDispatcher {
	return &ChannelDispatcher{
		creator:       creator,
		queue:         make(chan events.ChannelRequest, queueSize),
		retryInterval: retryInterval,
	}
}

// Enqueue schedules channel creation without blocking.
// It returns false when the queue is full and the request was dropped.
func (d *ChannelDispatcher) Enqueue(req events.ChannelRequest) bool {
	select {
	case d.queue <- req:
		return true
	default:
		logger.Log.Error("chat channel queue is full, request dropped",
			zap.String("order", req.OrderID.String()),
			zap.Uint64("chef", req.ChefID))
		return false
	}
}

// Run processes requests until ctx is done
func (d *ChannelDispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Log.Debug("chat channel dispatcher is done", zap.Int("pending", len(d.pending)))
			return
		case req := <-d.queue:
			d.dispatch(ctx, pendingRequest{req: req})
		case <-ticker.C:
			retry := d.pending
			d.pending = nil
			for _, p := range retry {
				d.dispatch(ctx, p)
			}
		}
	}
}

func (d *ChannelDispatcher) dispatch(ctx context.Context, p pendingRequest) {
	p.attempts++
	err := d.creator.CreateChannel(ctx, p.req)
	if err == nil {
		logger.Log.Debug("chat channel created",
			zap.String("order", p.req.OrderID.String()),
			zap.Uint64("chef", p.req.ChefID))
		return
	}

	if p.attempts >= maxAttempts {
		logger.Log.Error("chat channel creation failed, giving up",
			zap.String("order", p.req.OrderID.String()),
			zap.Uint64("chef", p.req.ChefID),
			zap.Int("attempts", p.attempts),
			zap.Error(err))
		return
	}

	logger.Log.Warn("chat channel creation failed, will retry",
		zap.String("order", p.req.OrderID.String()),
		zap.Uint64("chef", p.req.ChefID),
		zap.Error(err))
	d.pending = append(d.pending, p)
}
