package useCases

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/larriantoniy/tg_relay_bot/internal/domain"
	"github.com/larriantoniy/tg_relay_bot/internal/ports"
)

// после стольких событий в очереди одного пользователя пишем предупреждение
const workerQueueWarn = 100

type UpdateHandler interface {
	HandleUpdate(ctx context.Context, upd domain.Update) error
}

type Reporter interface {
	Report(ctx context.Context, upd domain.Update, err error, stack []byte)
}

// Runner читает события из Telegram и раздаёт их обработчику.
// События одного пользователя обрабатываются строго по очереди в его воркере,
// события разных пользователей и админа идут параллельно.
type Runner struct {
	log      *slog.Logger
	tg       ports.TelegramClient
	handler  UpdateHandler
	reporter Reporter
	adminID  int64
	idle     time.Duration

	mu      sync.Mutex
	workers map[int64]*userWorker
	wg      sync.WaitGroup
	// stop закрывается, когда событий больше не будет
	stop chan struct{}
}

type userWorker struct {
	// queue меняется под Runner.mu
	queue []domain.Update
	wake  chan struct{}
}

func NewRunner(
	log *slog.Logger,
	tg ports.TelegramClient,
	handler UpdateHandler,
	reporter Reporter,
	adminID int64,
	idle time.Duration,
) *Runner {
	return &Runner{
		log:      log,
		tg:       tg,
		handler:  handler,
		reporter: reporter,
		adminID:  adminID,
		idle:     idle,
		workers:  make(map[int64]*userWorker),
		stop:     make(chan struct{}),
	}
}

// Run блокируется до отмены ctx или закрытия канала событий.
// Принятые события дорабатываются до конца, Run дожидается их.
func (r *Runner) Run(ctx context.Context) error {
	updates, err := r.tg.Listen(ctx)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	r.log.Info("runner started")

	for {
		select {
		case <-ctx.Done():
			r.log.Info("shutdown: waiting for handlers")
			r.wg.Wait()
			return nil
		case upd, ok := <-updates:
			if !ok {
				r.log.Info("updates channel closed")
				close(r.stop)
				r.wg.Wait()
				return nil
			}
			r.dispatch(ctx, upd)
		}
	}
}

func (r *Runner) dispatch(ctx context.Context, upd domain.Update) {
	sender := upd.SenderID()

	// ответы админа не зависят от состояния пользователей
	if sender == r.adminID || sender == 0 {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.handle(context.WithoutCancel(ctx), upd)
		}()
		return
	}

	r.mu.Lock()
	w := r.getOrStartWorkerLocked(ctx, sender)
	w.queue = append(w.queue, upd)
	queued := len(w.queue)
	r.mu.Unlock()

	if queued == workerQueueWarn {
		r.log.Warn("user queue is growing", "user_id", sender, "queued", queued)
	}

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (r *Runner) getOrStartWorkerLocked(ctx context.Context, userID int64) *userWorker {
	if w, ok := r.workers[userID]; ok {
		return w
	}
	w := &userWorker{wake: make(chan struct{}, 1)}
	r.workers[userID] = w

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.work(ctx, userID, w)
	}()
	return w
}

func (r *Runner) work(ctx context.Context, userID int64, w *userWorker) {
	hctx := context.WithoutCancel(ctx)
	done := ctx.Done()
	stop := r.stop
	stopping := false
	timer := time.NewTimer(r.idle)
	defer timer.Stop()

	for {
		if upd, ok := r.next(w); ok {
			r.handle(hctx, upd)
			continue
		}
		// после остановки воркер выходит, как только разберёт очередь
		if stopping {
			if r.retire(userID, w) {
				return
			}
			continue
		}

		timer.Reset(r.idle)
		select {
		case <-w.wake:
		case <-done:
			done = nil
			stopping = true
		case <-stop:
			stop = nil
			stopping = true
		case <-timer.C:
			if r.retire(userID, w) {
				return
			}
		}
	}
}

func (r *Runner) next(w *userWorker) (domain.Update, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(w.queue) == 0 {
		return domain.Update{}, false
	}
	upd := w.queue[0]
	w.queue[0] = domain.Update{}
	w.queue = w.queue[1:]
	return upd, true
}

// retire снимает воркер, если ему ничего не досталось; иначе воркер продолжает работу
func (r *Runner) retire(userID int64, w *userWorker) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(w.queue) > 0 {
		return false
	}
	delete(r.workers, userID)
	return true
}

func (r *Runner) handle(ctx context.Context, upd domain.Update) {
	defer func() {
		if rec := recover(); rec != nil {
			r.reporter.Report(ctx, upd, fmt.Errorf("panic: %v", rec), debug.Stack())
		}
	}()

	if err := r.handler.HandleUpdate(ctx, upd); err != nil {
		r.reporter.Report(ctx, upd, err, nil)
	}
}

// ActiveWorkers возвращает число пользователей с живым воркером
func (r *Runner) ActiveWorkers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workers)
}
