package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/command"
)

var ErrPoolStopped = errors.New("worker pool stopped")

// Executor - то, что умеет выполнить одну команду пользователя
type Executor interface {
	Execute(ctx context.Context, userID string, req command.Request) (command.Reply, error)
}

type Job struct {
	UserID  string
	Request command.Request
}

type result struct {
	reply command.Reply
	err   error
}

type envelope struct {
	id   string
	job  Job
	ctx  context.Context
	done chan result // буфер 1: воркер не блокируется, если ответ уже никому не нужен
}

// Pool выполняет команды из разных пользователей параллельно на count воркерах.
type Pool struct {
	exec     Executor
	logger   *zap.Logger
	count    int
	jobs     chan envelope
	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once
}

func NewPool(exec Executor, logger *zap.Logger, count, queueSize int) *Pool {
	if count < 1 {
		count = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &Pool{
		exec:   exec,
		logger: logger,
		count:  count,
		jobs:   make(chan envelope, queueSize),
		stop:   make(chan struct{}),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.logger.Info("Starting worker pool", zap.Int("workers", p.count))

	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("Stopping worker pool...")
		close(p.stop)
		p.wg.Wait()
		p.logger.Info("Worker pool stopped")
	})
}

// Submit ставит команду в очередь и ждет ответа.
// Если вызывающий ушел (ctx отменен), уже принятая команда все равно
// выполняется до конца, результат просто отбрасывается.
func (p *Pool) Submit(ctx context.Context, job Job) (command.Reply, error) {
	select {
	case <-p.stop:
		return command.Reply{}, ErrPoolStopped
	default:
	}

	env := envelope{
		id:   uuid.NewString(),
		job:  job,
		ctx:  context.WithoutCancel(ctx),
		done: make(chan result, 1),
	}

	select {
	case p.jobs <- env:
	case <-ctx.Done():
		return command.Reply{}, ctx.Err()
	case <-p.stop:
		return command.Reply{}, ErrPoolStopped
	}

	select {
	case res := <-env.done:
		return res.reply, res.err
	case <-ctx.Done():
		return command.Reply{}, ctx.Err()
	case <-p.stop:
		// воркер мог успеть выполнить команду до остановки
		select {
		case res := <-env.done:
			return res.reply, res.err
		default:
			return command.Reply{}, ErrPoolStopped
		}
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		case env := <-p.jobs:
			p.process(id, env)
		}
	}
}

func (p *Pool) process(workerID int, env envelope) {
	start := time.Now()
	reply, err := p.exec.Execute(env.ctx, env.job.UserID, env.job.Request)
	env.done <- result{reply: reply, err: err}

	fields := []zap.Field{
		zap.Int("worker", workerID),
		zap.String("job_id", env.id),
		zap.String("user_id", env.job.UserID),
		zap.Stringer("command", env.job.Request.Kind),
		zap.Duration("took", time.Since(start)),
	}
	if err != nil {
		p.logger.Error("command failed", append(fields, zap.Error(err))...)
		return
	}
	p.logger.Debug("command processed", append(fields, zap.Bool("ok", reply.OK))...)
}
