package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/adamanr/ems_service/internal/entity"
	"github.com/adamanr/ems_service/internal/metrics"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const sendTimeout = 30 * time.Second

type job struct {
	id   string
	kind string
	msg  Message
}

type Options struct {
	Workers   int
	QueueSize int
	CodeTTL   time.Duration
}

// Dispatcher renders notifications and hands them to a fixed pool of workers.
// A message that does not fit in the queue is dropped.
type Dispatcher struct {
	sender  Sender
	logger  *slog.Logger
	metrics *metrics.Metrics
	codeTTL time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan job
	group  errgroup.Group
}

func NewDispatcher(sender Sender, opts Options, m *metrics.Metrics, logger *slog.Logger) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize < 0 {
		opts.QueueSize = 0
	}

	d := &Dispatcher{
		sender:  sender,
		logger:  logger,
		metrics: m,
		codeTTL: opts.CodeTTL,
		queue:   make(chan job, opts.QueueSize),
	}

	for i := 0; i < opts.Workers; i++ {
		d.group.Go(d.work)
	}

	return d
}

func (d *Dispatcher) work() error {
	for j := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		err := d.sender.Send(ctx, j.msg)
		cancel()

		if err != nil {
			d.logger.Error("Error sending notification",
				slog.String("job_id", j.id), slog.String("kind", j.kind), slog.String("error", err.Error()))
			d.observe(j.kind, "failed")
			continue
		}

		d.logger.Debug("Notification sent", slog.String("job_id", j.id), slog.String("kind", j.kind))
		d.observe(j.kind, "sent")
	}

	return nil
}

// Close stops accepting messages and waits for the queued ones until ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- d.group.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) enqueue(kind, to string, data any) {
	msg, err := render(kind, to, data)
	if err != nil {
		d.logger.Error("Error rendering notification", slog.String("kind", kind), slog.String("error", err.Error()))
		d.observe(kind, "failed")
		return
	}

	j := job{id: uuid.NewString(), kind: kind, msg: msg}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("Notification after shutdown dropped", slog.String("job_id", j.id), slog.String("kind", kind))
		d.observe(kind, "dropped")
		return
	}

	select {
	case d.queue <- j:
	default:
		d.logger.Warn("Notification queue is full", slog.String("job_id", j.id), slog.String("kind", kind))
		d.observe(kind, "dropped")
	}
}

func (d *Dispatcher) observe(kind, result string) {
	if d.metrics != nil {
		d.metrics.NotificationDelivery.WithLabelValues(kind, result).Inc()
	}
}

func (d *Dispatcher) SendVerificationCode(email, code string) {
	d.enqueue(KindVerificationCode, email, struct {
		Code string
		TTL  time.Duration
	}{code, d.codeTTL})
}

func (d *Dispatcher) SendWelcome(employee entity.Account) {
	d.enqueue(KindWelcome, employee.Email, struct {
		Name  string
		Email string
	}{employee.FullName(), employee.Email})
}

type leaveData struct {
	ID      int64
	Name    string
	Email   string
	Start   string
	End     string
	Reason  string
	Status  entity.LeaveStatus
	Remarks string
}

func leaveDataOf(req entity.LeaveRequest, employee entity.Account) leaveData {
	return leaveData{
		ID:      req.ID,
		Name:    employee.FullName(),
		Email:   employee.Email,
		Start:   req.StartDate.String(),
		End:     req.EndDate.String(),
		Reason:  req.Reason,
		Status:  req.Status,
		Remarks: req.AdminRemarks,
	}
}

// SendLeaveApplied confirms the request to the employee and asks every
// recipient for a decision.
func (d *Dispatcher) SendLeaveApplied(req entity.LeaveRequest, employee entity.Account, recipients []entity.Account) {
	data := leaveDataOf(req, employee)

	d.enqueue(KindLeaveSubmitted, employee.Email, data)
	for _, r := range recipients {
		d.enqueue(KindLeaveForApproval, r.Email, data)
	}
}

func (d *Dispatcher) SendLeaveStatusChanged(req entity.LeaveRequest, employee entity.Account) {
	d.enqueue(KindLeaveStatusChanged, employee.Email, leaveDataOf(req, employee))
}
