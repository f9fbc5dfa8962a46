package audit

import "go.uber.org/zap"

type Event struct {
	UserID    *uint
	Action    string
	Entity    string
	EntityID  *uint
	RequestID string
	Metadata  any
}

type Dispatcher struct {
	logger *Logger
	log    *zap.Logger
	queue  chan Event
}

func NewDispatcher(logger *Logger, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		logger: logger,
		log:    log,
		queue:  make(chan Event, 100), // buffer seguro
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	for ev := range d.queue {
		if err := d.logger.Log(
			ev.UserID,
			ev.Action,
			ev.Entity,
			ev.EntityID,
			ev.RequestID,
			ev.Metadata,
		); err != nil {
			d.log.Warn("audit error", zap.Error(err))
		}
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	if d == nil {
		return
	}
	select {
	case d.queue <- ev:
		// enviado
	default:
		// fila cheia: descartamos audit, nunca quebrar a API
		d.log.Warn("audit queue full, dropping event",
			zap.String("action", ev.Action))
	}
}
