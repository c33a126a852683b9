package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/ehsend/internal/domain"
	"github.com/bft-labs/ehsend/internal/ports"
)

// SendEventEmitter is called after every batch send attempt.
type SendEventEmitter interface {
	OnBatchSent(events int, bytes uint64, duration time.Duration)
	OnBatchFailed(err error, events int)
}

// BatchSender packs a run of identical events into broker-sized batches and
// publishes each batch as it fills.
type BatchSender struct {
	open    ports.PublisherOpener
	logger  zerolog.Logger
	emitter SendEventEmitter
}

// NewBatchSender creates a sender that acquires its publisher through open.
// emitter may be nil.
func NewBatchSender(open ports.PublisherOpener, logger zerolog.Logger, emitter SendEventEmitter) *BatchSender {
	return &BatchSender{
		open:    open,
		logger:  logger,
		emitter: emitter,
	}
}

// Run publishes req.MessageCount copies of req.Payload.
//
// Batch send failures are logged and recorded in the report; they do not stop
// the run. Invalid requests, batch allocation failures, oversized payloads and
// context cancellation abort the run and are returned. The publisher is closed
// exactly once; a close failure is recorded in Report.ReleaseErr and never
// replaces the returned error.
func (s *BatchSender) Run(ctx context.Context, req domain.SendRequest) (report domain.Report, err error) {
	if err := req.Validate(); err != nil {
		return domain.Report{RunID: req.RunID, EventsRequested: req.MessageCount}, err
	}

	report = domain.Report{RunID: req.RunID, EventsRequested: req.MessageCount}
	start := time.Now()

	pub, err := s.open(ctx, req.Target)
	if err != nil {
		report.Duration = time.Since(start)
		return report, fmt.Errorf("open publisher: %w", err)
	}
	defer func() {
		// Close even when ctx is already canceled.
		if cerr := pub.Close(context.WithoutCancel(ctx)); cerr != nil {
			s.logger.Error().Err(cerr).Str("target", req.Target.String()).Msg("error closing the publisher")
			report.ReleaseErr = &domain.ReleaseError{Err: cerr}
		}
		report.Duration = time.Since(start)
	}()

	if err := s.sendAll(ctx, pub, req, &report); err != nil {
		s.logger.Error().Err(err).
			Int("attempted", report.EventsAttempted).
			Int("requested", report.EventsRequested).
			Msg("error sending events")
		return report, err
	}

	s.logger.Info().
		Int("events_sent", report.EventsSent).
		Int("events_failed", report.EventsFailed).
		Int("batches_sent", report.BatchesSent).
		Int("batches_failed", report.BatchesFailed).
		Msg("all events sent")
	return report, nil
}

// sendAll runs the accumulate/flush loop. At most one batch is open at a time.
func (s *BatchSender) sendAll(ctx context.Context, pub ports.Publisher, req domain.SendRequest, report *domain.Report) error {
	batch, err := s.newBatch(ctx, pub)
	if err != nil {
		return err
	}

	for i := 0; i < req.MessageCount; i++ {
		ev := req.Event()
		report.EventsAttempted++

		added, err := batch.TryAdd(ev)
		if err != nil {
			return fmt.Errorf("add event %d: %w", i, err)
		}
		if added {
			continue
		}

		// A rejected event on an empty batch can never be sent.
		if batch.Size() == 0 {
			return fmt.Errorf("%w: event %d is %d bytes", domain.ErrPayloadTooLarge, i, ev.Len())
		}

		s.flush(ctx, pub, batch, i-batch.Size(), req.Verbose, "sending batch", report)

		if batch, err = s.newBatch(ctx, pub); err != nil {
			return err
		}
		added, err = batch.TryAdd(ev)
		if err != nil {
			return fmt.Errorf("add event %d: %w", i, err)
		}
		if !added {
			return fmt.Errorf("%w: event %d is %d bytes", domain.ErrPayloadTooLarge, i, ev.Len())
		}
	}

	if batch.Size() > 0 {
		s.flush(ctx, pub, batch, req.MessageCount-batch.Size(), req.Verbose, "sending final batch", report)
	}
	return nil
}

func (s *BatchSender) newBatch(ctx context.Context, pub ports.Publisher) (ports.Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	batch, err := pub.NewBatch(ctx)
	if err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}
	return batch, nil
}

// flush sends batch and records the outcome. Send failures are not returned.
func (s *BatchSender) flush(ctx context.Context, pub ports.Publisher, batch ports.Batch, startIndex int, verbose bool, msg string, report *domain.Report) {
	size := batch.Size()
	bytes := batch.NumBytes()

	if verbose {
		s.logger.Info().
			Int("size", size).
			Int("start_index", startIndex).
			Uint64("bytes", bytes).
			Msg(msg)
	}

	start := time.Now()
	err := pub.Send(ctx, batch)
	duration := time.Since(start)

	if err != nil {
		sendErr := &domain.BatchSendError{StartIndex: startIndex, Size: size, Err: err}
		s.logger.Error().Err(err).
			Int("size", size).
			Int("start_index", startIndex).
			Msg("error sending batch")

		report.BatchesFailed++
		report.EventsFailed += size
		report.Failures = append(report.Failures, sendErr)
		if s.emitter != nil {
			s.emitter.OnBatchFailed(sendErr, size)
		}
		return
	}

	report.BatchesSent++
	report.EventsSent += size
	if s.emitter != nil {
		s.emitter.OnBatchSent(size, bytes, duration)
	}
}
