package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/nvalim/lattice/pkg/domain"
)

// SubmissionSink implements ports.SubmissionSink by recording submissions.
// FailNext simulates transient sink failures for retry tests.
type SubmissionSink struct {
	mu          sync.Mutex
	submissions []*domain.Submission
	failNext    int
}

// NewSubmissionSink creates an empty sink.
func NewSubmissionSink() *SubmissionSink {
	return &SubmissionSink{}
}

// FailNext makes the next n Submit calls fail.
func (s *SubmissionSink) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = n
}

// Submit records the submission.
func (s *SubmissionSink) Submit(ctx context.Context, sub *domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext > 0 {
		s.failNext--
		return errors.New("submission endpoint unavailable")
	}
	clone := *sub
	clone.Answers = make([]domain.Answer, len(sub.Answers))
	for i, a := range sub.Answers {
		clone.Answers[i] = a.Clone()
	}
	s.submissions = append(s.submissions, &clone)
	return nil
}

// Submissions returns the recorded submissions.
func (s *SubmissionSink) Submissions() []*domain.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.Submission(nil), s.submissions...)
}
