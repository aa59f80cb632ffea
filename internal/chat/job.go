package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrBadJob = errors.New("chat: malformed reply job")

// JobMessage is the queue payload for an asynchronous reply.
type JobMessage struct {
	JobID     string `json:"job_id"`
	Namespace string `json:"namespace"`
	ThreadID  string `json:"thread_id"`
	Query     string `json:"query"`
}

func DecodeJob(body []byte) (JobMessage, error) {
	var m JobMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return JobMessage{}, fmt.Errorf("%w: %v", ErrBadJob, err)
	}
	if m.JobID == "" || m.ThreadID == "" {
		return JobMessage{}, fmt.Errorf("%w: missing job_id or thread_id", ErrBadJob)
	}
	return m, nil
}

// HandleJob is the worker entry point for one delivery body.
func (s *Service) HandleJob(ctx context.Context, body []byte) (JobMessage, error) {
	job, err := DecodeJob(body)
	if err != nil {
		return JobMessage{}, err
	}
	if _, err := s.CompleteReply(ctx, job); err != nil {
		return job, err
	}
	return job, nil
}
