package models

import "time"

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

type SearchJob struct {
	ID           string        `json:"id"`
	Status       JobStatus     `json:"status"`
	DonePairs    int           `json:"donePairs"`
	TotalPairs   int           `json:"totalPairs"`
	TotalResults int           `json:"totalResults"`
	Result       *SearchResult `json:"result,omitempty"`
	Error        *string       `json:"error,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	FinishedAt   *time.Time    `json:"finishedAt,omitempty"`
}

// Clone returns a copy that shares no mutable state with j.
func (j *SearchJob) Clone() *SearchJob {
	if j == nil {
		return nil
	}
	c := *j
	if j.Result != nil {
		r := *j.Result
		r.Options = append([]FlightOption(nil), j.Result.Options...)
		c.Result = &r
	}
	if j.Error != nil {
		e := *j.Error
		c.Error = &e
	}
	if j.FinishedAt != nil {
		t := *j.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}
