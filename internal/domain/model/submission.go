package model

import "time"

// Submission is an assessment request accepted for asynchronous processing.
type Submission struct {
	SubmissionID string        // unique id for idempotency
	Client       ClientProfile // applicant identity, stored with the record
	Answers      Answers       // complete questionnaire answers
	Operator     string        // operator who submitted the simulation
	ReceivedAt   time.Time
}
