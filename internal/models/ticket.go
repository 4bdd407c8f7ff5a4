package models

import "time"

// RawTicket is one row accepted by batch ingestion, before normalization
type RawTicket struct {
	ID                 int64   `json:"id" db:"id"`
	Title              string  `json:"title" db:"title"`
	Body               string  `json:"body" db:"body"`
	AcceptedAnswerBody *string `json:"accepted_answer_body,omitempty" db:"accepted_answer_body"`
}

// Ticket is a stored issue. Summary and Embedding are derived once at
// ingestion and never change afterwards.
type Ticket struct {
	ID                 int64     `json:"id" db:"id"`
	Title              string    `json:"title" db:"title"`
	CleanBody          string    `json:"clean_question_body" db:"clean_question_body"`
	AcceptedAnswerBody *string   `json:"clean_answer_body" db:"clean_answer_body"`
	Summary            string    `json:"summary" db:"summary"`
	Embedding          []float32 `json:"-" db:"-"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

// SearchResult is a ticket projection ranked by distance to a query
// @Description Similar ticket returned by a search
type SearchResult struct {
	ID                int64   `json:"id" db:"id" example:"73120394"`                                               // Ticket ID
	Title             string  `json:"title" db:"title" example:"App crashes on launch"`                            // Ticket title
	CleanQuestionBody string  `json:"clean_question_body" db:"clean_question_body" example:"Crashes after splash"` // Question text without markup
	CleanAnswerBody   *string `json:"clean_answer_body" db:"clean_answer_body"`                                    // Accepted answer, null when absent
	Distance          float64 `json:"distance" db:"distance" example:"0.12"`                                       // Cosine distance, smaller is closer
}

// ResultFromTicket projects a stored ticket into a search result
func ResultFromTicket(t Ticket, distance float64) SearchResult {
	return SearchResult{
		ID:                t.ID,
		Title:             t.Title,
		CleanQuestionBody: t.CleanBody,
		CleanAnswerBody:   t.AcceptedAnswerBody,
		Distance:          distance,
	}
}
