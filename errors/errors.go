package errors

import "fmt"

var (
	ErrWorkerPanic         = fmt.Errorf("worker panic")
	ErrStore               = fmt.Errorf("message store failure")
	ErrSummarizer          = fmt.Errorf("summarizer failure")
	ErrSearch              = fmt.Errorf("recommendation lookup failure")
	ErrConnection          = fmt.Errorf("connection failure")
	ErrInvalidIdentity     = fmt.Errorf("missing participant identity")
	ErrInvalidToken        = fmt.Errorf("invalid or expired identity token")
	ErrInvalidFrame        = fmt.Errorf("invalid inbound frame")
	ErrUnknownStoreBackend = fmt.Errorf("unknown store backend")
	ErrEmptySummary        = fmt.Errorf("summarizer returned an empty summary")
	ErrAlreadyRegistered   = fmt.Errorf("connection already registered")
	ErrUnknownIndex        = fmt.Errorf("unknown recommendation index")
	ErrEmptyWords          = fmt.Errorf("censored dictionary is empty")
)
